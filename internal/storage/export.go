package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fdtdabc/internal/experiment"
)

type ExportData struct {
	Scene       string             `json:"scene"`
	Precision   string             `json:"precision"`
	Dt          float64            `json:"dt"`
	Steps       uint               `json:"steps"`
	Sheets      int                `json:"sheets"`
	Cells       int                `json:"cells"`
	Diagnostics []string           `json:"diagnostics"`
	Times       []float64          `json:"times"`
	Probe       []float64          `json:"probe"`
	Energy      []float64          `json:"energy"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(res *experiment.Result) ExportData {
	data := ExportData{
		Scene:       res.Scene,
		Precision:   res.Precision,
		Dt:          res.Timestep,
		Steps:       res.Steps,
		Sheets:      res.Sheets,
		Cells:       res.Cells,
		Diagnostics: make([]string, len(res.Diagnostics)),
		Times:       res.ProbeTimes,
		Probe:       res.ProbeValues,
		Energy:      res.Energy,
		Metrics: map[string]float64{
			"peak_energy":  res.PeakEnergy,
			"final_energy": res.FinalEnergy,
			"residual":     res.Residual(),
		},
	}
	for i, d := range res.Diagnostics {
		data.Diagnostics[i] = d.String()
	}
	return data
}

// WriteJSON encodes res as indented JSON.
func WriteJSON(w io.Writer, res *experiment.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(res))
}

func ExportJSON(path string, res *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, res)
}
