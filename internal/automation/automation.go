// Package automation runs scripted batches of scenes and parameter sweeps.
package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/fdtdabc/internal/config"
	"github.com/san-kum/fdtdabc/internal/experiment"
	"github.com/san-kum/fdtdabc/internal/storage"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep picks a scene from a file or a preset and overrides
// parameters by name, see config.Tunable.
type ScenarioStep struct {
	Preset    string             `yaml:"preset"`
	Config    string             `yaml:"config"`
	Steps     int                `yaml:"steps"`
	Threads   int                `yaml:"threads"`
	Precision string             `yaml:"precision"`
	Params    map[string]float64 `yaml:"params"`
	SaveAs    string             `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Scene resolves the step to a scene.
func (st ScenarioStep) Scene() (*config.Scene, error) {
	var (
		scene *config.Scene
		err   error
	)
	switch {
	case st.Config != "":
		scene, err = config.Load(st.Config)
	case st.Preset != "":
		scene, err = config.GetPreset(st.Preset)
	default:
		scene = config.DefaultScene()
	}
	if err != nil {
		return nil, err
	}

	if st.Steps > 0 {
		scene.Steps = st.Steps
	}
	if st.Threads > 0 {
		scene.Threads = st.Threads
	}
	if st.Precision != "" {
		scene.Precision = st.Precision
	}
	for k, v := range st.Params {
		if err := scene.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if st.SaveAs != "" {
		scene.Name = st.SaveAs
	}
	return scene, nil
}

// RunScenario executes all steps in order. Results are stored when store
// is not nil. The first failing step ends the scenario.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, log logrus.FieldLogger) ([]*experiment.Result, error) {
	results := make([]*experiment.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		scene, err := step.Scene()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		slog := log.WithFields(logrus.Fields{"scenario": scenario.Name, "step": i + 1})
		slog.Infof("running %s", scene.Name)

		result, err := experiment.New(scene, slog).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if store != nil {
			if _, err := store.Save(result, scene); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// ParameterSweep runs Base for NumSteps evenly spaced values of one
// parameter.
type ParameterSweep struct {
	Base      *config.Scene
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue  float64
	PeakEnergy  float64
	FinalEnergy float64
	Residual    float64
	Stability   float64
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, log logrus.FieldLogger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		scene := sweep.Base.Clone()
		if err := scene.SetParam(sweep.ParamName, paramVal); err != nil {
			return results, err
		}

		plog := log.WithField(sweep.ParamName, paramVal)
		result, err := experiment.New(scene, plog).Run(ctx)
		if err != nil {
			return results, err
		}

		results = append(results, SweepResult{
			ParamValue:  paramVal,
			PeakEnergy:  result.PeakEnergy,
			FinalEnergy: result.FinalEnergy,
			Residual:    result.Residual(),
			Stability:   result.Stability,
		})

		plog.Infof("sweep %d/%d: residual %.3e", i+1, sweep.NumSteps, result.Residual())
	}

	return results, nil
}

// Best returns the sweep point with the smallest residual.
func Best(results []SweepResult) (SweepResult, bool) {
	if len(results) == 0 {
		return SweepResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.Residual < best.Residual {
			best = r
		}
	}
	return best, true
}
