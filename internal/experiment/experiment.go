// Package experiment turns a scene into a running solver: mesh and geometry
// from the scene, absorbing sheets from the boundary builder, and the
// reference field engine with probe and energy observers attached.
package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/fdtdabc/internal/abc"
	"github.com/san-kum/fdtdabc/internal/config"
)

// Result summarises a run. Energy holds one sample every EnergyEvery steps;
// FinalEnergy is taken at the last completed step.
type Result struct {
	Scene       string
	Precision   string
	Threads     int
	Steps       uint
	Time        float64
	Timestep    float64
	Sheets      int
	Cells       int
	Diagnostics []abc.Diagnostic
	Stat        string
	ProbeTimes  []float64
	ProbeValues []float64
	Energy      []float64
	EnergyEvery uint
	PeakEnergy  float64
	FinalEnergy float64
	Stability   float64
	Elapsed     time.Duration
}

// Skipped counts the diagnostics that dropped a sheet.
func (r *Result) Skipped() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Skipped() {
			n++
		}
	}
	return n
}

// Residual is the final energy relative to the peak.
func (r *Result) Residual() float64 {
	if r.PeakEnergy == 0 {
		return 0
	}
	return r.FinalEnergy / r.PeakEnergy
}

type Experiment struct {
	scene    *config.Scene
	log      logrus.FieldLogger
	registry *Registry
	session  Session
}

func New(scene *config.Scene, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Experiment{scene: scene, log: log, registry: NewRegistry()}
}

// Setup validates the scene and builds a session at the scene's precision.
func (e *Experiment) Setup() (Session, error) {
	if err := e.scene.Validate(); err != nil {
		return nil, err
	}
	s, err := e.registry.Create(e.scene.Precision, e.scene, e.log.WithField("scene", e.scene.Name))
	if err != nil {
		return nil, err
	}
	e.session = s
	return s, nil
}

// Run sets up a session if needed and runs it to the scene's step count.
// The session is closed afterwards.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.session == nil {
		if _, err := e.Setup(); err != nil {
			return nil, err
		}
	}
	defer e.Close()

	res, err := e.session.Run(ctx)
	if err != nil {
		return res, fmt.Errorf("run %s: %w", e.scene.Name, err)
	}
	return res, nil
}

// Session returns the current session, nil before Setup.
func (e *Experiment) Session() Session { return e.session }

func (e *Experiment) Close() {
	if e.session != nil {
		e.session.Close()
		e.session = nil
	}
}
