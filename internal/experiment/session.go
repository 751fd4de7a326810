package experiment

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/fdtdabc/internal/abc"
	"github.com/san-kum/fdtdabc/internal/config"
	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/fdtd"
	"github.com/san-kum/fdtdabc/internal/mesh"
	"github.com/san-kum/fdtdabc/internal/metrics"
)

const (
	// EnergyEvery is the energy sampling interval in timesteps.
	EnergyEvery = 4

	// StabilityThreshold bounds the field magnitude of a sane run.
	StabilityThreshold = 1e6
)

// Session is one scene set up at a fixed precision. It can be stepped
// interactively or run to completion.
type Session interface {
	Scene() *config.Scene

	// Step advances n timesteps regardless of the scene's step count.
	Step(n int) error

	// Run advances to the scene's step count.
	Run(ctx context.Context) (*Result, error)

	Timesteps() uint
	Time() float64
	Energy() float64

	// Slice returns the voltage component comp on the plane normal to axis
	// at line index. Rows run along the first tangential axis.
	Slice(comp, axis, index int) [][]float64

	Result() *Result
	Close()
}

type session[T dynamo.Float] struct {
	scene     *config.Scene
	log       logrus.FieldLogger
	op        *mesh.Operator
	eng       *fdtd.Engine[T]
	cfg       *abc.Config[T]
	diags     []abc.Diagnostic
	stat      string
	probe     *fdtd.Probe[T]
	energy    *metrics.FieldEnergy
	stability *metrics.Stability
	elapsed   time.Duration
}

func newSession[T dynamo.Float](scene *config.Scene, log logrus.FieldLogger) (Session, error) {
	m, err := scene.BuildMesh()
	if err != nil {
		return nil, err
	}
	op, err := mesh.NewCFLOperator(m, scene.CFLFactor)
	if err != nil {
		return nil, err
	}

	b := abc.NewBuilder[T]()
	b.Log = log
	b.Threads = scene.Threads
	b.StartTimestep = scene.StartTimestep
	cfg, diags, err := b.Build(scene.Geometry(), op)
	if err != nil {
		return nil, err
	}

	s := &session[T]{
		scene: scene,
		log:   log,
		op:    op,
		eng:   fdtd.NewEngine[T](op, scene.Threads),
		cfg:   cfg,
		diags: diags,
	}
	if cfg.NumSheets() > 0 {
		s.eng.AddExtension(cfg.NewEngine(s.eng.Grid()))
	}

	x := scene.Excitation
	src := fdtd.NewGaussianBurst(dynamo.Index(x.Position), x.Component, x.Frequency)
	if x.Amplitude > 0 {
		src.Amplitude = x.Amplitude
	}
	s.eng.AddExcitation(src)

	s.probe = fdtd.NewProbe(s.eng.Grid(), dynamo.Index(scene.Probe.Position), scene.Probe.Component)
	s.energy = metrics.NewFieldEnergy(s.eng, EnergyEvery)
	s.stability = metrics.NewStability(s.eng, StabilityThreshold)
	s.eng.AddObserver(s.probe)
	s.eng.AddObserver(s.energy)
	s.eng.AddObserver(s.stability)

	var sb strings.Builder
	if err := cfg.WriteStat(&sb); err != nil {
		s.eng.Close()
		return nil, err
	}
	s.stat = sb.String()

	log.WithFields(logrus.Fields{
		"sheets":  cfg.NumSheets(),
		"cells":   cfg.TotalCells(),
		"dt":      op.Timestep(),
		"threads": s.eng.NumThreads(),
		"size":    op.Size().String(),
	}).Info("scene ready")

	return s, nil
}

func (s *session[T]) Scene() *config.Scene { return s.scene }
func (s *session[T]) Timesteps() uint      { return s.eng.Grid().Timesteps() }
func (s *session[T]) Time() float64        { return s.eng.Time() }
func (s *session[T]) Energy() float64      { return s.energy.Sample() }
func (s *session[T]) Close()               { s.eng.Close() }

func (s *session[T]) Step(n int) error {
	if n <= 0 {
		return nil
	}
	start := time.Now()
	_, err := s.eng.Run(context.Background(), n)
	s.elapsed += time.Since(start)
	return err
}

func (s *session[T]) Run(ctx context.Context) (*Result, error) {
	remaining := s.scene.Steps - int(s.Timesteps())
	if remaining > 0 {
		start := time.Now()
		_, err := s.eng.Run(ctx, remaining)
		s.elapsed += time.Since(start)
		if err != nil {
			return s.Result(), err
		}
	}

	res := s.Result()
	s.log.WithFields(logrus.Fields{
		"steps":    res.Steps,
		"residual": res.Residual(),
		"elapsed":  res.Elapsed.Round(time.Millisecond),
	}).Info("run complete")
	return res, nil
}

func (s *session[T]) Slice(comp, axis, index int) [][]float64 {
	g := s.eng.Grid()
	size := g.Size()
	p, q := (axis+1)%3, (axis+2)%3

	out := make([][]float64, size[p])
	var pos dynamo.Index
	pos[axis] = index
	for i := range out {
		out[i] = make([]float64, size[q])
		pos[p] = i
		for j := range out[i] {
			pos[q] = j
			out[i][j] = float64(g.Volt(comp, pos))
		}
	}
	return out
}

func (s *session[T]) Result() *Result {
	final := s.energy.Sample()
	return &Result{
		Scene:       s.scene.Name,
		Precision:   s.scene.Precision,
		Threads:     s.eng.NumThreads(),
		Steps:       s.Timesteps(),
		Time:        s.eng.Time(),
		Timestep:    s.op.Timestep(),
		Sheets:      s.cfg.NumSheets(),
		Cells:       s.cfg.TotalCells(),
		Diagnostics: s.diags,
		Stat:        s.stat,
		ProbeTimes:  s.probe.Times,
		ProbeValues: s.probe.Values,
		Energy:      s.energy.History(),
		EnergyEvery: EnergyEvery,
		PeakEnergy:  s.energy.Peak(),
		FinalEnergy: final,
		Stability:   s.stability.Value(),
		Elapsed:     s.elapsed,
	}
}
