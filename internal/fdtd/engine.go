package fdtd

import (
	"context"
	"fmt"

	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/mesh"
)

// stabilityCheckEvery is the number of timesteps between divergence checks.
const stabilityCheckEvery = 64

type Engine[T dynamo.Float] struct {
	grid      *Grid[T]
	coef      coefficients[T]
	dt        float64
	part      dynamo.Partition
	pool      *workerPool
	exts      []Extension
	sources   []*Excitation
	observers []Observer
}

// NewEngine allocates the fields for op and starts threads workers. The
// x lines are split into contiguous slabs, one per thread.
func NewEngine[T dynamo.Float](op *mesh.Operator, threads int) *Engine[T] {
	threads = max(threads, 1)
	size := op.Size()
	return &Engine[T]{
		grid: NewGrid[T](size),
		coef: newCoefficients[T](op.Mesh, op.Timestep()),
		dt:   op.Timestep(),
		part: dynamo.AssignJobs(size[0], threads),
		pool: newWorkerPool(threads),
	}
}

func (e *Engine[T]) Grid() *Grid[T]     { return e.grid }
func (e *Engine[T]) Timestep() float64  { return e.dt }
func (e *Engine[T]) NumThreads() int    { return e.part.NumThreads() }
func (e *Engine[T]) Time() float64      { return float64(e.grid.ts) * e.dt }
func (e *Engine[T]) Weights() []float64 { return e.coef.weights }

// AddExtension registers x and sets its thread count to the engine's.
func (e *Engine[T]) AddExtension(x Extension) {
	x.SetNumberOfThreads(e.NumThreads())
	e.exts = append(e.exts, x)
}

func (e *Engine[T]) AddExcitation(x *Excitation) { e.sources = append(e.sources, x) }
func (e *Engine[T]) AddObserver(o Observer)      { e.observers = append(e.observers, o) }

// Snapshot implements the field source used by energy metrics.
func (e *Engine[T]) Snapshot(dst []float64) []float64 { return e.grid.Snapshot(dst) }

// Close stops the worker goroutines.
func (e *Engine[T]) Close() { e.pool.close() }

// Step advances the fields by one timestep.
func (e *Engine[T]) Step() {
	e.pool.run(func(id int) {
		for _, x := range e.exts {
			x.PreVoltageThread(id)
		}
	})
	e.pool.run(e.updateVoltages)
	e.pool.run(func(id int) {
		for _, x := range e.exts {
			x.PostVoltageThread(id)
		}
	})
	e.pool.run(func(id int) {
		for _, x := range e.exts {
			x.ApplyVoltagesThread(id)
		}
	})
	e.excite()

	e.pool.run(func(id int) {
		for _, x := range e.exts {
			x.PreCurrentThread(id)
		}
	})
	e.pool.run(e.updateCurrents)
	e.pool.run(func(id int) {
		for _, x := range e.exts {
			x.PostCurrentThread(id)
		}
	})
	e.pool.run(func(id int) {
		for _, x := range e.exts {
			x.ApplyCurrentsThread(id)
		}
	})

	e.grid.ts++
	t := e.Time()
	for _, o := range e.observers {
		o.OnStep(e.grid.ts, t)
	}
}

// Run advances steps timesteps. Cancellation is checked between timesteps.
func (e *Engine[T]) Run(ctx context.Context, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", steps)
	}

	res := &Result{Timestep: e.dt}
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		e.Step()
		res.Steps++
		res.Time = e.Time()

		if res.Steps%stabilityCheckEvery == 0 && !e.grid.Finite() {
			return res, &dynamo.StepError{Step: e.grid.ts, Wrapped: dynamo.ErrUnstable}
		}
	}

	if !e.grid.Finite() {
		return res, &dynamo.StepError{Step: e.grid.ts, Wrapped: dynamo.ErrUnstable}
	}
	return res, nil
}

func (e *Engine[T]) excite() {
	t := e.Time()
	for _, x := range e.sources {
		i := e.grid.Index(x.Pos)
		e.grid.volt[x.Component][i] += T(x.Signal(t))
	}
}

func (e *Engine[T]) updateVoltages(threadID int) {
	start, end, ok := e.part.Range(threadID)
	if !ok {
		return
	}

	g := e.grid
	size, st := g.size, g.stride
	for x := start; x < end; x++ {
		for y := 0; y < size[1]; y++ {
			base := x*st[0] + y*st[1]
			for z := 0; z < size[2]; z++ {
				i := base + z
				for n := 0; n < 3; n++ {
					vi := e.coef.vi[n][i]
					if vi == 0 {
						continue
					}
					p, q := (n+1)%3, (n+2)%3
					curl := g.curr[q][i] - g.curr[q][i-st[p]] - g.curr[p][i] + g.curr[p][i-st[q]]
					g.volt[n][i] += vi * curl
				}
			}
		}
	}
}

func (e *Engine[T]) updateCurrents(threadID int) {
	start, end, ok := e.part.Range(threadID)
	if !ok {
		return
	}

	g := e.grid
	size, st := g.size, g.stride
	for x := start; x < end; x++ {
		for y := 0; y < size[1]; y++ {
			base := x*st[0] + y*st[1]
			for z := 0; z < size[2]; z++ {
				i := base + z
				for n := 0; n < 3; n++ {
					iv := e.coef.iv[n][i]
					if iv == 0 {
						continue
					}
					p, q := (n+1)%3, (n+2)%3
					curl := g.volt[q][i] - g.volt[q][i+st[p]] - g.volt[p][i] + g.volt[p][i+st[q]]
					g.curr[n][i] += iv * curl
				}
			}
		}
	}
}
