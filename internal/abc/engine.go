package abc

import (
	"github.com/san-kum/fdtdabc/internal/dynamo"
)

// Engine applies the absorbing update of a Config to the host fields.
type Engine[T dynamo.Float] struct {
	cfg     *Config[T]
	acc     FieldAccessor[T]
	part    dynamo.Partition
	scratch []scratch[T]
}

// NewEngine binds c to the host fields and allocates the scratch state.
// c must not be modified while the engine is in use.
func (c *Config[T]) NewEngine(acc FieldAccessor[T]) *Engine[T] {
	e := &Engine[T]{
		cfg:     c,
		acc:     acc,
		scratch: make([]scratch[T], len(c.Sheets)),
	}
	for i := range c.Sheets {
		s := &c.Sheets[i]
		e.scratch[i] = newScratch[T](s.TotalCells, s.Type.SuperAbsorbing())
	}
	e.SetNumberOfThreads(c.Threads)
	return e
}

func (e *Engine[T]) Config() *Config[T] { return e.cfg }

// SetNumberOfThreads repartitions the sheets over n threads.
func (e *Engine[T]) SetNumberOfThreads(n int) {
	e.part = dynamo.AssignJobs(len(e.cfg.Sheets), n)
}

func (e *Engine[T]) NumThreads() int { return e.part.NumThreads() }

// Active reports whether the voltage pre and post phases run at the host's
// current timestep.
func (e *Engine[T]) Active() bool {
	return e.acc.Timesteps() >= e.cfg.StartTimestep
}

func (e *Engine[T]) PreVoltage()    { e.PreVoltageThread(0) }
func (e *Engine[T]) PostVoltage()   { e.PostVoltageThread(0) }
func (e *Engine[T]) ApplyVoltages() { e.ApplyVoltagesThread(0) }
func (e *Engine[T]) PreCurrent()    { e.PreCurrentThread(0) }
func (e *Engine[T]) PostCurrent()   { e.PostCurrentThread(0) }
func (e *Engine[T]) ApplyCurrents() { e.ApplyCurrentsThread(0) }

// PreVoltageThread stores V = E(neighbour) - K1*E(boundary) before the curl
// update overwrites the voltages.
func (e *Engine[T]) PreVoltageThread(threadID int) {
	if !e.Active() {
		return
	}
	e.each(threadID, false, func(s *Sheet[T], sc *scratch[T]) {
		e.sweep(s, s.Start[s.Normal()], s.ShiftV, 0, func(n, c int, b, nb dynamo.Index) {
			sc.V[n][c] = e.acc.Volt(s.AxisOrder[n+1], nb) - s.K1[n][c]*e.acc.Volt(s.AxisOrder[n+1], b)
		})
	})
}

// PostVoltageThread adds K1*E(neighbour) using the freshly updated voltages.
func (e *Engine[T]) PostVoltageThread(threadID int) {
	if !e.Active() {
		return
	}
	e.each(threadID, false, func(s *Sheet[T], sc *scratch[T]) {
		e.sweep(s, s.Start[s.Normal()], s.ShiftV, 0, func(n, c int, _, nb dynamo.Index) {
			sc.V[n][c] += s.K1[n][c] * e.acc.Volt(s.AxisOrder[n+1], nb)
		})
	})
}

// ApplyVoltagesThread writes the stored voltages onto the sheet.
func (e *Engine[T]) ApplyVoltagesThread(threadID int) {
	e.each(threadID, false, func(s *Sheet[T], sc *scratch[T]) {
		e.sweep(s, s.Start[s.Normal()], s.ShiftV, 0, func(n, c int, b, _ dynamo.Index) {
			e.acc.SetVolt(s.AxisOrder[n+1], b, sc.V[n][c])
		})
	})
}

func (e *Engine[T]) PreCurrentThread(threadID int) {
	e.each(threadID, true, func(s *Sheet[T], sc *scratch[T]) {
		e.sweep(s, s.BaseI, s.ShiftI, 1, func(n, c int, b, nb dynamo.Index) {
			sc.I[n][c] = e.acc.Curr(s.AxisOrder[n+1], nb) - s.K1[n][c]*e.acc.Curr(s.AxisOrder[n+1], b)
		})
	})
}

func (e *Engine[T]) PostCurrentThread(threadID int) {
	e.each(threadID, true, func(s *Sheet[T], sc *scratch[T]) {
		e.sweep(s, s.BaseI, s.ShiftI, 1, func(n, c int, _, nb dynamo.Index) {
			sc.I[n][c] += s.K1[n][c] * e.acc.Curr(s.AxisOrder[n+1], nb)
		})
	})
}

// ApplyCurrentsThread blends the curl-derived currents with the absorbing
// estimate: (Ic + K2*I) / (1 + K2).
//
// Writing the blend back to the grid extends the first-order Mur model,
// which only records Ic at this point. Plain Mur sheets are not visited and
// keep the currents the host computed.
func (e *Engine[T]) ApplyCurrentsThread(threadID int) {
	e.each(threadID, true, func(s *Sheet[T], sc *scratch[T]) {
		e.sweep(s, s.BaseI, s.ShiftI, 1, func(n, c int, b, _ dynamo.Index) {
			comp := s.AxisOrder[n+1]
			sc.Ic[n][c] = e.acc.Curr(comp, b)
			k2 := s.K2[n][c]
			e.acc.SetCurr(comp, b, (sc.Ic[n][c]+k2*sc.I[n][c])/(1+k2))
		})
	})
}

// each runs fn on the sheets of threadID. superOnly restricts it to
// super-absorbing sheets.
func (e *Engine[T]) each(threadID int, superOnly bool, fn func(s *Sheet[T], sc *scratch[T])) {
	start, end, ok := e.part.Range(threadID)
	if !ok {
		return
	}
	for i := start; i < end; i++ {
		s := &e.cfg.Sheets[i]
		if superOnly && !s.Type.SuperAbsorbing() {
			continue
		}
		fn(s, &e.scratch[i])
	}
}

// sweep visits the tangential cells of s with the boundary line at base and
// the neighbour line at shift. shrink trims cells from the upper end of both
// tangential ranges. fn is called once per tangential component n (0 or 1)
// with the running cell counter c.
func (e *Engine[T]) sweep(s *Sheet[T], base, shift, shrink int, fn func(n, c int, b, nb dynamo.Index)) {
	nrm, t1, t2 := s.AxisOrder[0], s.AxisOrder[1], s.AxisOrder[2]

	var b, nb dynamo.Index
	b[nrm], nb[nrm] = base, shift

	c := 0
	for i := s.Start[t1]; i < s.Stop[t1]-shrink; i++ {
		b[t1], nb[t1] = i, i
		for j := s.Start[t2]; j < s.Stop[t2]-shrink; j++ {
			b[t2], nb[t2] = j, j
			fn(0, c, b, nb)
			fn(1, c, b, nb)
			c++
		}
	}
}
