// Package abc implements first-order Mur absorbing boundary sheets for the
// leapfrog field update, including the super-absorbing variant that also
// corrects the current family.
//
// A [Builder] turns absorbing-boundary properties into an immutable [Config]
// of sheets with precomputed reflection coefficients. [Config.NewEngine]
// binds that configuration to the host fields; the resulting [Engine] is
// called by the host once per thread and per phase every timestep:
//
//	PreVoltage -> curl update -> PostVoltage -> ApplyVoltages
//	PreCurrent -> curl update -> PostCurrent -> ApplyCurrents
//
// # Example
//
//	cfg, diags, err := abc.NewBuilder[float32]().Build(geo, op)
//	if err != nil {
//		return err
//	}
//	eng := cfg.NewEngine(grid)
//	eng.SetNumberOfThreads(4)
//
// # Thread Safety
//
// Sheets are distributed over threads with a static contiguous partition.
// Every sheet is touched by exactly one thread, and sheets never share grid
// cells, so the hooks take no locks. The host must separate phases with a
// barrier.
package abc
