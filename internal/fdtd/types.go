// Package fdtd is a minimal leapfrog field solver on a rectilinear mesh in
// vacuum with perfectly conducting outer walls. Extensions such as the
// absorbing boundary sheets hook into each timestep around the curl updates.
package fdtd

import "github.com/san-kum/fdtdabc/internal/abc"

// Extension is driven once per thread and phase every timestep.
type Extension = abc.UpdateEngine

// Observer is notified after every completed timestep.
type Observer interface {
	OnStep(step uint, t float64)
}

type Result struct {
	Steps    uint
	Time     float64
	Timestep float64
}
