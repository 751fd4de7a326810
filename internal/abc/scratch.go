package abc

import "github.com/san-kum/fdtdabc/internal/dynamo"

// scratch holds the per-sheet intermediate values between the pre and
// apply phases. All slices are carved from one arena.
type scratch[T dynamo.Float] struct {
	arena []T

	V  [2][]T
	I  [2][]T
	Ic [2][]T
}

func newScratch[T dynamo.Float](cells int, super bool) scratch[T] {
	slots := 2
	if super {
		slots = 6
	}

	s := scratch[T]{arena: make([]T, slots*cells)}
	carve := func(k int) []T {
		return s.arena[k*cells : (k+1)*cells : (k+1)*cells]
	}

	s.V = [2][]T{carve(0), carve(1)}
	if super {
		s.I = [2][]T{carve(2), carve(3)}
		s.Ic = [2][]T{carve(4), carve(5)}
	}
	return s
}
