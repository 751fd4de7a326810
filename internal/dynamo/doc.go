// Package dynamo provides the shared primitives of the boundary solver.
//
// The package defines the small vocabulary every other package builds on:
//
//   - [Float]: precision constraint for field values (float32 or float64)
//   - [Index]: a 3D grid index
//   - [Partition]: static, contiguous assignment of work items to threads
//   - sentinel errors wrapped by the builder and the reference host
//
// # Example
//
//	p := dynamo.AssignJobs(len(sheets), 4)
//	start, end, ok := p.Range(threadID)
//	if !ok {
//		return
//	}
//	for i := start; i < end; i++ {
//		update(sheets[i])
//	}
//
// # Thread Safety
//
// A [Partition] is immutable once computed and may be shared by any number
// of goroutines. Recomputing a partition produces a new value.
package dynamo
