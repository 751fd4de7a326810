package dynamo

// Partition assigns a contiguous block of items to every thread.
type Partition struct {
	Counts []int
	Starts []int
}

// AssignJobs splits numItems into numThreads contiguous blocks whose sizes
// differ by at most one. The first numItems%numThreads threads get the extra
// item. Threads may receive zero items.
func AssignJobs(numItems, numThreads int) Partition {
	if numThreads < 1 {
		numThreads = 1
	}
	if numItems < 0 {
		numItems = 0
	}

	p := Partition{
		Counts: make([]int, numThreads),
		Starts: make([]int, numThreads),
	}

	per := numItems / numThreads
	remain := numItems % numThreads

	start := 0
	for t := 0; t < numThreads; t++ {
		n := per
		if t < remain {
			n++
		}
		p.Counts[t] = n
		p.Starts[t] = start
		start += n
	}

	return p
}

// NumThreads returns the number of threads the partition was built for.
func (p Partition) NumThreads() int { return len(p.Counts) }

// Range returns the half-open item range [start, end) of threadID.
// ok is false when threadID is outside the partition.
func (p Partition) Range(threadID int) (start, end int, ok bool) {
	if threadID < 0 || threadID >= len(p.Counts) {
		return 0, 0, false
	}
	start = p.Starts[threadID]
	return start, start + p.Counts[threadID], true
}

// Total returns the number of items covered by the partition.
func (p Partition) Total() int {
	n := 0
	for _, c := range p.Counts {
		n += c
	}
	return n
}
