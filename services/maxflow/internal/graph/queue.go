package graph

// =============================================================================
// Queue Implementation
// =============================================================================

// Queue is a FIFO queue of vertex ids used by the breadth-first searches.
// It uses a slice with a head index so that a search never shifts elements,
// and Reset lets one queue serve every round of the augmentation loop.
type Queue struct {
	data []int
	head int
}

// NewQueue creates a Queue with room for capacity vertices.
// A search never enqueues a vertex twice, so the vertex count is enough.
func NewQueue(capacity int) *Queue {
	return &Queue{data: make([]int, 0, capacity)}
}

// Push adds v to the back of the queue.
func (q *Queue) Push(v int) {
	q.data = append(q.data, v)
}

// Pop removes and returns the front element.
// Panics if the queue is empty; check Empty first.
func (q *Queue) Pop() int {
	v := q.data[q.head]
	q.head++
	return v
}

// Empty reports whether the queue holds no elements.
func (q *Queue) Empty() bool {
	return q.head >= len(q.data)
}

// Len returns the number of queued elements.
func (q *Queue) Len() int {
	return len(q.data) - q.head
}

// Reset clears the queue, keeping the underlying storage.
func (q *Queue) Reset() {
	q.data = q.data[:0]
	q.head = 0
}
