package tree

// Queue is a FIFO of references.
type Queue struct {
	items []Ref
	head  int
}

// Push appends ref to the back of the queue.
func (q *Queue) Push(ref Ref) {
	q.items = append(q.items, ref)
}

// Pop removes and returns the front of the queue.
func (q *Queue) Pop() (Ref, bool) {
	if q.head >= len(q.items) {
		return Ref{}, false
	}
	ref := q.items[q.head]
	q.items[q.head] = Ref{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return ref, true
}

// Len returns the number of queued references.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}
