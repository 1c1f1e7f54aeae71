package taskpool

const defaultQueueCapacity = 64

// taskQueue is an unbounded FIFO ring of runnables.
// It is not synchronized: every call happens under Pool.mu.
type taskQueue struct {
	buf        []runnable
	head, tail int // read/write indices
	size       int
}

func newTaskQueue(capacity uint) *taskQueue {
	if capacity == 0 {
		capacity = 1
	}
	return &taskQueue{buf: make([]runnable, capacity)}
}

// Len returns the number of queued tasks.
func (q *taskQueue) Len() int { return q.size }

// Push appends r at the tail, growing the ring when full. It never drops.
func (q *taskQueue) Push(r runnable) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[q.tail] = r
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
}

// Pop removes and returns the head, or false when the queue is empty.
func (q *taskQueue) Pop() (runnable, bool) {
	if q.size == 0 {
		return nil, false
	}
	r := q.buf[q.head]
	q.buf[q.head] = nil // release for GC
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return r, true
}

// grow doubles the ring, unrolling it so the head lands at index 0.
func (q *taskQueue) grow() {
	buf := make([]runnable, len(q.buf)*2)
	n := copy(buf, q.buf[q.head:])
	copy(buf[n:], q.buf[:q.head])
	q.buf = buf
	q.head = 0
	q.tail = q.size
}
