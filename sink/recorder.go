package sink

import "sync"

// Recorder is an in-memory Sink that keeps every write. It is meant for tests
// asserting that exactly one response was produced.
type Recorder struct {
	mu     sync.Mutex
	writes []Write
	err    error
}

// Write is one recorded Send call.
type Write struct {
	Status int
	Body   any
}

// NewRecorder returns a Recorder whose Send returns err after recording.
func NewRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

func (r *Recorder) Send(status int, body any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writes = append(r.writes, Write{Status: status, Body: body})

	return r.err
}

// Writes returns a copy of the recorded writes.
func (r *Recorder) Writes() []Write {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Write, len(r.writes))
	copy(out, r.writes)

	return out
}

// Count reports the number of Send calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.writes)
}

// Last returns the most recent write and whether there was one.
func (r *Recorder) Last() (Write, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.writes) == 0 {
		return Write{}, false
	}

	return r.writes[len(r.writes)-1], true
}
