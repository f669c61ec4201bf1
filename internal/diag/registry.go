package diag

import (
	"sync"
	"unsafe"
)

// Registry maps OS thread ids to their sinks. A sink is opened on the first
// failure a thread records and closed again once it has been drained, so the
// map only ever holds threads that still have an error to collect.
type Registry struct {
	mu    sync.Mutex
	sinks map[uint64]*Sink
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sinks: make(map[uint64]*Sink)}
}

// Open returns the sink for tid, creating it when needed.
func (r *Registry) Open(tid uint64) *Sink {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sinks[tid]
	if !ok {
		s = &Sink{}
		r.sinks[tid] = s
	}
	return s
}

// Close discards the sink for tid together with any pending error.
func (r *Registry) Close(tid uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, tid)
}

func (r *Registry) lookup(tid uint64) (*Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sinks[tid]
	return s, ok
}

// Record stores err as the last error of thread tid.
func (r *Registry) Record(tid uint64, err error) {
	if err == nil {
		return
	}
	r.Open(tid).Record(err)
}

// Len is Sink.Len for thread tid.
func (r *Registry) Len(tid uint64) int {
	s, ok := r.lookup(tid)
	if !ok {
		return 0
	}
	return s.Len()
}

// DrainInto is Sink.DrainInto for thread tid. The sink is closed afterwards
// if nothing is left in it.
func (r *Registry) DrainInto(tid uint64, buf unsafe.Pointer, capacity int32) int32 {
	if buf == nil {
		return (&Sink{}).DrainInto(nil, capacity)
	}
	s, ok := r.lookup(tid)
	if !ok {
		return 0
	}
	n := s.DrainInto(buf, capacity)

	r.mu.Lock()
	if cur, ok := r.sinks[tid]; ok && cur == s && !s.Pending() {
		delete(r.sinks, tid)
	}
	r.mu.Unlock()
	return n
}

// Pending returns the number of threads holding an undrained error.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sinks {
		if s.Pending() {
			n++
		}
	}
	return n
}
