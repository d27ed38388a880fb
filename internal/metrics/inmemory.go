package metrics

import "sync/atomic"

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccesses      uint64
	LoginFailures       uint64
	IdentityCacheHits   uint64
	IdentityCacheMisses uint64
	UsersRegistered     uint64
	UsersUpdated        uint64
	UsersDeleted        uint64
	TodosCreated        uint64
	TodosUpdated        uint64
	TodosDeleted        uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginSuccesses      uint64
	loginFailures       uint64
	identityCacheHits   uint64
	identityCacheMisses uint64
	usersRegistered     uint64
	usersUpdated        uint64
	usersDeleted        uint64
	todosCreated        uint64
	todosUpdated        uint64
	todosDeleted        uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginSuccesses:      atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:       atomic.LoadUint64(&m.loginFailures),
		IdentityCacheHits:   atomic.LoadUint64(&m.identityCacheHits),
		IdentityCacheMisses: atomic.LoadUint64(&m.identityCacheMisses),
		UsersRegistered:     atomic.LoadUint64(&m.usersRegistered),
		UsersUpdated:        atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:        atomic.LoadUint64(&m.usersDeleted),
		TodosCreated:        atomic.LoadUint64(&m.todosCreated),
		TodosUpdated:        atomic.LoadUint64(&m.todosUpdated),
		TodosDeleted:        atomic.LoadUint64(&m.todosDeleted),
	}
}

// IncLoginSuccess increments the successful-login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed-login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncIdentityCacheHit increments the identity cache hit counter.
func (m *InMemoryRecorder) IncIdentityCacheHit() {
	atomic.AddUint64(&m.identityCacheHits, 1)
}

// IncIdentityCacheMiss increments the identity cache miss counter.
func (m *InMemoryRecorder) IncIdentityCacheMiss() {
	atomic.AddUint64(&m.identityCacheMisses, 1)
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncUserUpdated increments the user update counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the user delete counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncTodoCreated increments the todo create counter.
func (m *InMemoryRecorder) IncTodoCreated() {
	atomic.AddUint64(&m.todosCreated, 1)
}

// IncTodoUpdated increments the todo update counter.
func (m *InMemoryRecorder) IncTodoUpdated() {
	atomic.AddUint64(&m.todosUpdated, 1)
}

// IncTodoDeleted increments the todo delete counter.
func (m *InMemoryRecorder) IncTodoDeleted() {
	atomic.AddUint64(&m.todosDeleted, 1)
}
