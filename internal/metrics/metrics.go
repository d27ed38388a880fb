// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Auth metrics
	IncLoginSuccess()
	IncLoginFailure()
	IncIdentityCacheHit()
	IncIdentityCacheMiss()

	// User management metrics
	IncUserRegistered()
	IncUserUpdated()
	IncUserDeleted()

	// Todo management metrics
	IncTodoCreated()
	IncTodoUpdated()
	IncTodoDeleted()
}
