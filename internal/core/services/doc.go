// Package services implements the driving port interfaces.
// Services contain the core business logic: the export orchestrator,
// its bounded-concurrency worker pool and the retry policy. They
// orchestrate calls to driven ports (adapters) and own no I/O of
// their own beyond the shared rate limiter.
package services
