// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the export pipeline to function:
//
//   - Discoverer: Enumerates workout IDs from the remote listing
//   - WorkoutFetcher: Fetches and parses a single workout
//   - ArtifactWriter: Writes the converted artifact to disk
//   - StateStore: Durable, crash-safe export progress
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - ProgressObserver: Per-item outcome notifications. Without it,
//     only the final summary is reported.
package driven
