// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the pipeline to function:
//
//   - AnalyticalStore: Raw and clean tables plus the columnar snapshot (DuckDB)
//   - ArtifactStore: Model artifacts and manifest persistence
//   - ExperimentStore: Append-only experiment history
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the pipeline degrades gracefully:
//
//   - RemoteRepository: Dataset freshness check and download. Without it only local files are used.
//   - ExperimentExporter: Parameter and metric files for external tracking.
//   - SchedulerStore: Only needed when periodic refresh is enabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
