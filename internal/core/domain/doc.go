// Package domain defines the core business entities for preciar.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Snapshot: A dated raw dataset file
//   - Table: An in-memory columnar view of an analytical table
//   - FeatureRecord: One listing as seen by a price model
//   - Manifest: The index of trained model artifacts
//   - ExperimentRecord: One historical training result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
