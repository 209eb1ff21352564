// Package services holds the pipeline logic behind the driving ports.
//
// Ingestion resolves and refreshes the raw snapshot, training cleans the
// raw table and fits the two price models, and prediction serves the
// cached random forest. Every dependency on storage or the network comes
// in through a driven port, so the package is tested with in-memory fakes.
package services
