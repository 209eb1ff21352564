// Package driving declares what the command line, the REST API and the MCP
// server may ask of the core: run ingestion or training, queue pipeline
// jobs, predict prices and read settings or experiment history.
//
// internal/core/services provides the implementations.
package driving
