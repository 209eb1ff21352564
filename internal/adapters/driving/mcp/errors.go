// Package mcp provides an MCP (Model Context Protocol) server adapter for preciar.
// It lets AI assistants request price predictions, inspect model health and
// experiment history, and queue pipeline runs.
package mcp

import "errors"

// ErrMissingPredictionService is returned when the prediction service is not provided.
var ErrMissingPredictionService = errors.New("mcp: prediction service is required")

// ErrDispatcherUnavailable is returned by trigger_pipeline when no dispatcher is wired.
var ErrDispatcherUnavailable = errors.New("mcp: pipeline dispatcher is not configured")

// ErrExperimentsUnavailable is returned by list_experiments when no experiment service is wired.
var ErrExperimentsUnavailable = errors.New("mcp: experiment history is not configured")
