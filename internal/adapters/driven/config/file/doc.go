// Package file provides the TOML-backed configuration store.
//
// Keys are flattened to dot notation on load ("training.rf_trees") and
// written back as nested tables, so the file stays hand-editable.
package file
