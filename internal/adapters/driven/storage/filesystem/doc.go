// Package filesystem persists model artifacts, the manifest and the exported
// run parameters as plain files.
//
// Every write goes to a temporary file in the destination directory and is
// renamed into place, so a concurrent reader sees either the old or the new
// content.
package filesystem
