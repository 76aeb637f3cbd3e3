// Package file provides the file-based configuration adapter.
// Settings live in a TOML file in the runlog config directory.
package file
