// Package export writes exported workouts to local files: one JSON
// artifact per workout plus a generated Markdown journal over all
// artifacts in a directory.
package export
