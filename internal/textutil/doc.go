// Package textutil cleans caller supplied identifiers before they become
// parts of output file names.
package textutil
