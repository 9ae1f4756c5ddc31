// Package cli handles command-line argument parsing and validation for the
// geogridgo binary.
package cli
