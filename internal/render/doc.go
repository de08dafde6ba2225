// Package render turns directory records into output: prompt templates are
// filled in with pongo2 and markdown is laid out for the terminal with
// glamour.
package render
