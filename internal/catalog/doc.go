// Package catalog aggregates the records of every content source into one
// read-only directory.
//
// Sources load in order, the built-in corpus first. When two records of the
// same type share a slug the first one loaded wins for lookups and listings;
// the later one is kept so validation can report it.
//
// A [Catalog] is immutable once built. [Live] holds the current catalog for
// long-running servers and swaps in a freshly loaded one atomically, so a
// reader sees either the old or the new directory, never a mix.
package catalog
