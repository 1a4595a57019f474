// Package frame provides the columnar table abstraction the transformation
// pipeline operates on.
//
// A Frame is an ordered collection of named, typed columns of equal height.
// Cells are nullable: a nil cell means the value is absent, which is distinct
// from an empty string or an empty list. The type system is deliberately
// sealed to the five types the pipeline needs (string, int, bool, date,
// string-list) - no floats, which break deterministic hashing.
//
// All operations are eager and return new frames or mutate in place as
// documented; the behavioral contract holds regardless of evaluation
// strategy, so no deferred planner is layered on top.
package frame
