// Package model defines the shared identifier and record types used by the
// stream retrieval pipeline.
//
// Everything here is intentionally small: the pipeline operates on ordered
// ActivityID lists, and components pass IDs around without interpreting them
// beyond their ordering.
package model
