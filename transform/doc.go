// Package transform resolves the symbolic identifiers embedded in stream
// query clauses (account names, group and organization short names) into
// the numeric entity IDs the data sources operate on.
//
// Transformers are pure lookups except where a clause touches private data:
// savedBy verifies the resolved target is the requesting user and fails
// with ErrNotAuthorized otherwise.
package transform
