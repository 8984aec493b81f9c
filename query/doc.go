// Package query models stream queries as a closed set of typed filter
// clauses and parses the boundary JSON format into that form.
//
// The wire format is a JSON object with a "query" sub-object of filter
// keys (followedBy, authoredBy, recipient, organization, parentOrg,
// savedBy, fromApp, joinedGroups, keywords, sortBy) plus a top-level count
// and optional minId/maxId bounds.
package query
