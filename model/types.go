package model

import "math"

// ActivityID identifies one activity/post. IDs are opaque, 64-bit and
// monotonically increasing: a larger ID is a newer activity. The pipeline
// orders IDs descending (newest first) and compares them, never parses them.
type ActivityID int64

// MaxActivityID is the largest possible ActivityID. Used as the "no upper
// bound" value for last-seen-ID windows.
const MaxActivityID = ActivityID(math.MaxInt64)

// EntityID identifies a person, group, organization or application in the
// directory. Request transformers resolve symbolic names to EntityIDs.
type EntityID int64

// EntityType distinguishes directory entities referenced by stream queries.
type EntityType uint8

const (
	EntityUnknown EntityType = iota
	EntityPerson
	EntityGroup
	EntityOrganization
	EntityApplication
)

// String returns a human-readable entity type name.
func (t EntityType) String() string {
	switch t {
	case EntityPerson:
		return "person"
	case EntityGroup:
		return "group"
	case EntityOrganization:
		return "organization"
	case EntityApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Activity is a single feed item as the indexing side sees it. The pipeline
// itself only moves ActivityIDs around; Activity is consumed when documents
// are added to the full-text index or the relational store.
type Activity struct {
	ID       ActivityID
	AuthorID EntityID
	// RecipientID is the stream the activity was posted to; RecipientType
	// tells whether that stream belongs to a person or a group.
	RecipientID   EntityID
	RecipientType EntityType
	OrgID         EntityID
	AppID         EntityID
	Content       string
}

// EverythingKeyword is indexed into every activity's content. NOT-only
// boolean queries are padded with it because the query grammar rejects a
// query consisting solely of negated terms.
const EverythingKeyword = "volgon"
