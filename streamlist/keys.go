package streamlist

import (
	"fmt"
	"strings"

	"github.com/hupe1980/streamscope/model"
)

// Key derivation for precomputed composite-stream ID lists. Keys are stable
// across processes; snapshots store them verbatim.

// FollowedByKey is the stream of activities posted to streams a person
// follows.
func FollowedByKey(personID model.EntityID) string {
	return fmt.Sprintf("followedBy:%d", personID)
}

// SavedByKey is a person's saved-activities list.
func SavedByKey(personID model.EntityID) string {
	return fmt.Sprintf("savedBy:%d", personID)
}

// JoinedGroupsKey is the stream of activities in groups a person joined.
func JoinedGroupsKey(personID model.EntityID) string {
	return fmt.Sprintf("joinedGroups:%d", personID)
}

// RecipientKey is the stream of one person's or group's received
// activities. Directory IDs are allocated from a single sequence, so the
// recipient's entity type is not part of the key.
func RecipientKey(id model.EntityID) string {
	return fmt.Sprintf("recipient:%d", id)
}

// AuthoredByKey is the stream of activities one person authored.
func AuthoredByKey(personID model.EntityID) string {
	return fmt.Sprintf("authoredBy:%d", personID)
}

// VisibleKey is the set of activity IDs a person is authorized to see.
func VisibleKey(personID model.EntityID) string {
	return fmt.Sprintf("visible:%d", personID)
}

// IsVisibleKey reports whether key names a per-user visibility set.
func IsVisibleKey(key string) bool {
	return strings.HasPrefix(key, "visible:")
}

// EveryoneKey is the firehose stream of all public activities.
const EveryoneKey = "everyone"
