// Package ids provides helpers for strictly descending activity ID lists,
// the ordering every pipeline component exchanges.
package ids

import (
	"sort"

	"github.com/hupe1980/streamscope/model"
)

// IsDescending reports whether the list is strictly descending (no
// duplicates).
func IsDescending(list []model.ActivityID) bool {
	for i := 1; i < len(list); i++ {
		if list[i] >= list[i-1] {
			return false
		}
	}
	return true
}

// SortDescending sorts the list in place, newest first, and removes
// duplicates. Returns the (possibly shortened) slice.
func SortDescending(list []model.ActivityID) []model.ActivityID {
	sort.Slice(list, func(i, j int) bool { return list[i] > list[j] })
	out := list[:0]
	for i, id := range list {
		if i > 0 && id == list[i-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// InsertCapped inserts id into a descending list, keeping at most cap
// entries by dropping the oldest. Inserting an existing ID is a no-op.
func InsertCapped(list []model.ActivityID, id model.ActivityID, capacity int) []model.ActivityID {
	pos := sort.Search(len(list), func(i int) bool { return list[i] <= id })
	if pos < len(list) && list[pos] == id {
		return list
	}
	list = append(list, 0)
	copy(list[pos+1:], list[pos:])
	list[pos] = id
	if capacity > 0 && len(list) > capacity {
		list = list[:capacity]
	}
	return list
}

// Window returns the sub-list with IDs strictly inside (minID, maxID).
// The input must be descending; the result shares its backing array.
func Window(list []model.ActivityID, minID, maxID model.ActivityID) []model.ActivityID {
	// First index with id < maxID.
	lo := sort.Search(len(list), func(i int) bool { return list[i] < maxID })
	// First index with id <= minID.
	hi := sort.Search(len(list), func(i int) bool { return list[i] <= minID })
	if lo >= hi {
		return nil
	}
	return list[lo:hi]
}

// Contains reports whether a descending list contains id.
func Contains(list []model.ActivityID, id model.ActivityID) bool {
	pos := sort.Search(len(list), func(i int) bool { return list[i] <= id })
	return pos < len(list) && list[pos] == id
}
