package connection

import (
	"sort"
	"strings"
)

// SubscriptionSet is the desired set of instrument identifiers. Identifiers
// are stored upper-case; blank ones are ignored. It is not safe for
// concurrent use; Session guards it with its own mutex.
type SubscriptionSet struct {
	ids map[string]struct{}
}

// NewSubscriptionSet returns a set seeded with ids.
func NewSubscriptionSet(ids ...string) *SubscriptionSet {
	s := &SubscriptionSet{ids: make(map[string]struct{})}
	s.Add(ids...)
	return s
}

// Normalize returns the canonical form of an identifier.
func Normalize(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Add inserts ids and returns those that were not already present, in
// first-seen order.
func (s *SubscriptionSet) Add(ids ...string) []string {
	var added []string
	for _, id := range ids {
		id = Normalize(id)
		if id == "" {
			continue
		}
		if _, ok := s.ids[id]; ok {
			continue
		}
		s.ids[id] = struct{}{}
		added = append(added, id)
	}
	return added
}

// Remove deletes ids and returns those that were present, in first-seen
// order.
func (s *SubscriptionSet) Remove(ids ...string) []string {
	var removed []string
	for _, id := range ids {
		id = Normalize(id)
		if _, ok := s.ids[id]; !ok {
			continue
		}
		delete(s.ids, id)
		removed = append(removed, id)
	}
	return removed
}

// Contains reports whether id is in the set.
func (s *SubscriptionSet) Contains(id string) bool {
	_, ok := s.ids[Normalize(id)]
	return ok
}

// Len reports how many symbols are subscribed.
func (s *SubscriptionSet) Len() int { return len(s.ids) }

// List returns the identifiers sorted.
func (s *SubscriptionSet) List() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
