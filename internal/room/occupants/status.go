package occupants

import "strings"

// Status keys understood by the client
const (
	StatusMove     = "mv"
	StatusSit      = "sit"
	StatusLay      = "lay"
	StatusSwim     = "swim"
	StatusDance    = "dance"
	StatusFlatCtrl = "flatctrl"
)

type status struct {
	key   string
	value string
}

// Statuses is an ordered bag of status entries. Setting an existing key
// keeps its position.
type Statuses struct {
	entries []status
}

// Set adds key or replaces its value
func (s *Statuses) Set(key, value string) {
	for i := range s.entries {
		if s.entries[i].key == key {
			s.entries[i].value = value
			return
		}
	}
	s.entries = append(s.entries, status{key: key, value: value})
}

// Remove drops key. It reports whether key was present.
func (s *Statuses) Remove(key string) bool {
	for i := range s.entries {
		if s.entries[i].key == key {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the value for key
func (s *Statuses) Get(key string) (string, bool) {
	for _, e := range s.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// Has reports whether key is set
func (s *Statuses) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of entries
func (s *Statuses) Len() int {
	return len(s.entries)
}

// String renders "/key value/key/" with a slash after every entry, or "/"
// when empty.
func (s *Statuses) String() string {
	var b strings.Builder
	b.WriteByte('/')
	for _, e := range s.entries {
		b.WriteString(e.key)
		if e.value != "" {
			b.WriteByte(' ')
			b.WriteString(e.value)
		}
		b.WriteByte('/')
	}
	return b.String()
}
