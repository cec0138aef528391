package grid

// StackCapacity is the most floor items one cell can hold
const StackCapacity = 20

// FurnitureStack is the ordered list of floor items on one cell. Index 0 is
// the bottom. Ids are kept dense: removing from the middle shifts the items
// above it down one slot, preserving their order. The zero value is an empty
// stack.
type FurnitureStack struct {
	ids [StackCapacity]int
	n   int
}

// Push appends id on top. It returns false when the stack is full.
func (s *FurnitureStack) Push(id int) bool {
	if s.n == StackCapacity {
		return false
	}
	s.ids[s.n] = id
	s.n++
	return true
}

// Remove takes id out of the stack and compacts the slots above it. It
// returns false when id is not on the stack.
func (s *FurnitureStack) Remove(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	copy(s.ids[i:s.n-1], s.ids[i+1:s.n])
	s.n--
	s.ids[s.n] = 0
	return true
}

// Top returns the most recently stacked id
func (s *FurnitureStack) Top() (int, bool) {
	if s.n == 0 {
		return 0, false
	}
	return s.ids[s.n-1], true
}

// Bottom returns the id resting on the floor
func (s *FurnitureStack) Bottom() (int, bool) {
	if s.n == 0 {
		return 0, false
	}
	return s.ids[0], true
}

// Above returns the id directly on top of id
func (s *FurnitureStack) Above(id int) (int, bool) {
	i := s.index(id)
	if i < 0 || i == s.n-1 {
		return 0, false
	}
	return s.ids[i+1], true
}

// Below returns the id directly under id
func (s *FurnitureStack) Below(id int) (int, bool) {
	i := s.index(id)
	if i <= 0 {
		return 0, false
	}
	return s.ids[i-1], true
}

// Contains reports whether id is on the stack
func (s *FurnitureStack) Contains(id int) bool {
	return s.index(id) >= 0
}

// Count returns the number of stacked items
func (s *FurnitureStack) Count() int {
	return s.n
}

// Full reports whether another Push would fail
func (s *FurnitureStack) Full() bool {
	return s.n == StackCapacity
}

// IDs returns the stacked ids bottom first
func (s *FurnitureStack) IDs() []int {
	out := make([]int, s.n)
	copy(out, s.ids[:s.n])
	return out
}

// TopExcluding returns the highest id on the stack other than skip
func (s *FurnitureStack) TopExcluding(skip int) (int, bool) {
	for i := s.n - 1; i >= 0; i-- {
		if s.ids[i] != skip {
			return s.ids[i], true
		}
	}
	return 0, false
}

func (s *FurnitureStack) index(id int) int {
	for i := 0; i < s.n; i++ {
		if s.ids[i] == id {
			return i
		}
	}
	return -1
}
