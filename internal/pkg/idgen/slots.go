package idgen

// SlotAllocator hands out the lowest free positive integer and takes
// released ones back. Room unit ids are allocated this way so a returning
// client sees small, dense ids. Not safe for concurrent use; each room owns
// its own allocator.
type SlotAllocator struct {
	used []bool
}

// NewSlotAllocator returns an allocator with every id free
func NewSlotAllocator() *SlotAllocator {
	return &SlotAllocator{}
}

// Acquire returns the lowest id >= 1 not currently in use
func (a *SlotAllocator) Acquire() int {
	for i, taken := range a.used {
		if !taken {
			a.used[i] = true
			return i + 1
		}
	}
	a.used = append(a.used, true)
	return len(a.used)
}

// Release frees id. Releasing an id that is not held is a no-op.
func (a *SlotAllocator) Release(id int) {
	if id < 1 || id > len(a.used) {
		return
	}
	a.used[id-1] = false
}

// InUse reports whether id is currently held
func (a *SlotAllocator) InUse(id int) bool {
	return id >= 1 && id <= len(a.used) && a.used[id-1]
}
