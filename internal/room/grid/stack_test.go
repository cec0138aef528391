package grid_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/room-server/internal/room/grid"
)

type StackTestSuite struct {
	suite.Suite
}

func TestStackSuite(t *testing.T) {
	suite.Run(t, new(StackTestSuite))
}

func (s *StackTestSuite) TestEmptyStack() {
	var st grid.FurnitureStack

	_, ok := st.Top()
	s.False(ok)
	_, ok = st.Bottom()
	s.False(ok)
	s.Equal(0, st.Count())
	s.Empty(st.IDs())
	s.False(st.Remove(1))
}

func (s *StackTestSuite) TestOrderQueries() {
	var st grid.FurnitureStack
	for _, id := range []int{10, 20, 30} {
		s.Require().True(st.Push(id))
	}

	top, _ := st.Top()
	bottom, _ := st.Bottom()
	s.Equal(30, top)
	s.Equal(10, bottom)

	above, ok := st.Above(10)
	s.True(ok)
	s.Equal(20, above)
	_, ok = st.Above(30)
	s.False(ok)

	below, ok := st.Below(30)
	s.True(ok)
	s.Equal(20, below)
	_, ok = st.Below(10)
	s.False(ok)

	s.True(st.Contains(20))
	s.False(st.Contains(40))

	next, ok := st.TopExcluding(30)
	s.True(ok)
	s.Equal(20, next)
}

func (s *StackTestSuite) TestRemoveCompacts() {
	var st grid.FurnitureStack
	for _, id := range []int{1, 2, 3, 4} {
		st.Push(id)
	}

	s.True(st.Remove(2))
	s.Equal([]int{1, 3, 4}, st.IDs())
	s.True(st.Remove(4))
	s.Equal([]int{1, 3}, st.IDs())
	s.True(st.Remove(1))
	s.Equal([]int{3}, st.IDs())

	bottom, _ := st.Bottom()
	top, _ := st.Top()
	s.Equal(3, bottom)
	s.Equal(3, top)
}

func (s *StackTestSuite) TestCapacity() {
	var st grid.FurnitureStack
	for i := 1; i <= grid.StackCapacity; i++ {
		s.Require().True(st.Push(i))
	}

	s.True(st.Full())
	s.False(st.Push(99))
	s.Equal(grid.StackCapacity, st.Count())

	st.Remove(5)
	s.False(st.Full())
	s.True(st.Push(99))
	top, _ := st.Top()
	s.Equal(99, top)
}

// Random push/remove sequences are checked against a plain slice model.
func (s *StackTestSuite) TestMatchesSliceModel() {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		var st grid.FurnitureStack
		var model []int
		nextID := 1

		for step := 0; step < 200; step++ {
			if len(model) > 0 && rng.Intn(3) == 0 {
				victim := model[rng.Intn(len(model))]
				s.Require().True(st.Remove(victim))
				for i, id := range model {
					if id == victim {
						model = append(model[:i], model[i+1:]...)
						break
					}
				}
			} else {
				pushed := st.Push(nextID)
				s.Require().Equal(len(model) < grid.StackCapacity, pushed)
				if pushed {
					model = append(model, nextID)
				}
				nextID++
			}

			s.Require().Equal(len(model), st.Count())
			if len(model) == 0 {
				s.Require().Empty(st.IDs())
				continue
			}
			s.Require().Equal(model, st.IDs())

			top, _ := st.Top()
			bottom, _ := st.Bottom()
			s.Require().Equal(model[len(model)-1], top)
			s.Require().Equal(model[0], bottom)
		}
	}
}
