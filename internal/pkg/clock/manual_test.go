package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/room-server/internal/pkg/clock"
)

type ManualTestSuite struct {
	suite.Suite
	clock *clock.Manual
	start time.Time
}

func TestManualSuite(t *testing.T) {
	suite.Run(t, new(ManualTestSuite))
}

func (s *ManualTestSuite) SetupTest() {
	s.start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.clock = clock.NewManual(s.start)
}

func (s *ManualTestSuite) TestAfterFuncFiresInOrder() {
	var fired []string
	s.clock.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })
	s.clock.AfterFunc(time.Second, func() { fired = append(fired, "first") })

	s.clock.Advance(500 * time.Millisecond)
	s.Empty(fired)
	s.Equal(2, s.clock.Pending())

	s.clock.Advance(2 * time.Second)
	s.Equal([]string{"first", "second"}, fired)
	s.Equal(s.start.Add(2500*time.Millisecond), s.clock.Now())
}

func (s *ManualTestSuite) TestTimerScheduledFromCallbackFires() {
	var fired int
	s.clock.AfterFunc(time.Second, func() {
		fired++
		s.clock.AfterFunc(time.Second, func() { fired++ })
	})

	s.clock.Advance(3 * time.Second)
	s.Equal(2, fired)
}

func (s *ManualTestSuite) TestStop() {
	t := s.clock.AfterFunc(time.Second, func() { s.Fail("stopped timer fired") })
	s.True(t.Stop())
	s.False(t.Stop())

	s.clock.Advance(2 * time.Second)
	s.Equal(0, s.clock.Pending())
}

func (s *ManualTestSuite) TestTicker() {
	ticker := s.clock.NewTicker(time.Second)

	s.clock.Advance(1500 * time.Millisecond)
	select {
	case <-ticker.C():
	default:
		s.Fail("expected a tick")
	}

	ticker.Stop()
	s.clock.Advance(5 * time.Second)
	select {
	case <-ticker.C():
		s.Fail("stopped ticker ticked")
	default:
	}
}
