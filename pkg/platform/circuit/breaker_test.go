package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

// BreakerSuite drives a breaker guarding an audit sink with a manual clock.
type BreakerSuite struct {
	suite.Suite
	now     time.Time
	breaker *Breaker
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.breaker = New("audit-sink",
		WithFailureThreshold(3),
		WithSuccessThreshold(2),
		WithCooldown(10*time.Second),
	)
	s.breaker.now = func() time.Time { return s.now }
}

func (s *BreakerSuite) sinkDown(times int) (opened bool) {
	for range times {
		_, change := s.breaker.RecordFailure()
		opened = opened || change.Opened
	}
	return opened
}

func (s *BreakerSuite) TestStartsClosedWithDefaults() {
	b := New("kafka")
	s.Equal("kafka", b.Name())
	s.Equal(StateClosed, b.State())
	s.Equal("closed", b.State().String())
	s.Equal(5, b.failureThreshold)
	s.Equal(1, b.successThreshold)
	s.Equal(30*time.Second, b.cooldown)
	s.True(b.Allow())
}

func (s *BreakerSuite) TestNonPositiveOptionsKeepDefaults() {
	b := New("kafka", WithFailureThreshold(0), WithSuccessThreshold(-1), WithCooldown(0))
	s.Equal(5, b.failureThreshold)
	s.Equal(1, b.successThreshold)
	s.Equal(30*time.Second, b.cooldown)
}

func (s *BreakerSuite) TestOpensOnThirdConsecutiveFailure() {
	s.False(s.sinkDown(2))
	s.False(s.breaker.IsOpen())

	fallback, change := s.breaker.RecordFailure()
	s.True(fallback)
	s.True(change.Opened)
	s.Equal("open", s.breaker.State().String())

	fallback, change = s.breaker.RecordFailure()
	s.True(fallback, "further failures stay on fallback")
	s.False(change.Opened, "open is reported once")
}

func (s *BreakerSuite) TestSuccessBetweenFailuresRestartsCount() {
	s.sinkDown(2)
	s.breaker.RecordSuccess()
	s.False(s.sinkDown(2))
	s.False(s.breaker.IsOpen())
}

func (s *BreakerSuite) TestOneProbePerCooldown() {
	s.sinkDown(3)
	s.False(s.breaker.Allow())

	s.now = s.now.Add(9 * time.Second)
	s.False(s.breaker.Allow())

	s.now = s.now.Add(time.Second)
	s.True(s.breaker.Allow())
	s.False(s.breaker.Allow(), "second probe waits for the next cooldown")

	s.now = s.now.Add(10 * time.Second)
	s.True(s.breaker.Allow())
}

func (s *BreakerSuite) TestClosesAfterTwoSuccessfulProbes() {
	s.sinkDown(3)

	primary, change := s.breaker.RecordSuccess()
	s.False(primary)
	s.False(change.Closed)
	s.True(s.breaker.IsOpen())

	primary, change = s.breaker.RecordSuccess()
	s.True(primary)
	s.True(change.Closed)
	s.True(s.breaker.Allow())
}

func (s *BreakerSuite) TestFailedProbeResetsRecovery() {
	s.sinkDown(3)
	s.breaker.RecordSuccess()
	s.breaker.RecordFailure()

	primary, _ := s.breaker.RecordSuccess()
	s.False(primary, "recovery starts over after a failed probe")
	s.True(s.breaker.IsOpen())
}

func (s *BreakerSuite) TestReset() {
	s.sinkDown(3)
	s.breaker.Reset()
	s.Equal(StateClosed, s.breaker.State())
	s.False(s.sinkDown(2))
}

func (s *BreakerSuite) TestConcurrentFailuresOpenExactlyOnce() {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		opened int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := s.breaker.RecordFailure(); change.Opened {
				mu.Lock()
				opened++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, opened)
	s.True(s.breaker.IsOpen())
}
