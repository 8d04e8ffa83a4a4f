package adaptive

import (
	"testing"
	"time"
)

// fixedClock lets tests advance time explicitly so interval gating is exact.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time {
	return c.t
}

func (c *fixedClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestState(total uint64) (*State, *fixedClock) {
	clock := &fixedClock{t: time.Unix(1700000000, 0)}
	s := &State{now: clock.now}
	s.totalBytes = total
	s.chunkSize = InitialChunkSize
	s.lastAdjustment = clock.t
	s.startTime = clock.t
	return s, clock
}

func TestChunkSizeStaysInBounds(t *testing.T) {
	s, clock := newTestState(0)

	speeds := []float64{100, 1e3, 1e6, 5e6, 2e7, 7e7, 1.5e8, 1e9, 0.5e6}
	for _, bps := range speeds {
		for i := 0; i < 10; i++ {
			s.Update(int(bps), 1.0)
			clock.advance(time.Second)
			got := s.ChunkSize()
			if got < MinChunkSize || got > MaxChunkSize {
				t.Fatalf("chunk size %d out of bounds after speed %.0f", got, bps)
			}
		}
	}
}

func TestSpeedBrackets(t *testing.T) {
	const mb = 1024 * 1024
	cases := []struct {
		name  string
		speed float64
		want  int
	}{
		{"half MB/s", 0.5 * mb, 8 * 1024},
		{"5 MB/s", 5 * mb, 64 * 1024},
		{"30 MB/s", 30 * mb, 256 * 1024},
		{"80 MB/s", 80 * mb, 1024 * 1024},
		{"150 MB/s", 150 * mb, 2 * mb},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, clock := newTestState(0)
			// Fill the window, then push past the adjustment interval.
			for i := 0; i < 5; i++ {
				s.Update(int(tc.speed), 1.0)
			}
			clock.advance(AdjustmentInterval)
			s.Update(int(tc.speed), 1.0)
			if got := s.ChunkSize(); got != tc.want {
				t.Errorf("mean %.0f B/s: chunk size = %d, want %d", tc.speed, got, tc.want)
			}
		})
	}
}

func TestBracketBoundariesFavorLower(t *testing.T) {
	const mb = 1024 * 1024
	// Exactly 10 MB/s is not < 10 MB/s, so it lands in the 256 KiB bracket.
	if got := stepChunkSize(10 * mb); got != 256*1024 {
		t.Errorf("10 MB/s boundary: got %d, want %d", got, 256*1024)
	}
	if got := stepChunkSize(100 * mb); got != MaxChunkSize {
		t.Errorf("100 MB/s boundary: got %d, want %d", got, MaxChunkSize)
	}
}

func TestUpdateIgnoresNonPositiveElapsed(t *testing.T) {
	s, _ := newTestState(0)
	s.Update(1<<20, 0)
	s.Update(1<<20, -1)
	if s.Speed() != 0 {
		t.Errorf("speed = %f after invalid samples, want 0", s.Speed())
	}
	if s.Transferred() != 0 {
		t.Errorf("transferred = %d after invalid samples, want 0", s.Transferred())
	}
}

func TestAdjustmentIsTimeGated(t *testing.T) {
	s, clock := newTestState(0)
	// Plenty of slow samples but not enough wall time: size must not change.
	for i := 0; i < 50; i++ {
		s.Update(1024, 1.0)
	}
	if got := s.ChunkSize(); got != InitialChunkSize {
		t.Fatalf("chunk size changed to %d before interval elapsed", got)
	}
	clock.advance(AdjustmentInterval)
	s.Update(1024, 1.0)
	if got := s.ChunkSize(); got != MinChunkSize {
		t.Fatalf("chunk size = %d after slow interval, want %d", got, MinChunkSize)
	}
}

func TestDeterministicSequence(t *testing.T) {
	updates := []struct {
		bytes   int
		elapsed float64
		advance time.Duration
	}{
		{64 * 1024, 0.01, time.Second},
		{64 * 1024, 0.01, time.Second},
		{64 * 1024, 0.001, time.Second}, // 64 MB/s sample
		{64 * 1024, 0.01, time.Second},
		{64 * 1024, 0.5, time.Second},
	}

	run := func() []int {
		s, clock := newTestState(1 << 30)
		var sizes []int
		for _, u := range updates {
			s.Update(u.bytes, u.elapsed)
			sizes = append(sizes, s.ChunkSize())
			clock.advance(u.advance)
		}
		return sizes
	}

	first := run()
	second := run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("sequence diverged at step %d: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestResetPreservesChunkSize(t *testing.T) {
	const mb = 1024 * 1024
	s, clock := newTestState(0)
	for i := 0; i < 5; i++ {
		s.Update(150*mb, 1.0)
	}
	clock.advance(AdjustmentInterval)
	s.Update(150*mb, 1.0)

	sizeBefore := s.ChunkSize()
	if sizeBefore != MaxChunkSize {
		t.Fatalf("setup failed: chunk size %d", sizeBefore)
	}

	s.Reset()
	if got := s.ChunkSize(); got != sizeBefore {
		t.Errorf("Reset changed chunk size: %d -> %d", sizeBefore, got)
	}
	if got := s.Speed(); got != 0 {
		t.Errorf("speed estimate %f after Reset, want 0", got)
	}
	if got := s.Transferred(); got != 0 {
		t.Errorf("transferred %d after Reset, want 0", got)
	}
}

func TestRollingWindowOverwritesOldest(t *testing.T) {
	const mb = 1024 * 1024
	s, _ := newTestState(0)
	// Five slow samples, then five fast ones: the slow ones must all be gone.
	for i := 0; i < 5; i++ {
		s.Update(1*mb/2, 1.0)
	}
	for i := 0; i < 5; i++ {
		s.Update(150*mb, 1.0)
	}
	if got := s.Speed(); got != 150*mb {
		t.Errorf("mean speed %f, want %d", got, 150*mb)
	}
}

func TestNewDefaults(t *testing.T) {
	s := New(4096)
	if got := s.ChunkSize(); got != InitialChunkSize {
		t.Errorf("initial chunk size %d, want %d", got, InitialChunkSize)
	}
	if got := s.Total(); got != 4096 {
		t.Errorf("total %d, want 4096", got)
	}
	if got := s.Speed(); got != 0 {
		t.Errorf("initial speed %f, want 0", got)
	}
}
