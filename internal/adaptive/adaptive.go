// Package adaptive picks the byte count for the next read/write cycle of a
// transfer, trading system-call overhead against responsiveness to changing
// network speed. Adaptation is aggressive: an 8 KiB - 2 MiB range re-evaluated
// every couple of seconds from a short rolling window of per-chunk speeds.
package adaptive

import "time"

const (
	// MinChunkSize is the smallest chunk the controller will ever recommend.
	MinChunkSize = 8 * 1024
	// MaxChunkSize bounds buffer cost on fast links.
	MaxChunkSize = 2 * 1024 * 1024
	// InitialChunkSize is used until enough samples have accumulated.
	InitialChunkSize = 64 * 1024
	// AdjustmentInterval gates how often the chunk size may change.
	AdjustmentInterval = 2 * time.Second

	speedSamples = 5
)

// State tracks adaptive chunk sizing for a single transfer. It is created at
// transfer start, updated after every chunk and discarded when the transfer
// ends. Not safe for concurrent use; a transfer is single-threaded.
type State struct {
	chunkSize int

	samples     [speedSamples]float64
	sampleCount int
	sampleIndex int

	intervalBytes uint64
	transferred   uint64
	totalBytes    uint64

	lastAdjustment time.Time
	startTime      time.Time

	now func() time.Time // overridable in tests
}

// New returns controller state for a transfer of totalBytes (0 if unknown).
func New(totalBytes uint64) *State {
	s := &State{now: time.Now}
	s.totalBytes = totalBytes
	s.chunkSize = InitialChunkSize
	s.lastAdjustment = s.now()
	s.startTime = s.lastAdjustment
	return s
}

// ChunkSize returns the byte count to use for the next read/write cycle,
// always within [MinChunkSize, MaxChunkSize].
func (s *State) ChunkSize() int {
	if s.chunkSize < MinChunkSize {
		s.chunkSize = MinChunkSize
	} else if s.chunkSize > MaxChunkSize {
		s.chunkSize = MaxChunkSize
	}
	return s.chunkSize
}

// Update records the speed of one transferred chunk and, once
// AdjustmentInterval has elapsed since the last change, re-derives the chunk
// size from the mean of the rolling window. elapsed <= 0 samples are dropped;
// they carry no speed information and would divide by zero.
func (s *State) Update(bytesMoved int, elapsed float64) {
	if elapsed <= 0 {
		return
	}

	s.samples[s.sampleIndex] = float64(bytesMoved) / elapsed
	s.sampleIndex = (s.sampleIndex + 1) % speedSamples
	if s.sampleCount < speedSamples {
		s.sampleCount++
	}

	s.intervalBytes += uint64(bytesMoved)
	s.transferred += uint64(bytesMoved)

	if s.now().Sub(s.lastAdjustment) < AdjustmentInterval {
		return
	}

	s.chunkSize = stepChunkSize(s.Speed())
	s.lastAdjustment = s.now()
	s.intervalBytes = 0
}

// Speed returns the mean of the recorded samples in bytes per second, 0 when
// no samples exist yet. Observational only; the wire loop never depends on it.
func (s *State) Speed() float64 {
	if s.sampleCount == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < s.sampleCount; i++ {
		sum += s.samples[i]
	}
	return sum / float64(s.sampleCount)
}

// Reset clears samples and counters for the next file of a multi-file
// transfer. The chunk size is kept: it is the best known estimate for the
// network path and should not be re-learned from scratch per file.
func (s *State) Reset() {
	saved := s.chunkSize
	*s = State{now: s.now}
	s.chunkSize = saved
	s.lastAdjustment = s.now()
	s.startTime = s.lastAdjustment
}

// Transferred returns the bytes moved since New or Reset.
func (s *State) Transferred() uint64 {
	return s.transferred
}

// Total returns the declared transfer size, 0 if unknown.
func (s *State) Total() uint64 {
	return s.totalBytes
}

// StartTime returns when this transfer (or the current file) began.
func (s *State) StartTime() time.Time {
	return s.startTime
}

// stepChunkSize maps a mean speed to a chunk size. The brackets are a
// discrete step function with strict less-than comparisons, so a tie lands in
// the lower bracket.
func stepChunkSize(avgSpeed float64) int {
	const mb = 1024.0 * 1024.0
	switch {
	case avgSpeed < 1*mb:
		return MinChunkSize
	case avgSpeed < 10*mb:
		return 64 * 1024
	case avgSpeed < 50*mb:
		return 256 * 1024
	case avgSpeed < 100*mb:
		return 1024 * 1024
	default:
		return MaxChunkSize
	}
}
