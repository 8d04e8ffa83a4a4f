// Package progress carries transfer progress out of the engines and renders
// it for the terminal. The engines publish Events through a Func; rendering
// and broadcasting are for the callers to wire up.
package progress

import (
	"fmt"
	"time"
)

// Event is one progress observation, emitted roughly once per second per file
// and once at completion.
type Event struct {
	File        string
	Transferred uint64
	Total       uint64
	Speed       float64 // bytes per second, rolling estimate
	ChunkSize   int
	Elapsed     time.Duration
	Done        bool
}

// Func consumes progress events. Implementations must be fast; they run on
// the transfer's own goroutine between chunks.
type Func func(Event)

// Percent returns completion in [0,100]. Unknown totals report 0.
func (e Event) Percent() float64 {
	if e.Total == 0 {
		return 0
	}
	return float64(e.Transferred) / float64(e.Total) * 100
}

// ETA estimates the remaining transfer time from the current speed.
func (e Event) ETA() time.Duration {
	if e.Speed <= 0 || e.Transferred >= e.Total {
		return 0
	}
	secs := float64(e.Total-e.Transferred) / e.Speed
	return time.Duration(secs * float64(time.Second))
}

// FormatBytes renders a byte count with binary units, e.g. "2.50 MB".
func FormatBytes(n uint64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	size := float64(n)
	idx := 0
	for size >= 1024 && idx < len(units)-1 {
		size /= 1024
		idx++
	}
	if idx == 0 {
		return fmt.Sprintf("%.0f %s", size, units[idx])
	}
	return fmt.Sprintf("%.2f %s", size, units[idx])
}

// FormatSpeed renders a transfer speed, e.g. "12.00 MB/s".
func FormatSpeed(bytesPerSec float64) string {
	return FormatBytes(uint64(bytesPerSec)) + "/s"
}

// FormatChunkSize renders a chunk size the short way ("64 KB", "1.5 MB").
func FormatChunkSize(bytes int) string {
	const mb = 1024 * 1024
	if bytes < mb {
		return fmt.Sprintf("%.0f KB", float64(bytes)/1024)
	}
	return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
}

// FormatDuration renders elapsed/remaining time as 3s, 2m 5s or 1h 3m 10s.
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	switch {
	case secs < 60:
		return fmt.Sprintf("%ds", secs)
	case secs < 3600:
		return fmt.Sprintf("%dm %ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%dh %dm %ds", secs/3600, (secs%3600)/60, secs%60)
	}
}
