package progress

import (
	"testing"
	"time"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		transferred, total uint64
		want               float64
	}{
		{0, 100, 0},
		{50, 100, 50},
		{100, 100, 100},
		{0, 0, 0}, // unknown total
	}
	for _, tt := range tests {
		e := Event{Transferred: tt.transferred, Total: tt.total}
		if got := e.Percent(); got != tt.want {
			t.Errorf("Percent(%d/%d) = %v, want %v", tt.transferred, tt.total, got, tt.want)
		}
	}
}

func TestETA(t *testing.T) {
	e := Event{Transferred: 500, Total: 1500, Speed: 100}
	if got := e.ETA(); got != 10*time.Second {
		t.Errorf("ETA = %v, want 10s", got)
	}

	e = Event{Transferred: 1500, Total: 1500, Speed: 100}
	if got := e.ETA(); got != 0 {
		t.Errorf("ETA at completion = %v, want 0", got)
	}

	e = Event{Transferred: 0, Total: 1500, Speed: 0}
	if got := e.ETA(); got != 0 {
		t.Errorf("ETA with zero speed = %v, want 0", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{2621440, "2.50 MB"},
		{1 << 30, "1.00 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatChunkSize(t *testing.T) {
	tests := []struct {
		bytes int
		want  string
	}{
		{8 * 1024, "8 KB"},
		{64 * 1024, "64 KB"},
		{1024 * 1024, "1.0 MB"},
		{2 * 1024 * 1024, "2.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatChunkSize(tt.bytes); got != tt.want {
			t.Errorf("FormatChunkSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3 * time.Second, "3s"},
		{125 * time.Second, "2m 5s"},
		{3790 * time.Second, "1h 3m 10s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMultiFansOut(t *testing.T) {
	var a, b int
	fn := Multi(func(Event) { a++ }, nil, func(Event) { b++ })
	fn(Event{})
	fn(Event{})
	if a != 2 || b != 2 {
		t.Errorf("handlers saw %d and %d events, want 2 and 2", a, b)
	}
}
