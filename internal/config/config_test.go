package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	for _, key := range []string{
		"NETTF_PORT", "NETTF_RECEIVE_DIR", "NETTF_LOG_FILE",
		"NETTF_MONITOR_ADDR", "STUN_SERVER", "NETTF_DIAL_TIMEOUT", "SERVICE_NAME",
	} {
		t.Setenv(key, "")
	}
	cfg := New()

	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.ReceiveDir() != "." {
		t.Errorf("ReceiveDir() = %q, want .", cfg.ReceiveDir())
	}
	if cfg.DialTimeout() != 10*time.Second {
		t.Errorf("DialTimeout() = %v, want 10s", cfg.DialTimeout())
	}
	if cfg.ServiceName() != "nettf" {
		t.Errorf("ServiceName() = %q, want nettf", cfg.ServiceName())
	}
	if cfg.MonitorAddr() == "" {
		t.Error("MonitorAddr() empty, want a default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NETTF_PORT", "4242")
	t.Setenv("NETTF_RECEIVE_DIR", "/srv/inbox")
	t.Setenv("NETTF_DIAL_TIMEOUT", "3")
	cfg := New()

	if cfg.Port() != 4242 {
		t.Errorf("Port() = %d, want 4242", cfg.Port())
	}
	if cfg.ReceiveDir() != "/srv/inbox" {
		t.Errorf("ReceiveDir() = %q", cfg.ReceiveDir())
	}
	if cfg.DialTimeout() != 3*time.Second {
		t.Errorf("DialTimeout() = %v, want 3s", cfg.DialTimeout())
	}
}

func TestInvalidPortFallsBack(t *testing.T) {
	for _, bad := range []string{"0", "-5", "70000", "not-a-port"} {
		t.Setenv("NETTF_PORT", bad)
		if got := New().Port(); got != DefaultPort {
			t.Errorf("NETTF_PORT=%s: Port() = %d, want %d", bad, got, DefaultPort)
		}
	}
}
