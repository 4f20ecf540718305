package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}

	if got := GetString("identity"); got != "local" {
		t.Errorf("identity = %q, want local", got)
	}
	if got := GetString("server-url"); got != "http://localhost:3847" {
		t.Errorf("server-url = %q", got)
	}
	if got := GetDuration("flush-debounce"); got != time.Second {
		t.Errorf("flush-debounce = %v, want 1s", got)
	}
	if got := GetInt("undo-limit"); got != 50 {
		t.Errorf("undo-limit = %d, want 50", got)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TASKBED_FLUSH_DEBOUNCE", "250ms")
	t.Setenv("TASKBED_UNDO_LIMIT", "5")
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}

	if got := GetDuration("flush-debounce"); got != 250*time.Millisecond {
		t.Errorf("flush-debounce = %v, want 250ms", got)
	}
	if got := GetInt("undo-limit"); got != 5 {
		t.Errorf("undo-limit = %d, want 5", got)
	}
}

func TestRemoteConfigured(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}
	if RemoteConfigured() {
		t.Error("remote should not be configured by default")
	}

	t.Setenv("TASKBED_REMOTE_URL", "https://example.test")
	t.Setenv("TASKBED_REMOTE_ANON_KEY", "anon")
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}
	if !RemoteConfigured() {
		t.Error("remote should be configured with url and key set")
	}
}

func TestSetOverrides(t *testing.T) {
	if err := Initialize(); err != nil {
		t.Fatal(err)
	}
	Set("undo-limit", 7)
	if got := GetInt("undo-limit"); got != 7 {
		t.Errorf("undo-limit = %d, want 7", got)
	}
}
