package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if !c.RespectRobots {
		t.Error("robots should be respected by default")
	}
	if c.MinDelay != time.Second {
		t.Errorf("MinDelay = %v", c.MinDelay)
	}
	if c.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d", c.RetryAttempts)
	}
	if c.HTTPPort != "8080" {
		t.Errorf("HTTPPort = %q", c.HTTPPort)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BOUTIK_ROOT_URL", "https://boutik.example/")
	t.Setenv("BOUTIK_MIN_DELAY", "2500ms")
	t.Setenv("BOUTIK_RETRY_ATTEMPTS", "5")
	t.Setenv("BOUTIK_RESPECT_ROBOTS", "false")
	t.Setenv("PORT", "9090")
	t.Setenv("BOUTIK_RATE_PER_SECOND", "not-a-number")

	c := DefaultConfig()
	c.LoadFromEnv()

	if c.SourceRootURL != "https://boutik.example/" {
		t.Errorf("SourceRootURL = %q", c.SourceRootURL)
	}
	if c.MinDelay != 2500*time.Millisecond {
		t.Errorf("MinDelay = %v", c.MinDelay)
	}
	if c.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d", c.RetryAttempts)
	}
	if c.RespectRobots {
		t.Error("RespectRobots should be off")
	}
	if c.HTTPPort != "9090" {
		t.Errorf("HTTPPort = %q", c.HTTPPort)
	}
	// Unparseable values keep the default.
	if c.RatePerSecond != 2.0 {
		t.Errorf("RatePerSecond = %v", c.RatePerSecond)
	}
}
