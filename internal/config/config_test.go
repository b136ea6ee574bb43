package config

import (
	"testing"
	"time"
)

func TestEnvHelpersDefaults(t *testing.T) {
	if got := envInt("DB_MAX_OPEN_CONNS", 25); got != 25 {
		t.Fatalf("envInt default = %d, want 25", got)
	}
	if got := envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute); got != 30*time.Minute {
		t.Fatalf("envDur default = %v, want 30m", got)
	}
	if got := envBool("EVENTS_ENABLED", true); !got {
		t.Fatal("envBool default = false, want true")
	}
}

func TestEnvHelpersOverrides(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "50")
	if got := envInt("DB_MAX_OPEN_CONNS", 25); got != 50 {
		t.Fatalf("envInt override = %d, want 50", got)
	}

	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")
	if got := envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute); got != 5*time.Minute {
		t.Fatalf("envDur override = %v, want 5m", got)
	}

	t.Setenv("EVENTS_ENABLED", "off")
	if got := envBool("EVENTS_ENABLED", true); got {
		t.Fatal("envBool override = true, want false")
	}

	// Garbage falls back to the default instead of failing startup.
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	if got := envInt("DB_MAX_OPEN_CONNS", 25); got != 25 {
		t.Fatalf("envInt garbage = %d, want default 25", got)
	}
}
