package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.PrimaryLanguage != "ar" {
		t.Errorf("Expected default language ar, got %s", cfg.PrimaryLanguage)
	}
	if cfg.CacheCapacity != 100 {
		t.Errorf("Expected default cache capacity 100, got %d", cfg.CacheCapacity)
	}
	if cfg.MinSTTConfidence != 0.6 {
		t.Errorf("Expected default confidence floor 0.6, got %f", cfg.MinSTTConfidence)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GATHER_TIMEOUT", "7s")
	t.Setenv("REPLY_CACHE_CAPACITY", "2")
	t.Setenv("AUDIO_PROCESS_INBOUND", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.GatherTimeout != 7*time.Second {
		t.Errorf("Expected 7s gather timeout, got %s", cfg.GatherTimeout)
	}
	if cfg.CacheCapacity != 2 {
		t.Errorf("Expected cache capacity 2, got %d", cfg.CacheCapacity)
	}
	if !cfg.ProcessInbound {
		t.Error("Expected inbound processing enabled")
	}
}

func TestParseAudioFX(t *testing.T) {
	cfg := parseAudioFX("noise_gate, normalize,volume_boost")

	if !cfg.NoiseGate || !cfg.Normalize || !cfg.VolumeBoost {
		t.Errorf("Expected listed transforms enabled, got %+v", cfg)
	}
	if cfg.EchoSuppress || cfg.Clarity || cfg.Warmth {
		t.Errorf("Expected unlisted transforms disabled, got %+v", cfg)
	}
}

func TestParseAudioFXEmpty(t *testing.T) {
	cfg := parseAudioFX("")

	if cfg != (Config{}.AudioFX) {
		t.Errorf("Expected all transforms disabled, got %+v", cfg)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("REPLY_CACHE_CAPACITY", "not-a-number")
	t.Setenv("GATHER_TIMEOUT", "soon")

	cfg := Load()

	if cfg.CacheCapacity != 100 {
		t.Errorf("Expected fallback capacity 100, got %d", cfg.CacheCapacity)
	}
	if cfg.GatherTimeout != 5*time.Second {
		t.Errorf("Expected fallback 5s timeout, got %s", cfg.GatherTimeout)
	}
}
