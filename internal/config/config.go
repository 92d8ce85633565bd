// Package config loads engine settings from the environment, with a .env
// file honored in development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hatifai/hatif/internal/audiofx"
)

// Config holds everything tunable without a rebuild
type Config struct {
	Port string

	PrimaryLanguage string
	GatewayVoice    string

	GatherTimeout        time.Duration
	RecordMaxLength      time.Duration
	RecordSilenceTimeout time.Duration

	// RecordingSampleRate and RecordingEncoding describe caller audio as
	// delivered by the gateway
	RecordingSampleRate int
	RecordingEncoding   string

	CacheCapacity int
	CacheTTL      time.Duration

	ArtifactGrace time.Duration

	SessionIdleBound time.Duration
	ReapInterval     time.Duration

	MinSTTConfidence float64

	STTTimeout   time.Duration
	ReplyTimeout time.Duration
	TTSTimeout   time.Duration

	ProcessInbound  bool
	ProcessOutbound bool
	UseRecording    bool
	AudioFX         audiofx.Config

	MishkalBaseURL string

	JWTSecret   string
	JWTTTL      time.Duration
	OperatorKey string
}

// Load reads configuration from the environment. Missing variables fall
// back to defaults suitable for local development.
func Load() Config {
	godotenv.Load()

	return Config{
		Port: getEnv("PORT", "8080"),

		PrimaryLanguage: getEnv("PRIMARY_LANGUAGE", "ar"),
		GatewayVoice:    getEnv("GATEWAY_VOICE", "alice"),

		GatherTimeout:        getDuration("GATHER_TIMEOUT", 5*time.Second),
		RecordMaxLength:      getDuration("RECORD_MAX_LENGTH", 30*time.Second),
		RecordSilenceTimeout: getDuration("RECORD_SILENCE_TIMEOUT", 3*time.Second),

		RecordingSampleRate: getInt("RECORDING_SAMPLE_RATE", 8000),
		RecordingEncoding:   getEnv("RECORDING_ENCODING", "LINEAR16"),

		CacheCapacity: getInt("REPLY_CACHE_CAPACITY", 100),
		CacheTTL:      getDuration("REPLY_CACHE_TTL", 5*time.Minute),

		ArtifactGrace: getDuration("ARTIFACT_GRACE", 2*time.Minute),

		SessionIdleBound: getDuration("SESSION_IDLE_BOUND", 5*time.Minute),
		ReapInterval:     getDuration("SESSION_REAP_INTERVAL", time.Minute),

		MinSTTConfidence: getFloat("MIN_STT_CONFIDENCE", 0.6),

		STTTimeout:   getDuration("STT_TIMEOUT", 8*time.Second),
		ReplyTimeout: getDuration("REPLY_TIMEOUT", 10*time.Second),
		TTSTimeout:   getDuration("TTS_TIMEOUT", 10*time.Second),

		ProcessInbound:  getBool("AUDIO_PROCESS_INBOUND", false),
		ProcessOutbound: getBool("AUDIO_PROCESS_OUTBOUND", false),
		UseRecording:    getBool("USE_RECORDING_FLOW", false),
		AudioFX:         parseAudioFX(getEnv("AUDIO_FX", "")),

		MishkalBaseURL: getEnv("MISHKAL_BASE_URL", ""),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTL:      getDuration("JWT_TTL", 24*time.Hour),
		OperatorKey: getEnv("OPERATOR_KEY", ""),
	}
}

// parseAudioFX enables transforms named in a comma-separated list, e.g.
// "noise_gate,normalize,volume_boost".
func parseAudioFX(list string) audiofx.Config {
	var cfg audiofx.Config
	for _, name := range strings.Split(list, ",") {
		switch strings.TrimSpace(name) {
		case "noise_gate":
			cfg.NoiseGate = true
		case "echo_suppress":
			cfg.EchoSuppress = true
		case "normalize":
			cfg.Normalize = true
		case "clarity":
			cfg.Clarity = true
		case "volume_boost":
			cfg.VolumeBoost = true
		case "warmth":
			cfg.Warmth = true
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
