// Package audiofx cleans up captured audio before speech recognition.
// Transforms operate on decoded little-endian 16-bit PCM only; compressed
// payloads must be decoded upstream before entering the pipeline.
package audiofx

import (
	"encoding/binary"
	"errors"

	"go.uber.org/zap"
)

// Config toggles each transform of the fixed processing sequence
type Config struct {
	NoiseGate    bool
	EchoSuppress bool
	Normalize    bool
	Clarity      bool
	VolumeBoost  bool
	Warmth       bool
}

const (
	// noiseGateThreshold attenuates samples below this amplitude
	noiseGateThreshold = 500
	noiseGateFactor    = 0.35

	// echoDelaySamples is ~20ms at 8kHz telephony rate
	echoDelaySamples = 160
	echoAttenuation  = 0.3

	// normalizeCeiling is the peak target after normalization
	normalizeCeiling = 29000

	clarityStrength = 0.25
	boostGain       = 1.4

	// outputInflationLimit rejects processed output larger than 1.5x input
	outputInflationLimit = 1.5
)

var errNotPCM = errors.New("buffer is not 16-bit aligned")

// Pipeline applies a fixed ordered sequence of sample transforms
type Pipeline struct {
	config Config
	logger *zap.Logger
}

// NewPipeline creates a pipeline with the given transform toggles
func NewPipeline(config Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{config: config, logger: logger}
}

type step struct {
	name    string
	enabled bool
	apply   func([]int16) ([]int16, error)
}

// Process runs every enabled transform in sequence over a PCM16 buffer.
// A failing step keeps its own input and the sequence continues; with all
// transforms disabled the input comes back unchanged.
func (p *Pipeline) Process(buf []byte) []byte {
	if !p.anyEnabled() {
		return buf
	}

	samples, err := decodePCM16(buf)
	if err != nil {
		p.logger.Warn("Skipping audio processing", zap.Error(err))
		return buf
	}

	steps := []step{
		{"noise_gate", p.config.NoiseGate, noiseGate},
		{"echo_suppress", p.config.EchoSuppress, echoSuppress},
		{"normalize", p.config.Normalize, normalize},
		{"clarity", p.config.Clarity, clarity},
		{"volume_boost", p.config.VolumeBoost, volumeBoost},
		{"warmth", p.config.Warmth, warmth},
	}

	for _, st := range steps {
		if !st.enabled {
			continue
		}
		out, err := st.apply(samples)
		if err != nil {
			p.logger.Warn("Audio transform failed, keeping step input",
				zap.String("transform", st.name),
				zap.Error(err))
			continue
		}
		samples = out
	}

	return encodePCM16(samples)
}

// ProcessOutput optionally applies the pipeline to synthesized audio. The
// processed buffer is rejected when it inflates past the size guard.
func (p *Pipeline) ProcessOutput(buf []byte) []byte {
	processed := p.Process(buf)
	if float64(len(processed)) > outputInflationLimit*float64(len(buf)) {
		p.logger.Warn("Processed output exceeds inflation guard, keeping original",
			zap.Int("original", len(buf)),
			zap.Int("processed", len(processed)))
		return buf
	}
	return processed
}

func (p *Pipeline) anyEnabled() bool {
	c := p.config
	return c.NoiseGate || c.EchoSuppress || c.Normalize || c.Clarity || c.VolumeBoost || c.Warmth
}

// noiseGate attenuates quiet samples instead of zeroing them
func noiseGate(in []int16) ([]int16, error) {
	out := make([]int16, len(in))
	for i, s := range in {
		if abs16(s) < noiseGateThreshold {
			out[i] = int16(float64(s) * noiseGateFactor)
		} else {
			out[i] = s
		}
	}
	return out, nil
}

// echoSuppress subtracts a delayed attenuated copy of the signal
func echoSuppress(in []int16) ([]int16, error) {
	out := make([]int16, len(in))
	for i, s := range in {
		v := float64(s)
		if i >= echoDelaySamples {
			v -= echoAttenuation * float64(in[i-echoDelaySamples])
		}
		out[i] = clip16(v)
	}
	return out, nil
}

// normalize scales the buffer so the loudest sample reaches the ceiling
func normalize(in []int16) ([]int16, error) {
	var peak int16
	for _, s := range in {
		if a := abs16(s); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		// Silence stays silence
		out := make([]int16, len(in))
		copy(out, in)
		return out, nil
	}

	scale := float64(normalizeCeiling) / float64(peak)
	out := make([]int16, len(in))
	for i, s := range in {
		out[i] = clip16(float64(s) * scale)
	}
	return out, nil
}

// clarity emphasizes local sample differences with a small FIR filter
func clarity(in []int16) ([]int16, error) {
	out := make([]int16, len(in))
	for i, s := range in {
		v := float64(s)
		if i > 0 && i < len(in)-1 {
			local := (float64(in[i-1]) + float64(in[i+1])) / 2
			v += clarityStrength * (float64(s) - local)
		}
		out[i] = clip16(v)
	}
	return out, nil
}

// volumeBoost applies fixed gain with hard clipping
func volumeBoost(in []int16) ([]int16, error) {
	out := make([]int16, len(in))
	for i, s := range in {
		out[i] = clip16(float64(s) * boostGain)
	}
	return out, nil
}

// warmth smooths the signal by weighted neighbor averaging
func warmth(in []int16) ([]int16, error) {
	out := make([]int16, len(in))
	for i, s := range in {
		if i == 0 || i == len(in)-1 {
			out[i] = s
			continue
		}
		v := (float64(in[i-1]) + 2*float64(s) + float64(in[i+1])) / 4
		out[i] = clip16(v)
	}
	return out, nil
}

func decodePCM16(buf []byte) ([]int16, error) {
	if len(buf)%2 != 0 {
		return nil, errNotPCM
	}
	samples := make([]int16, len(buf)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(buf[2*i:]))
	}
	return samples, nil
}

func encodePCM16(samples []int16) []byte {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return buf
}

func abs16(s int16) int16 {
	if s == -32768 {
		return 32767
	}
	if s < 0 {
		return -s
	}
	return s
}

func clip16(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
