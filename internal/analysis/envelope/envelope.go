// Package envelope builds the onset strength envelope: a per-frame measure of how much new
// spectral energy appears, high at note attacks and near zero during sustains and decays.
package envelope

import (
	"math"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tactus/internal/types"
)

const (
	FFTSize   = 2048
	HopLength = 512
	MelBands  = 128

	lag   = 1
	topDb = 80.0
	amin  = 1e-10
)

// Build computes the spectral flux envelope of a signal on a mel-scaled, log-power spectrogram.
//
// Frames are centered (the signal is zero-padded by FFTSize/2 on both sides), so frame t covers
// sample t*HopLength. The flux is left-padded by lag + FFTSize/(2*HopLength) frames and trimmed
// to the spectrogram length, which keeps envelope peaks aligned with attack times.
func Build(sig *types.Signal) *types.Envelope {
	env := &types.Envelope{
		HopLength:  HopLength,
		SampleRate: sig.SampleRate,
	}

	numFrames := 1 + len(sig.Samples)/HopLength
	if len(sig.Samples) == 0 || sig.SampleRate <= 0 {
		env.Values = make([]float64, 0)

		return env
	}

	spec := melSpectrogramDb(sig, numFrames)

	flux := make([]float64, numFrames)
	pad := lag + FFTSize/(2*HopLength)

	for t := lag; t < numFrames; t++ {
		pos := t - lag + pad
		if pos >= numFrames {
			break
		}

		var sum float64

		for b := range MelBands {
			if d := spec[t][b] - spec[t-lag][b]; d > 0 {
				sum += d
			}
		}

		flux[pos] = sum / MelBands
	}

	env.Values = flux

	return env
}

// melSpectrogramDb returns the power mel spectrogram in dB, clipped to topDb below its maximum.
func melSpectrogramDb(sig *types.Signal, numFrames int) [][]float64 {
	bank := newMelBank(sig.SampleRate)
	hann := window.Hann(FFTSize)
	fft := fourier.NewFFT(FFTSize)

	frame := make([]float64, FFTSize)
	coeffs := make([]complex128, FFTSize/2+1)
	power := make([]float64, FFTSize/2+1)

	spec := make([][]float64, numFrames)
	peak := math.Inf(-1)
	half := FFTSize / 2

	for t := range numFrames {
		start := t*HopLength - half

		for i := range FFTSize {
			idx := start + i
			if idx < 0 || idx >= len(sig.Samples) {
				frame[i] = 0
			} else {
				frame[i] = sig.Samples[idx] * hann[i]
			}
		}

		fft.Coefficients(coeffs, frame)

		for k, c := range coeffs {
			power[k] = real(c)*real(c) + imag(c)*imag(c)
		}

		row := bank.apply(power)
		for b, v := range row {
			row[b] = 10 * math.Log10(math.Max(amin, v))
		}

		peak = math.Max(peak, floats.Max(row))
		spec[t] = row
	}

	floor := peak - topDb
	for _, row := range spec {
		for b, v := range row {
			if v < floor {
				row[b] = floor
			}
		}
	}

	return spec
}

// melFilter is one triangular filter stored as a dense run of weights over FFT bins.
type melFilter struct {
	start   int
	weights []float64
}

type melBank []melFilter

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// newMelBank builds area-normalized triangular filters spanning 0 Hz to Nyquist.
func newMelBank(sampleRate int) melBank {
	nyquist := float64(sampleRate) / 2
	binHz := float64(sampleRate) / FFTSize
	numBins := FFTSize/2 + 1

	edges := make([]float64, MelBands+2)
	maxMel := hzToMel(nyquist)

	for i := range edges {
		edges[i] = melToHz(maxMel * float64(i) / float64(MelBands+1))
	}

	bank := make(melBank, MelBands)

	for m := range MelBands {
		lower, center, upper := edges[m], edges[m+1], edges[m+2]
		norm := 2.0 / (upper - lower)

		first := int(math.Ceil(lower / binHz))
		last := min(int(math.Floor(upper/binHz)), numBins-1)

		filter := melFilter{start: first}

		for k := first; k <= last; k++ {
			f := float64(k) * binHz
			w := math.Min((f-lower)/(center-lower), (upper-f)/(upper-center))
			filter.weights = append(filter.weights, math.Max(0, w)*norm)
		}

		bank[m] = filter
	}

	return bank
}

func (b melBank) apply(power []float64) []float64 {
	out := make([]float64, len(b))

	for m, filter := range b {
		end := filter.start + len(filter.weights)
		if filter.start >= len(power) || end > len(power) {
			continue
		}

		out[m] = floats.Dot(filter.weights, power[filter.start:end])
	}

	return out
}
