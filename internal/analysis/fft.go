package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitudes of the non-negative frequency bins of
// data after removing its mean.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency is the frequency in Hz of the strongest non-DC bin.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if dt <= 0 {
		return 0, fmt.Errorf("dt must be positive, got %f", dt)
	}
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, fmt.Errorf("series too short: %d samples", len(data))
	}

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if ps[best] == 0 {
		return 0, fmt.Errorf("series has no oscillation")
	}
	return float64(best) / (float64(len(data)) * dt), nil
}

func DominantPeriod(data []float64, dt float64) (float64, error) {
	f, err := DominantFrequency(data, dt)
	if err != nil {
		return 0, err
	}
	return 1 / f, nil
}
