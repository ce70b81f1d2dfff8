package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the DFT of data.
func PowerSpectrum(data []float64) []float64 {
	spec := fft.FFTReal(data)
	ps := make([]float64, len(spec)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}

	return ps
}

// DominantFrequency resamples the series onto n uniform points, removes the
// mean and returns the frequency in Hz of the strongest non-DC bin.
func DominantFrequency(times, ys []float64, n int) (float64, error) {
	if n < 4 || len(times) < 2 {
		return 0, ErrEmptySeries
	}

	ts, u := Resample(times, ys, n)
	if ts == nil {
		return 0, ErrEmptySeries
	}

	mean := 0.0
	for _, v := range u {
		mean += v
	}
	mean /= float64(len(u))
	for i := range u {
		u[i] -= mean
	}

	ps := PowerSpectrum(u)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}

	dt := ts[1] - ts[0]
	if dt <= 0 {
		return 0, ErrEmptySeries
	}
	return float64(best) / (float64(n) * dt), nil
}
