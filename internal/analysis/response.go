package analysis

import (
	"errors"
	"math"
)

var ErrEmptySeries = errors.New("analysis: empty or mismatched series")

// DefaultSettlingBand is the ±2 % band used for settling time.
const DefaultSettlingBand = 0.02

type StepResponse struct {
	Initial    float64
	FinalValue float64
	Peak       float64
	PeakTime   float64
	// Overshoot is the excursion past the final value, as a fraction of the
	// total change.
	Overshoot    float64
	SettlingTime float64
}

// Response measures a sampled trajectory against its own last sample.
func Response(times, ys []float64, band float64) (StepResponse, error) {
	if len(ys) == 0 || len(ys) != len(times) {
		return StepResponse{}, ErrEmptySeries
	}

	first, final := ys[0], ys[len(ys)-1]
	change := final - first
	dir := 1.0
	if change < 0 {
		dir = -1.0
	}

	res := StepResponse{Initial: first, FinalValue: final}
	best := math.Inf(-1)
	for i, y := range ys {
		if dir*y > best {
			best = dir * y
			res.Peak = y
			res.PeakTime = times[i]
		}
	}
	if change != 0 {
		res.Overshoot = math.Max(0, dir*(res.Peak-final)) / math.Abs(change)
	}

	scale := math.Abs(change)
	if scale == 0 {
		for _, y := range ys {
			scale = math.Max(scale, math.Abs(y-final))
		}
	}
	if scale == 0 {
		return res, nil
	}

	limit := band * scale
	res.SettlingTime = times[0]
	for i := len(ys) - 1; i >= 0; i-- {
		if math.Abs(ys[i]-final) > limit {
			if i+1 < len(times) {
				res.SettlingTime = times[i+1]
			} else {
				res.SettlingTime = times[i]
			}
			break
		}
	}

	return res, nil
}
