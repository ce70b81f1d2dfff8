package analysis

import "sort"

// Resample linearly interpolates ys, sampled at increasing times, onto n
// evenly spaced instants spanning the same interval.
func Resample(times, ys []float64, n int) ([]float64, []float64) {
	if len(times) == 0 || len(times) != len(ys) || n < 1 {
		return nil, nil
	}

	ts := make([]float64, n)
	out := make([]float64, n)
	t0, t1 := times[0], times[len(times)-1]

	for i := 0; i < n; i++ {
		t := t0
		if n > 1 {
			t = t0 + (t1-t0)*float64(i)/float64(n-1)
		}
		ts[i] = t

		j := sort.SearchFloat64s(times, t)
		switch {
		case j == 0:
			out[i] = ys[0]
		case j >= len(times):
			out[i] = ys[len(ys)-1]
		default:
			ta, tb := times[j-1], times[j]
			if tb == ta {
				out[i] = ys[j]
				continue
			}
			w := (t - ta) / (tb - ta)
			out[i] = ys[j-1]*(1-w) + ys[j]*w
		}
	}

	return ts, out
}
