package throttle

import (
	"errors"
	"fmt"
	"math"
)

const (
	// ADCMax is the full-scale reading of the 10-bit ADC.
	ADCMax = 1023
	// DACMax is the full-scale code of the 12-bit DAC.
	DACMax = 4095

	DefaultDeadband = 4.0 / 1024.0
)

var ErrInvalidRange = errors.New("throttle: input min must be below input max")

// Normalize converts a raw pedal reading to [0, 1], reporting zero inside the
// deadband.
func Normalize(raw int, deadband float64) float64 {
	r := NormalizeRaw(raw)
	if r > deadband {
		return r
	}
	return 0
}

// NormalizeRaw converts a raw reading without a deadband. The regen
// potentiometer is read this way.
func NormalizeRaw(raw int) float64 {
	return math.Max(0, float64(raw)) / ADCMax
}

// Converter maps an input ratio onto an output ratio: zero at or below
// InputMin, full scale at or above InputMax, and a rescaled ratio in between,
// optionally bent toward finer control at low output.
type Converter struct {
	InputMin    float64
	InputMax    float64
	Logarithmic bool
}

func NewConverter(min, max float64, logarithmic bool) (*Converter, error) {
	if min >= max {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrInvalidRange, min, max)
	}
	return &Converter{InputMin: min, InputMax: max, Logarithmic: logarithmic}, nil
}

func (c *Converter) Convert(ratio float64) float64 {
	if ratio <= c.InputMin {
		return 0
	}
	if ratio >= c.InputMax {
		return 1
	}

	r := (ratio - c.InputMin) / (c.InputMax - c.InputMin)
	if !c.Logarithmic {
		return r
	}
	return logCurve(r)
}

// logCurve approximates a logarithmic response; it fixes 0 and 1 and maps
// 0.5 to 0.25.
func logCurve(r float64) float64 {
	return -r / (2*r - 3)
}

func ForwardConverter() *Converter {
	return &Converter{InputMin: DefaultDeadband, InputMax: 0.5, Logarithmic: true}
}

func ReverseConverter() *Converter {
	return &Converter{InputMin: DefaultDeadband, InputMax: 0.5, Logarithmic: true}
}

// RegenConverter covers the short travel of the regen potentiometer.
func RegenConverter() *Converter {
	return &Converter{InputMin: 0.1, InputMax: 0.2, Logarithmic: true}
}

// DACCode converts an output ratio to a DAC code, truncating like the
// firmware does.
func DACCode(ratio float64) uint16 {
	ratio = math.Min(1, math.Max(0, ratio))
	return uint16(ratio * DACMax)
}
