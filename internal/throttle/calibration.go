package throttle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMalformedLine = errors.New("throttle: malformed calibration line")

const calibrationFormat = "Fwd In: %f Rev In: %f Regen In: %f Fwd Out: %f Rev Out: %f Regen Out: %f"

// Calibration is one line of the firmware's calibration output: the three
// normalized inputs and what each converter makes of them.
type Calibration struct {
	FwdIn, RevIn, RegenIn    float64
	FwdOut, RevOut, RegenOut float64
}

// Calibrate evaluates every converter of m on in, independent of the
// mixer's arbitration.
func Calibrate(m *Mixer, in Inputs) Calibration {
	return Calibration{
		FwdIn:    in.Forward,
		RevIn:    in.Reverse,
		RegenIn:  in.Regen,
		FwdOut:   m.Forward.Convert(in.Forward),
		RevOut:   m.Reverse.Convert(in.Reverse),
		RegenOut: m.Regen.Convert(in.Regen),
	}
}

// String formats c the way the firmware prints it, with two decimals.
func (c Calibration) String() string {
	return fmt.Sprintf("Fwd In: %.2f Rev In: %.2f Regen In: %.2f Fwd Out: %.2f Rev Out: %.2f Regen Out: %.2f",
		c.FwdIn, c.RevIn, c.RegenIn, c.FwdOut, c.RevOut, c.RegenOut)
}

func (c Calibration) Inputs() Inputs {
	return Inputs{Forward: c.FwdIn, Reverse: c.RevIn, Regen: c.RegenIn}
}

func ParseCalibration(line string) (Calibration, error) {
	var c Calibration
	line = strings.TrimSpace(line)
	_, err := fmt.Sscanf(line, calibrationFormat,
		&c.FwdIn, &c.RevIn, &c.RegenIn, &c.FwdOut, &c.RevOut, &c.RegenOut)
	if err != nil {
		return Calibration{}, fmt.Errorf("%w: %q: %w", ErrMalformedLine, line, err)
	}
	return c, nil
}

type MonitorStats struct {
	Lines     int
	Malformed int
}

// Monitor parses calibration lines from r until EOF or cancellation and
// hands each to fn. Malformed lines are counted and skipped; an error from fn
// stops the monitor.
func Monitor(ctx context.Context, r io.Reader, fn func(Calibration) error) (MonitorStats, error) {
	var stats MonitorStats
	sc := bufio.NewScanner(r)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		stats.Lines++

		c, err := ParseCalibration(line)
		if err != nil {
			stats.Malformed++
			continue
		}
		if err := fn(c); err != nil {
			return stats, err
		}
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, sc.Err()
}
