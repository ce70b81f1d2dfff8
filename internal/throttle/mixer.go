package throttle

import (
	"errors"
	"fmt"
)

var ErrFault = errors.New("throttle: forward and reverse engaged together")

// Inputs are normalized pedal ratios.
type Inputs struct {
	Forward float64
	Reverse float64
	Regen   float64
}

// ReadInputs normalizes raw ADC readings; the regen pot has no deadband.
func ReadInputs(fwd, rev, regen int, deadband float64) Inputs {
	return Inputs{
		Forward: Normalize(fwd, deadband),
		Reverse: Normalize(rev, deadband),
		Regen:   NormalizeRaw(regen),
	}
}

type Outputs struct {
	Throttle float64
	Regen    float64
	Reverse  bool
	Fault    bool
}

// ReversePin is the level driven on the reverse line. The controller's
// reverse input is active low when invert is set.
func (o Outputs) ReversePin(invert bool) bool {
	if invert {
		return !o.Reverse
	}
	return o.Reverse
}

func (o Outputs) ThrottleCode() uint16 { return DACCode(o.Throttle) }
func (o Outputs) RegenCode() uint16    { return DACCode(o.Regen) }

func (o Outputs) String() string {
	if o.Fault {
		return "FAULT"
	}
	dir := "fwd"
	if o.Reverse {
		dir = "rev"
	}
	return fmt.Sprintf("throttle=%.3f regen=%.3f dir=%s", o.Throttle, o.Regen, dir)
}

// Mixer arbitrates the pedals. A fault latches until Reset.
type Mixer struct {
	Forward       *Converter
	Reverse       *Converter
	Regen         *Converter
	InvertReverse bool

	fault bool
}

func NewMixer() *Mixer {
	return &Mixer{
		Forward:       ForwardConverter(),
		Reverse:       ReverseConverter(),
		Regen:         RegenConverter(),
		InvertReverse: true,
	}
}

// Validate reports a converter whose range is empty.
func (m *Mixer) Validate() error {
	for name, c := range map[string]*Converter{"forward": m.Forward, "reverse": m.Reverse, "regen": m.Regen} {
		if c == nil || c.InputMin >= c.InputMax {
			return fmt.Errorf("%s converter: %w", name, ErrInvalidRange)
		}
	}
	return nil
}

// Step computes the outputs for one sample. Regen wins over forward, forward
// over reverse; with every pedal released the mixer idles in reverse at zero
// throttle.
func (m *Mixer) Step(in Inputs) Outputs {
	if m.fault || (in.Forward != 0 && in.Reverse != 0) {
		m.fault = true
		return Outputs{Fault: true}
	}

	switch {
	case in.Regen != 0:
		return Outputs{Regen: m.Regen.Convert(in.Regen)}
	case in.Forward != 0:
		return Outputs{Throttle: m.Forward.Convert(in.Forward)}
	default:
		return Outputs{Throttle: m.Reverse.Convert(in.Reverse), Reverse: true}
	}
}

func (m *Mixer) Faulted() bool { return m.fault }

// Err returns ErrFault while the fault is latched.
func (m *Mixer) Err() error {
	if m.fault {
		return ErrFault
	}
	return nil
}

func (m *Mixer) Reset() { m.fault = false }
