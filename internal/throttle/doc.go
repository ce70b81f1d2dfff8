// Package throttle models the pedal-to-motor-controller mixer of the
// electric drive: three potentiometer inputs (forward, reverse, regen) are
// normalized, shaped by [Converter] curves and arbitrated by [Mixer] into a
// throttle DAC level, a regen DAC level and a reverse signal.
//
// The firmware's calibration output can be parsed with [ParseCalibration]
// and followed live from a serial port with [OpenPort] and [Monitor].
package throttle
