// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Typed views over the Parameters bag.
//
// Each component type reads a fixed set of keys with documented defaults.
// The views below decode those keys once so the translator works with
// concrete fields instead of re-probing the map. Keys the views do not
// know about are preserved on the wire but ignored here.
package datatypes

// Voltage source waveform tags (the "type" parameter of a V component).
const (
	SourceSine  = "sine"
	SourcePulse = "pulse"
)

// SineParams is the decoded parameter set of a sinusoidal voltage source.
type SineParams struct {
	Amplitude float64 // volts; defaults to the component value, then 1
	Frequency float64 // hertz; default 1000
	Offset    float64 // volts; default 0
}

// SineFrom decodes sine source parameters, falling back to the component
// value for the amplitude.
func SineFrom(p Parameters, value *float64) SineParams {
	amp := 1.0
	if value != nil {
		amp = *value
	}
	return SineParams{
		Amplitude: p.Float("amplitude", amp),
		Frequency: p.Float("frequency", 1000),
		Offset:    p.Float("offset", 0),
	}
}

// PulseParams is the decoded parameter set of a pulse voltage source.
type PulseParams struct {
	Initial    float64 // volts; default 0
	Pulsed     float64 // volts; defaults to the component value, then 5
	Delay      float64 // seconds; default 0
	RiseTime   float64 // seconds; default 1 ns
	FallTime   float64 // seconds; default 1 ns
	PulseWidth float64 // seconds; default 1 ms
	Period     float64 // seconds; default 2 ms
}

// PulseFrom decodes pulse source parameters.
func PulseFrom(p Parameters, value *float64) PulseParams {
	pulsed := 5.0
	if value != nil {
		pulsed = *value
	}
	return PulseParams{
		Initial:    p.Float("initial", 0),
		Pulsed:     p.Float("pulsed", pulsed),
		Delay:      p.Float("delay", 0),
		RiseTime:   p.Float("rise_time", 1e-9),
		FallTime:   p.Float("fall_time", 1e-9),
		PulseWidth: p.Float("pulse_width", 1e-3),
		Period:     p.Float("period", 2e-3),
	}
}

// DiodeModelParams is the decoded model card of a diode.
type DiodeModelParams struct {
	Model string  // model name; default "default_diode"
	IS    float64 // saturation current; default 1e-14
	N     float64 // emission coefficient; default 1
	VJ    float64 // junction potential; default 1
}

func DiodeModelFrom(p Parameters) DiodeModelParams {
	return DiodeModelParams{
		Model: p.String("model", "default_diode"),
		IS:    p.Float("is", 1e-14),
		N:     p.Float("n", 1),
		VJ:    p.Float("vj", 1),
	}
}

// BJTModelParams is the decoded model card of an NPN transistor.
type BJTModelParams struct {
	Model string  // model name; default "default_npn"
	BF    float64 // forward beta; default 100
}

func BJTModelFrom(p Parameters) BJTModelParams {
	return BJTModelParams{
		Model: p.String("model", "default_npn"),
		BF:    p.Float("bf", 100),
	}
}

// OpAmpParams is the decoded parameter set of a UVX op-amp.
type OpAmpParams struct {
	Gain float64 // open-loop differential gain; default 1e6
}

func OpAmpFrom(p Parameters) OpAmpParams {
	return OpAmpParams{Gain: p.Float("gain", 1e6)}
}

// ComparatorParams is the decoded parameter set of a UVX comparator.
type ComparatorParams struct {
	High float64 // output when v(in+) > v(in-); default 5
	Low  float64 // output otherwise; default 0
}

func ComparatorFrom(p Parameters) ComparatorParams {
	return ComparatorParams{
		High: p.Float("high", 5),
		Low:  p.Float("low", 0),
	}
}

// ConverterParams is the decoded parameter set shared by UVX ADCs and DACs.
type ConverterParams struct {
	Bits      int     // resolution; default 8
	Reference float64 // full-scale reference voltage; default 5
}

func ConverterFrom(p Parameters) ConverterParams {
	bits := int(p.Float("bits", 8))
	if bits < 1 {
		bits = 8
	}
	return ConverterParams{
		Bits:      bits,
		Reference: p.Float("reference", 5),
	}
}
