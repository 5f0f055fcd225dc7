// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

// Sensitivities of the output codes.
const (
	lsbPerHPa1260 = 100.0
	lsbPerHPa4060 = 50.0
	lsbPerDegC    = 100.0
	lsbPerMV      = 438000.0
)

// FromFs1260ToHPa converts a pressure code in the 1260 hPa full scale.
func FromFs1260ToHPa(lsb int32) float32 {
	return float32(lsb) / lsbPerHPa1260
}

// FromFs4060ToHPa converts a pressure code in the 4060 hPa full scale.
func FromFs4060ToHPa(lsb int32) float32 {
	return float32(lsb) / lsbPerHPa4060
}

// FromLSBToCelsius converts a temperature code.
func FromLSBToCelsius(lsb int16) float32 {
	return float32(lsb) / lsbPerDegC
}

// FromLSBToMV converts an AH/QVAR code to millivolts.
func FromLSBToMV(lsb int32) float32 {
	return float32(lsb) / lsbPerMV
}

// ToHPa converts a pressure code using the full scale.
func (f Fs) ToHPa(lsb int32) float32 {
	if f == Fs4060hPa {
		return FromFs4060ToHPa(lsb)
	}
	return FromFs1260ToHPa(lsb)
}
