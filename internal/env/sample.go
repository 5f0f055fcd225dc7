// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package env

import "time"

// Sample kinds.
const (
	KindPressure = "pressure"
	KindQvar     = "qvar"
)

// Sample is one barometer reading as published on TOPIC_BARO.
type Sample struct {
	Source string    `json:"source"`         // "data" or "fifo"
	Kind   string    `json:"kind,omitempty"` // KindPressure or KindQvar
	Time   time.Time `json:"time"`

	Temperature float64 `json:"temp_c"`       // °C, zero for FIFO entries
	PressureHPa float64 `json:"pressure_hpa"` // zero for AH/QVAR entries
	PressureRaw int32   `json:"pressure_raw"` // 24-bit sign-extended output

	// Set only when the entry carries AH/QVAR instead of pressure.
	QvarLSB int32   `json:"qvar_lsb,omitempty"`
	QvarMV  float64 `json:"qvar_mv,omitempty"`
}

// IsQvar reports whether the sample carries an AH/QVAR reading. Without a
// Kind, a non-zero QvarLSB marks the entry.
func (s Sample) IsQvar() bool {
	if s.Kind != "" {
		return s.Kind == KindQvar
	}
	return s.QvarLSB != 0
}

// Sources is the flag snapshot published on TOPIC_BARO_SOURCES.
type Sources struct {
	Time       time.Time `json:"time"`
	DrdyPres   bool      `json:"drdy_pres"`
	DrdyTemp   bool      `json:"drdy_temp"`
	OverPres   bool      `json:"over_pres"`
	UnderPres  bool      `json:"under_pres"`
	ThrsldPres bool      `json:"thrsld_pres"`
	FifoFull   bool      `json:"fifo_full"`
	FifoOvr    bool      `json:"fifo_ovr"`
	FifoTh     bool      `json:"fifo_th"`
	FifoLevel  uint8     `json:"fifo_level"`
}
