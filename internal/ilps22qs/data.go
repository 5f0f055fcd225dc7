// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import (
	"periph.io/x/conn/v3/physic"
)

// Pressure is one pressure reading.
type Pressure struct {
	HPa float32
	Raw int32 // sign-extended 24-bit code
}

// Heat is one temperature reading.
type Heat struct {
	DegC float32
	Raw  int16
}

// AhQvar is the auxiliary channel code captured alongside a reading.
// LSB is 0 when the cycle carried no auxiliary sample.
type AhQvar struct {
	LSB int32
}

// Data is one measurement.
type Data struct {
	Pressure Pressure
	Heat     Heat
	AhQvar   AhQvar
}

// AhQvarData is one AH/QVAR reading.
type AhQvarData struct {
	MV  float32
	LSB int32
	Raw int32
}

// Env returns the measurement in periph units. Auxiliary entries report no
// pressure.
func (m *Data) Env() physic.Env {
	var e physic.Env
	e.Temperature = physic.ZeroCelsius + physic.Temperature(m.Heat.Raw)*10*physic.MilliKelvin
	if m.AhQvar.LSB == 0 {
		e.Pressure = physic.Pressure(float64(m.Pressure.HPa) * 100 * float64(physic.Pascal))
	}
	return e
}

// isAhQvar reports whether a pressure-path code carries an auxiliary
// sample. In interleaved mode the device tags AH/QVAR entries with bit 0 of
// the XL byte.
func isAhQvar(md *Md, code int32) bool {
	return md.InterleavedMode && code&0x01 == 1
}

// DataGet reads pressure and temperature in one transaction and converts
// them using md.
func (d *Dev) DataGet(md *Md) (Data, error) {
	var out Data
	if _, err := FsFromBits(uint8(md.Fs)); err != nil {
		return out, err
	}
	buf := make([]byte, pressOutLayout.Size+tempOutLayout.Size)
	if err := d.ReadRaw(RegPressOutXL, buf); err != nil {
		return out, err
	}
	var (
		p PressOut
		t TempOut
	)
	p.unpack(pressOutLayout.Decode(buf[:pressOutLayout.Size]))
	t.unpack(tempOutLayout.Decode(buf[pressOutLayout.Size:]))

	out.Pressure.Raw = p.Pout
	if isAhQvar(md, p.Pout) {
		out.AhQvar.LSB = p.Pout
	} else {
		out.Pressure.HPa = md.Fs.ToHPa(p.Pout)
	}
	out.Heat.Raw = t.Tout
	out.Heat.DegC = FromLSBToCelsius(t.Tout)
	return out, nil
}

// AhQvarDataGet reads the AH/QVAR channel from the pressure output
// registers. AH/QVAR must be enabled and interleaving off.
func (d *Dev) AhQvarDataGet() (AhQvarData, error) {
	var p PressOut
	if err := d.Get(&p); err != nil {
		return AhQvarData{}, err
	}
	return AhQvarData{MV: FromLSBToMV(p.Pout), LSB: p.Pout, Raw: p.Pout}, nil
}
