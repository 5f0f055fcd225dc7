// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import "fmt"

// Fs is the pressure full scale.
type Fs uint8

const (
	Fs1260hPa Fs = 0x00
	Fs4060hPa Fs = 0x01
)

// Odr is the output data rate.
type Odr uint8

const (
	OneShot  Odr = 0x00
	Odr1Hz   Odr = 0x01
	Odr4Hz   Odr = 0x02
	Odr10Hz  Odr = 0x03
	Odr25Hz  Odr = 0x04
	Odr50Hz  Odr = 0x05
	Odr75Hz  Odr = 0x06
	Odr100Hz Odr = 0x07
	Odr200Hz Odr = 0x08
)

// Avg is the number of internal samples averaged per output.
type Avg uint8

const (
	Avg4   Avg = 0x00
	Avg8   Avg = 0x01
	Avg16  Avg = 0x02
	Avg32  Avg = 0x03
	Avg64  Avg = 0x04
	Avg128 Avg = 0x05
	Avg256 Avg = 0x06
	Avg512 Avg = 0x07
)

// Lpf is the low-pass filter setting. Bit 0 enables the filter, bit 1
// selects the narrower bandwidth.
type Lpf uint8

const (
	LpfDisable Lpf = 0x00 // 0b00
	LpfOdrDiv4 Lpf = 0x01 // 0b01
	LpfOdrDiv9 Lpf = 0x03 // 0b11
)

// Operation is the FIFO operating mode. Bits 1:0 go to F_MODE, bit 2 to
// TRIG_MODES.
type Operation uint8

const (
	Bypass         Operation = 0x00 // 0b000
	Fifo           Operation = 0x01 // 0b001
	Stream         Operation = 0x02 // 0b010
	BypassToFifo   Operation = 0x05 // 0b101
	BypassToStream Operation = 0x06 // 0b110
	StreamToFifo   Operation = 0x07 // 0b111
)

// Interface selects the serial interface. Bit 1 disables I2C/I3C, bit 0
// enables SPI 3-wire reads.
type Interface uint8

const (
	SelByHw Interface = 0x00
	Spi3w   Interface = 0x03
)

// Filter is the I3C antispike filter policy.
type Filter uint8

const (
	FilterAuto     Filter = 0x00
	FilterAlwaysOn Filter = 0x01
)

// Init is a device initialization action.
type Init uint8

const (
	DrvRdy Init = 0x00
	Boot   Init = 0x01
	Reset  Init = 0x02
)

// ApplyRef selects where the captured reference pressure is applied.
type ApplyRef uint8

const (
	OutAndInterrupt ApplyRef = 0x00
	OnlyInterrupt   ApplyRef = 0x01
	RstRefs         ApplyRef = 0x02
)

func invalid(kind string, bits uint8) error {
	return fmt.Errorf("%w: %s 0x%02X", ErrInvalidEnumValue, kind, bits)
}

// FsFromBits decodes a raw FS_MODE value.
func FsFromBits(b uint8) (Fs, error) {
	if b > uint8(Fs4060hPa) {
		return 0, invalid("Fs", b)
	}
	return Fs(b), nil
}

// OdrFromBits decodes a raw ODR value.
func OdrFromBits(b uint8) (Odr, error) {
	if b > uint8(Odr200Hz) {
		return 0, invalid("Odr", b)
	}
	return Odr(b), nil
}

// AvgFromBits decodes a raw AVG value.
func AvgFromBits(b uint8) (Avg, error) {
	if b > uint8(Avg512) {
		return 0, invalid("Avg", b)
	}
	return Avg(b), nil
}

// LpfFromBits decodes the combined (LFPF_CFG<<1)|EN_LPFP value.
func LpfFromBits(b uint8) (Lpf, error) {
	switch l := Lpf(b); l {
	case LpfDisable, LpfOdrDiv4, LpfOdrDiv9:
		return l, nil
	}
	return 0, invalid("Lpf", b)
}

// OperationFromBits decodes the combined (TRIG_MODES<<2)|F_MODE value.
func OperationFromBits(b uint8) (Operation, error) {
	switch o := Operation(b); o {
	case Bypass, Fifo, Stream, BypassToFifo, BypassToStream, StreamToFifo:
		return o, nil
	}
	return 0, invalid("Operation", b)
}

// InterfaceFromBits decodes the combined (I2C_I3C_DIS<<1)|EN_SPI_READ value.
func InterfaceFromBits(b uint8) (Interface, error) {
	switch i := Interface(b); i {
	case SelByHw, Spi3w:
		return i, nil
	}
	return 0, invalid("Interface", b)
}

// FilterFromBits decodes a raw ASF_ON value.
func FilterFromBits(b uint8) (Filter, error) {
	if b > uint8(FilterAlwaysOn) {
		return 0, invalid("Filter", b)
	}
	return Filter(b), nil
}

// InitFromBits decodes an initialization action code.
func InitFromBits(b uint8) (Init, error) {
	if b > uint8(Reset) {
		return 0, invalid("Init", b)
	}
	return Init(b), nil
}

// ApplyRefFromBits decodes the combined (RESET_AZ<<1)|AUTOREFP value.
func ApplyRefFromBits(b uint8) (ApplyRef, error) {
	if b > uint8(RstRefs) {
		return 0, invalid("ApplyRef", b)
	}
	return ApplyRef(b), nil
}

func (f Fs) String() string {
	switch f {
	case Fs1260hPa:
		return "1260hPa"
	case Fs4060hPa:
		return "4060hPa"
	}
	return fmt.Sprintf("Fs(%d)", uint8(f))
}

var odrNames = [...]string{"one-shot", "1Hz", "4Hz", "10Hz", "25Hz", "50Hz", "75Hz", "100Hz", "200Hz"}

func (o Odr) String() string {
	if int(o) < len(odrNames) {
		return odrNames[o]
	}
	return fmt.Sprintf("Odr(%d)", uint8(o))
}

// Samples returns the averaging depth, 4..512.
func (a Avg) Samples() int {
	return 4 << a
}

func (a Avg) String() string {
	if a > Avg512 {
		return fmt.Sprintf("Avg(%d)", uint8(a))
	}
	return fmt.Sprintf("avg%d", a.Samples())
}

func (l Lpf) String() string {
	switch l {
	case LpfDisable:
		return "disabled"
	case LpfOdrDiv4:
		return "ODR/4"
	case LpfOdrDiv9:
		return "ODR/9"
	}
	return fmt.Sprintf("Lpf(%d)", uint8(l))
}

func (o Operation) String() string {
	switch o {
	case Bypass:
		return "bypass"
	case Fifo:
		return "fifo"
	case Stream:
		return "stream"
	case BypassToFifo:
		return "bypass-to-fifo"
	case BypassToStream:
		return "bypass-to-stream"
	case StreamToFifo:
		return "stream-to-fifo"
	}
	return fmt.Sprintf("Operation(%d)", uint8(o))
}

func (i Interface) String() string {
	switch i {
	case SelByHw:
		return "sel-by-hw"
	case Spi3w:
		return "spi-3w"
	}
	return fmt.Sprintf("Interface(%d)", uint8(i))
}

func (f Filter) String() string {
	switch f {
	case FilterAuto:
		return "auto"
	case FilterAlwaysOn:
		return "always-on"
	}
	return fmt.Sprintf("Filter(%d)", uint8(f))
}
