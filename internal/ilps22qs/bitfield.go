// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import "fmt"

// Access tells whether a field may be written by the host.
type Access uint8

const (
	RW Access = iota // read-write
	RO               // read-only, preserved on write
)

func (a Access) String() string {
	if a == RO {
		return "R"
	}
	return "RW"
}

// Field is one named bit range inside a register.
type Field struct {
	Name        string
	Width       uint
	Access      Access
	Signed      bool
	Description string
}

// Layout is the fixed bit layout of one register (or of a run of adjacent
// registers read as a single transaction).
//
// Fields are listed in declaration order. With the default LSB-first build
// the first field sits at bit 0; building with the bitorder_msb tag places
// the first field at the most significant bit instead.
type Layout struct {
	Reg         Reg
	Name        string
	Size        int // bytes, 1..4
	Description string
	Fields      []Field

	offsets  []uint
	readOnly bool
	writable bool
}

func newLayout(reg Reg, name string, size int, desc string, fields ...Field) *Layout {
	l := &Layout{Reg: reg, Name: name, Size: size, Description: desc, Fields: fields}
	total := uint(0)
	for _, f := range fields {
		total += f.Width
	}
	if size < 1 || size > 4 || total != uint(size)*8 {
		panic(fmt.Sprintf("ilps22qs: layout %s: fields cover %d bits, register has %d", name, total, size*8))
	}
	l.offsets = make([]uint, len(fields))
	pos := uint(0)
	for i, f := range fields {
		if msbFirst {
			l.offsets[i] = total - pos - f.Width
		} else {
			l.offsets[i] = pos
		}
		pos += f.Width
		if f.Access == RO {
			l.readOnly = true
		} else {
			l.writable = true
		}
	}
	return l
}

func rw(name string, width uint, desc string) Field {
	return Field{Name: name, Width: width, Access: RW, Description: desc}
}

func ro(name string, width uint, desc string) Field {
	return Field{Name: name, Width: width, Access: RO, Description: desc}
}

func reserved(width uint) Field {
	return Field{Width: width, Access: RO}
}

// Offset returns the bit offset of field i within the assembled register value.
func (l *Layout) Offset(i int) uint { return l.offsets[i] }

// HasReadOnly reports whether a write must first read back the register.
func (l *Layout) HasReadOnly() bool { return l.readOnly }

// Writable reports whether at least one field can be written.
func (l *Layout) Writable() bool { return l.writable }

// Decode splits raw register bytes (lowest address first) into field values,
// in declaration order. Signed fields are returned as raw bits; use
// SignExtend to widen them.
func (l *Layout) Decode(raw []byte) []uint32 {
	v := assemble(raw, l.Size)
	out := make([]uint32, len(l.Fields))
	for i, f := range l.Fields {
		out[i] = (v >> l.offsets[i]) & mask(f.Width)
	}
	return out
}

// Encode packs field values into register bytes. Read-only fields are
// taken from prev, the bytes last read from the device, so that a write
// never disturbs bits the host does not own. prev may be nil.
func (l *Layout) Encode(values []uint32, prev []byte) []byte {
	old := assemble(prev, l.Size)
	var v uint32
	for i, f := range l.Fields {
		m := mask(f.Width) << l.offsets[i]
		if f.Access == RO || i >= len(values) {
			v |= old & m
			continue
		}
		v |= (values[i] << l.offsets[i]) & m
	}
	out := make([]byte, l.Size)
	for i := range out {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// SignExtend widens a two's-complement value of the given bit width.
func SignExtend(v uint32, width uint) int32 {
	shift := 32 - width
	return int32(v<<shift) >> shift
}

func assemble(raw []byte, size int) uint32 {
	var v uint32
	for i := 0; i < size && i < len(raw); i++ {
		v |= uint32(raw[i]) << (8 * i)
	}
	return v
}

func mask(width uint) uint32 {
	if width >= 32 {
		return 0xFFFFFFFF
	}
	return 1<<width - 1
}

func bit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
