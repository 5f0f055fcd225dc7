// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import "time"

type busOp struct {
	write bool
	reg   uint8
	n     int
}

// fakeRegs is an in-memory register file with the side effects the driver
// depends on: address auto-increment, INT_SOURCE clear-on-read, a FIFO queue
// behind FIFO_DATA_OUT_PRESS and a self-clearing SWRESET.
type fakeRegs struct {
	regs [0x80]byte
	fifo []int32
	ops  []busOp

	// resetLatency is how many CTRL_REG2 reads still report SWRESET after
	// a reset is written.
	resetLatency int
	resetPending int

	readErr  error
	writeErr error
}

func newFakeRegs() *fakeRegs {
	f := &fakeRegs{}
	f.regs[RegWhoAmI] = ID
	return f
}

func (f *fakeRegs) ReadRegs(reg uint8, b []byte) error {
	f.ops = append(f.ops, busOp{reg: reg, n: len(b)})
	if f.readErr != nil {
		return f.readErr
	}
	if reg == uint8(RegFifoDataOutPressXL) {
		var code int32
		if len(f.fifo) > 0 {
			code, f.fifo = f.fifo[0], f.fifo[1:]
		}
		for i := range b {
			b[i] = byte(code >> (8 * i))
		}
		return nil
	}
	for i := range b {
		b[i] = f.peek(int(reg) + i)
	}
	return nil
}

func (f *fakeRegs) peek(a int) byte {
	switch Reg(a) {
	case RegFifoStatus1:
		return byte(len(f.fifo))
	case RegIntSource:
		v := f.regs[a]
		f.regs[a] &^= fieldMask(intSourceLayout, "PH") | fieldMask(intSourceLayout, "PL") | fieldMask(intSourceLayout, "IA")
		return v
	case RegCtrlReg2:
		v := f.regs[a]
		sw := fieldMask(ctrlReg2Layout, "SWRESET")
		if v&sw != 0 {
			if f.resetPending > 0 {
				f.resetPending--
			} else {
				f.regs[a] &^= sw
				v &^= sw
			}
		}
		return v
	}
	return f.regs[a]
}

func (f *fakeRegs) WriteRegs(reg uint8, b []byte) error {
	f.ops = append(f.ops, busOp{write: true, reg: reg, n: len(b)})
	if f.writeErr != nil {
		return f.writeErr
	}
	for i, v := range b {
		a := int(reg) + i
		f.regs[a] = v
		if Reg(a) == RegCtrlReg2 && v&fieldMask(ctrlReg2Layout, "SWRESET") != 0 {
			f.resetPending = f.resetLatency
		}
	}
	return nil
}

func (f *fakeRegs) pushFifo(codes ...int32) {
	f.fifo = append(f.fifo, codes...)
}

func (f *fakeRegs) writes() int {
	n := 0
	for _, o := range f.ops {
		if o.write {
			n++
		}
	}
	return n
}

// fieldMask returns the bits of a named field in a single-byte register.
func fieldMask(l *Layout, name string) byte {
	for i, fl := range l.Fields {
		if fl.Name == name {
			return byte(mask(fl.Width) << l.Offset(i))
		}
	}
	panic("no field " + name + " in " + l.Name)
}

func newFakeDev() (*Dev, *fakeRegs) {
	f := newFakeRegs()
	return New(f, &Opts{Delay: func(time.Duration) {}}), f
}
