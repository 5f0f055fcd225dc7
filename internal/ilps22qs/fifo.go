// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import "fmt"

// FifoDepth is the number of entries the FIFO holds.
const FifoDepth = 128

// FifoMd is the FIFO configuration.
type FifoMd struct {
	Operation Operation
	Watermark uint8 // 0..127, 0 disables stop-on-watermark
}

// FifoStatus is the informational FIFO flag set.
type FifoStatus struct {
	Full bool
	Ovr  bool
	Wtm  bool
}

// FifoData is one decoded FIFO entry. LSB is non-zero for AH/QVAR entries,
// which carry no pressure.
type FifoData struct {
	HPa float32
	LSB int32
	Raw int32
}

// FifoModeSet configures the FIFO operating mode and watermark.
func (d *Dev) FifoModeSet(val *FifoMd) error {
	if _, err := OperationFromBits(uint8(val.Operation)); err != nil {
		return err
	}
	if val.Watermark > 0x7F {
		return fmt.Errorf("%w: %d", ErrInvalidWatermark, val.Watermark)
	}
	var fc FifoCtrl
	err := d.modify(&fc, func() {
		fc.FMode = uint8(val.Operation) & 0x03
		fc.TrigModes = val.Operation&0x04 != 0
		fc.StopOnWtm = val.Watermark != 0
	})
	if err != nil {
		return err
	}
	var w FifoWtm
	return d.modify(&w, func() { w.Wtm = val.Watermark })
}

// FifoModeGet reads back the FIFO configuration.
func (d *Dev) FifoModeGet() (FifoMd, error) {
	var (
		fc FifoCtrl
		w  FifoWtm
	)
	if err := d.Get(&fc); err != nil {
		return FifoMd{}, err
	}
	if err := d.Get(&w); err != nil {
		return FifoMd{}, err
	}
	op, err := OperationFromBits(uint8(bit(fc.TrigModes)<<2) | fc.FMode)
	if err != nil {
		return FifoMd{}, err
	}
	return FifoMd{Operation: op, Watermark: w.Wtm}, nil
}

// FifoLevelGet returns the number of unread entries, 0..128.
func (d *Dev) FifoLevelGet() (uint8, error) {
	var s FifoStatus1
	err := d.Get(&s)
	return s.Fss, err
}

// FifoStatusGet returns the FIFO full, overrun and watermark flags.
func (d *Dev) FifoStatusGet() (FifoStatus, error) {
	var s FifoStatus2
	if err := d.Get(&s); err != nil {
		return FifoStatus{}, err
	}
	return FifoStatus{Full: s.FifoFullIA, Ovr: s.FifoOvrIA, Wtm: s.FifoWtmIA}, nil
}

// FifoDataGet pops level entries, oldest first, into out. out must hold at
// least level entries; otherwise nothing is read.
func (d *Dev) FifoDataGet(level uint8, md *Md, out []FifoData) error {
	if len(out) < int(level) {
		return fmt.Errorf("%w: need %d entries, have %d", ErrBufferTooSmall, level, len(out))
	}
	if _, err := FsFromBits(uint8(md.Fs)); err != nil {
		return err
	}
	for i := 0; i < int(level); i++ {
		var e FifoDataOutPress
		if err := d.Get(&e); err != nil {
			return err
		}
		out[i] = decodeFifo(md, e.FifoP)
	}
	return nil
}

func decodeFifo(md *Md, code int32) FifoData {
	if isAhQvar(md, code) {
		return FifoData{LSB: code, Raw: code}
	}
	return FifoData{HPa: md.Fs.ToHPa(code), Raw: code}
}
