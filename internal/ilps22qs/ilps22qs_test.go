// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import (
	"errors"
	"testing"
)

func TestIDGet(t *testing.T) {
	d, _ := newFakeDev()
	id, err := d.IDGet()
	if err != nil {
		t.Fatal(err)
	}
	if id != ID {
		t.Fatalf("id = 0x%02X, want 0x%02X", id, ID)
	}
}

func TestInitSetResetNeedsPolling(t *testing.T) {
	d, f := newFakeDev()
	f.resetLatency = 2
	if err := d.InitSet(Reset); err != nil {
		t.Fatal(err)
	}
	if len(f.ops) != 2 {
		t.Fatalf("InitSet issued %d bus ops, want 2 (no implicit wait)", len(f.ops))
	}
	polls := 0
	for {
		s, err := d.StatusGet()
		if err != nil {
			t.Fatal(err)
		}
		polls++
		if !s.SwReset {
			break
		}
		if polls > 10 {
			t.Fatal("reset never completed")
		}
	}
	if polls != 3 {
		t.Fatalf("reset cleared after %d polls, want 3", polls)
	}
}

func TestInitSet(t *testing.T) {
	d, _ := newFakeDev()
	if err := d.InitSet(DrvRdy); err != nil {
		t.Fatal(err)
	}
	var c2 CtrlReg2
	var c3 CtrlReg3
	if err := d.Get(&c2); err != nil {
		t.Fatal(err)
	}
	if err := d.Get(&c3); err != nil {
		t.Fatal(err)
	}
	if !c2.BDU || !c3.IfAddInc {
		t.Fatalf("DrvRdy: BDU=%v IF_ADD_INC=%v", c2.BDU, c3.IfAddInc)
	}

	if err := d.InitSet(Boot); err != nil {
		t.Fatal(err)
	}
	if err := d.Get(&c2); err != nil {
		t.Fatal(err)
	}
	if !c2.Boot || !c2.BDU {
		t.Fatalf("Boot: %+v", c2)
	}

	if err := d.InitSet(Init(9)); !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("got %v, want ErrInvalidEnumValue", err)
	}
}

func TestStatusGet(t *testing.T) {
	d, f := newFakeDev()
	f.regs[RegStatus] = fieldMask(statusLayout, "P_DA") | fieldMask(statusLayout, "T_OR")
	f.regs[RegInterruptCfg] = fieldMask(interruptCfgLayout, "AUTOZERO")
	f.regs[RegIntSource] = fieldMask(intSourceLayout, "BOOT_ON")
	s, err := d.StatusGet()
	if err != nil {
		t.Fatal(err)
	}
	want := Stat{Boot: true, DrdyPres: true, OvrTemp: true, EndMeas: true}
	if s != want {
		t.Fatalf("got %+v want %+v", s, want)
	}
}

func TestAllSourcesClearsLatchedFlags(t *testing.T) {
	d, f := newFakeDev()
	f.regs[RegIntSource] = fieldMask(intSourceLayout, "PH") | fieldMask(intSourceLayout, "IA")
	f.regs[RegFifoStatus2] = fieldMask(fifoStatus2Layout, "FIFO_WTM_IA")
	f.regs[RegStatus] = fieldMask(statusLayout, "T_DA")

	first, err := d.AllSourcesGet()
	if err != nil {
		t.Fatal(err)
	}
	want := AllSources{DrdyTemp: true, OverPres: true, ThrsldPres: true, FifoTh: true}
	if first != want {
		t.Fatalf("first read: got %+v want %+v", first, want)
	}
	second, err := d.AllSourcesGet()
	if err != nil {
		t.Fatal(err)
	}
	if second.OverPres || second.ThrsldPres {
		t.Fatalf("second read still latched: %+v", second)
	}
	if !second.FifoTh || !second.DrdyTemp {
		t.Fatalf("non-latched flags lost: %+v", second)
	}
}

func TestBusModeRoundTrip(t *testing.T) {
	for _, bm := range []BusMode{
		{Interface: SelByHw, Filter: FilterAuto},
		{Interface: Spi3w, Filter: FilterAlwaysOn},
		{Interface: SelByHw, Filter: FilterAlwaysOn},
	} {
		d, _ := newFakeDev()
		if err := d.BusModeSet(&bm); err != nil {
			t.Fatal(err)
		}
		got, err := d.BusModeGet()
		if err != nil {
			t.Fatal(err)
		}
		if got != bm {
			t.Errorf("got %+v want %+v", got, bm)
		}
	}
}

func TestBusModeInvalid(t *testing.T) {
	d, f := newFakeDev()
	if err := d.BusModeSet(&BusMode{Interface: Interface(1)}); !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("set: got %v", err)
	}
	if f.writes() != 0 {
		t.Fatal("invalid bus mode reached the device")
	}
	f.regs[RegIfCtrl] = fieldMask(ifCtrlLayout, "EN_SPI_READ")
	if _, err := d.BusModeGet(); !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("get: got %v", err)
	}
}

func TestModeRoundTrip(t *testing.T) {
	var all []Md
	for _, fs := range []Fs{Fs1260hPa, Fs4060hPa} {
		for odr := OneShot; odr <= Odr200Hz; odr++ {
			for avg := Avg4; avg <= Avg512; avg++ {
				for _, lpf := range []Lpf{LpfDisable, LpfOdrDiv4, LpfOdrDiv9} {
					for _, il := range []bool{false, true} {
						all = append(all, Md{Fs: fs, Odr: odr, Avg: avg, Lpf: lpf, InterleavedMode: il})
					}
				}
			}
		}
	}
	for _, md := range all {
		d, _ := newFakeDev()
		if err := d.ModeSet(&md); err != nil {
			t.Fatal(err)
		}
		got, err := d.ModeGet()
		if err != nil {
			t.Fatal(err)
		}
		if got != md {
			t.Errorf("got %+v want %+v", got, md)
		}
		var fc FifoCtrl
		if err := d.Get(&fc); err != nil {
			t.Fatal(err)
		}
		if fc.AhQvarPFifoEn != md.InterleavedMode {
			t.Errorf("%+v: AH_QVAR_P_FIFO_EN = %v", md, fc.AhQvarPFifoEn)
		}
	}
}

func TestModeSetLpfDisableClearsBothBits(t *testing.T) {
	d, _ := newFakeDev()
	md := Md{Odr: Odr10Hz, Lpf: LpfOdrDiv9}
	if err := d.ModeSet(&md); err != nil {
		t.Fatal(err)
	}
	md.Lpf = LpfDisable
	if err := d.ModeSet(&md); err != nil {
		t.Fatal(err)
	}
	var c2 CtrlReg2
	if err := d.Get(&c2); err != nil {
		t.Fatal(err)
	}
	if c2.EnLPFP || c2.LPFPCfg {
		t.Fatalf("filter bits left set: %+v", c2)
	}
}

func TestModeSetRejectsInvalid(t *testing.T) {
	d, f := newFakeDev()
	for _, md := range []Md{{Odr: Odr(9)}, {Avg: Avg(8)}, {Lpf: Lpf(2)}, {Fs: Fs(2)}} {
		if err := d.ModeSet(&md); !errors.Is(err, ErrInvalidEnumValue) {
			t.Errorf("%+v: got %v", md, err)
		}
	}
	if len(f.ops) != 0 {
		t.Fatalf("%d bus ops for invalid modes", len(f.ops))
	}
}

func TestModeGetUnknownFilterBits(t *testing.T) {
	d, f := newFakeDev()
	f.regs[RegCtrlReg2] = fieldMask(ctrlReg2Layout, "LFPF_CFG")
	if _, err := d.ModeGet(); !errors.Is(err, ErrInvalidEnumValue) {
		t.Fatalf("got %v", err)
	}
}

func TestSetPreservesReadOnlyBits(t *testing.T) {
	for _, r := range []Register{
		&InterruptCfg{}, &ThsP{}, &IfCtrl{}, &CtrlReg1{}, &CtrlReg2{},
		&CtrlReg3{}, &FifoCtrl{}, &FifoWtm{}, &I3cIfCtrl{},
	} {
		d, f := newFakeDev()
		l := r.Layout()
		for i := 0; i < l.Size; i++ {
			f.regs[int(l.Reg)+i] = 0xFF
		}
		if err := d.Set(r); err != nil {
			t.Fatal(err)
		}
		got := l.Decode(f.regs[l.Reg : int(l.Reg)+l.Size])
		for i, fl := range l.Fields {
			want := uint32(0)
			if fl.Access == RO {
				want = mask(fl.Width)
			}
			if got[i] != want {
				t.Errorf("%s field %d (%s): got 0x%X want 0x%X", l.Name, i, fl.Name, got[i], want)
			}
		}
	}
}

func TestSetWithoutReadOnlyFieldsWritesDirectly(t *testing.T) {
	d, f := newFakeDev()
	if err := d.OpcSet(-300); err != nil {
		t.Fatal(err)
	}
	if len(f.ops) != 1 || !f.ops[0].write {
		t.Fatalf("ops = %+v, want a single write", f.ops)
	}
	got, err := d.OpcGet()
	if err != nil {
		t.Fatal(err)
	}
	if got != -300 {
		t.Fatalf("OpcGet = %d", got)
	}
}

func TestSetReadOnlyRegister(t *testing.T) {
	d, f := newFakeDev()
	if err := d.Set(&Status{PDA: true}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("got %v", err)
	}
	if len(f.ops) != 0 {
		t.Fatal("read-only register written")
	}
}

func TestTransportErrorWrapped(t *testing.T) {
	d, f := newFakeDev()
	nack := errors.New("nack")
	f.readErr = nack
	_, err := d.IDGet()
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("got %T %v", err, err)
	}
	if te.Op != "read" || te.Reg != RegWhoAmI || !errors.Is(err, nack) {
		t.Fatalf("got %+v", te)
	}

	f.readErr = nil
	f.writeErr = nack
	err = d.AhQvarDisable()
	if !errors.As(err, &te) || te.Op != "write" || te.Reg != RegAnalogHubDisable {
		t.Fatalf("got %v", err)
	}
}

func TestDataGet(t *testing.T) {
	tests := []struct {
		name  string
		md    Md
		press []byte
		temp  []byte
		want  Data
	}{
		{
			name:  "full scale 1260",
			press: []byte{0x30, 0xEC, 0x01},
			temp:  []byte{0xC4, 0x09},
			want:  Data{Pressure: Pressure{HPa: 1260, Raw: 126000}, Heat: Heat{DegC: 25, Raw: 2500}},
		},
		{
			name:  "zero",
			press: []byte{0x00, 0x00, 0x00},
			temp:  []byte{0x00, 0x00},
			want:  Data{},
		},
		{
			name:  "negative code",
			press: []byte{0xFF, 0xFF, 0xFF},
			temp:  []byte{0x18, 0xFC},
			want:  Data{Pressure: Pressure{HPa: FromFs1260ToHPa(-1), Raw: -1}, Heat: Heat{DegC: -10, Raw: -1000}},
		},
		{
			name:  "full scale 4060",
			md:    Md{Fs: Fs4060hPa},
			press: []byte{0xA0, 0x86, 0x01},
			temp:  []byte{0xC4, 0x09},
			want:  Data{Pressure: Pressure{HPa: 2000, Raw: 100000}, Heat: Heat{DegC: 25, Raw: 2500}},
		},
		{
			name:  "interleaved pressure entry",
			md:    Md{InterleavedMode: true},
			press: []byte{0x30, 0xEC, 0x01},
			temp:  []byte{0xC4, 0x09},
			want:  Data{Pressure: Pressure{HPa: 1260, Raw: 126000}, Heat: Heat{DegC: 25, Raw: 2500}},
		},
		{
			name:  "interleaved auxiliary entry",
			md:    Md{InterleavedMode: true},
			press: []byte{0x31, 0x00, 0x00},
			temp:  []byte{0xC4, 0x09},
			want:  Data{Pressure: Pressure{Raw: 0x31}, Heat: Heat{DegC: 25, Raw: 2500}, AhQvar: AhQvar{LSB: 0x31}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, f := newFakeDev()
			copy(f.regs[RegPressOutXL:], tt.press)
			copy(f.regs[RegTempOutL:], tt.temp)
			got, err := d.DataGet(&tt.md)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
			if len(f.ops) != 1 || f.ops[0].reg != uint8(RegPressOutXL) || f.ops[0].n != 5 {
				t.Fatalf("ops = %+v, want one 5-byte read", f.ops)
			}
		})
	}
}

func TestAhQvarDataGet(t *testing.T) {
	d, f := newFakeDev()
	// 438000 = 0x06AEF0
	copy(f.regs[RegPressOutXL:], []byte{0xF0, 0xAE, 0x06})
	got, err := d.AhQvarDataGet()
	if err != nil {
		t.Fatal(err)
	}
	if got.LSB != 438000 || got.MV != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestAhQvarEnable(t *testing.T) {
	d, f := newFakeDev()
	f.regs[RegAnalogHubDisable] = 0xAA
	if err := d.AhQvarDisable(); err != nil {
		t.Fatal(err)
	}
	if f.regs[RegAnalogHubDisable] != 0 {
		t.Fatalf("0x5F = 0x%02X", f.regs[RegAnalogHubDisable])
	}
	if err := d.AhQvarEnSet(true); err != nil {
		t.Fatal(err)
	}
	on, err := d.AhQvarEnGet()
	if err != nil || !on {
		t.Fatalf("AhQvarEnGet = %v, %v", on, err)
	}
}

func TestTriggerSw(t *testing.T) {
	d, f := newFakeDev()
	if err := d.TriggerSw(&Md{Odr: Odr10Hz}); err != nil {
		t.Fatal(err)
	}
	if len(f.ops) != 0 {
		t.Fatal("continuous mode triggered a conversion")
	}
	if err := d.TriggerSw(&Md{Odr: OneShot}); err != nil {
		t.Fatal(err)
	}
	var c2 CtrlReg2
	if err := d.Get(&c2); err != nil {
		t.Fatal(err)
	}
	if !c2.OneShot {
		t.Fatal("ONESHOT not set")
	}
	s, err := d.StatusGet()
	if err != nil {
		t.Fatal(err)
	}
	if s.EndMeas {
		t.Fatal("EndMeas reported while one-shot pending")
	}
}

func TestPinConfRoundTrip(t *testing.T) {
	for _, pc := range []PinConf{{}, {SdaPullUp: true}, {CsPullUp: true}, {SdaPullUp: true, CsPullUp: true}} {
		d, _ := newFakeDev()
		if err := d.PinConfSet(&pc); err != nil {
			t.Fatal(err)
		}
		got, err := d.PinConfGet()
		if err != nil {
			t.Fatal(err)
		}
		if got != pc {
			t.Errorf("got %+v want %+v", got, pc)
		}
	}
}

func TestIntOnThreshold(t *testing.T) {
	d, _ := newFakeDev()
	want := IntThMd{Threshold: 0x1234, OverTh: true}
	if err := d.IntOnThresholdModeSet(&want); err != nil {
		t.Fatal(err)
	}
	got, err := d.IntOnThresholdModeGet()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if err := d.IntOnThresholdModeSet(&IntThMd{Threshold: 0x8000}); !errors.Is(err, ErrInvalidThreshold) {
		t.Fatalf("got %v", err)
	}
	if err := d.IntLatchSet(true); err != nil {
		t.Fatal(err)
	}
	var ic InterruptCfg
	if err := d.Get(&ic); err != nil {
		t.Fatal(err)
	}
	if !ic.LIR || !ic.PHE {
		t.Fatalf("got %+v", ic)
	}
}

func TestReferenceModeRoundTrip(t *testing.T) {
	for apply := OutAndInterrupt; apply <= RstRefs; apply++ {
		for _, get := range []bool{false, true} {
			rm := RefMd{ApplyRef: apply, GetRef: get}
			d, _ := newFakeDev()
			if err := d.ReferenceModeSet(&rm); err != nil {
				t.Fatal(err)
			}
			got, err := d.ReferenceModeGet()
			if err != nil {
				t.Fatal(err)
			}
			if got != rm {
				t.Errorf("got %+v want %+v", got, rm)
			}
		}
	}
}

func TestRefPressureGet(t *testing.T) {
	d, f := newFakeDev()
	copy(f.regs[RegRefPL:], []byte{0x38, 0xFF})
	got, err := d.RefPressureGet()
	if err != nil {
		t.Fatal(err)
	}
	if got != -200 {
		t.Fatalf("got %d", got)
	}
	if err := d.Set(&RefP{RefP: 5}); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("got %v", err)
	}
}
