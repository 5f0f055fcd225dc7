// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import "fmt"

// Md is the operating mode. The driver only reads it.
type Md struct {
	InterleavedMode bool
	Fs              Fs
	Odr             Odr
	Avg             Avg
	Lpf             Lpf
}

// BusMode is the serial interface selection.
type BusMode struct {
	Interface Interface
	Filter    Filter
}

// Stat is the device state reported by StatusGet.
type Stat struct {
	SwReset  bool // software reset in progress
	Boot     bool // boot in progress
	DrdyPres bool
	DrdyTemp bool
	OvrPres  bool
	OvrTemp  bool
	EndMeas  bool // one-shot measurement complete
	RefDone  bool // AUTOZERO reference captured
}

// AllSources aggregates every interrupt and status flag.
type AllSources struct {
	DrdyPres   bool
	DrdyTemp   bool
	OverPres   bool
	UnderPres  bool
	ThrsldPres bool
	FifoFull   bool
	FifoOvr    bool
	FifoTh     bool
}

// PinConf is the pad pull-up configuration.
type PinConf struct {
	SdaPullUp bool
	CsPullUp  bool
}

// IntThMd configures the pressure threshold interrupt.
type IntThMd struct {
	Threshold uint16 // 15 bits
	OverTh    bool
	UnderTh   bool
}

// RefMd configures AUTOZERO/AUTOREFP.
type RefMd struct {
	ApplyRef ApplyRef
	GetRef   bool
}

// IDGet returns the content of WHO_AM_I. Compare it with ID.
func (d *Dev) IDGet() (uint8, error) {
	var w WhoAmI
	if err := d.Get(&w); err != nil {
		return 0, err
	}
	return w.ID, nil
}

// InitSet runs an initialization action. Reset and Boot return as soon as
// the command is written; poll StatusGet until SwReset or Boot clears.
func (d *Dev) InitSet(val Init) error {
	switch val {
	case Reset:
		var c2 CtrlReg2
		return d.modify(&c2, func() { c2.SwReset = true })
	case Boot:
		var c2 CtrlReg2
		return d.modify(&c2, func() { c2.Boot = true })
	case DrvRdy:
		var c2 CtrlReg2
		if err := d.modify(&c2, func() { c2.BDU = true }); err != nil {
			return err
		}
		var c3 CtrlReg3
		return d.modify(&c3, func() { c3.IfAddInc = true })
	}
	return fmt.Errorf("%w: Init 0x%02X", ErrInvalidEnumValue, uint8(val))
}

// StatusGet reports reset, boot, data-ready and overrun state. It reads
// INT_SOURCE, which clears latched interrupt flags.
func (d *Dev) StatusGet() (Stat, error) {
	var (
		c2  CtrlReg2
		ic  InterruptCfg
		is  IntSource
		st  Status
		out Stat
	)
	for _, r := range []Register{&c2, &ic, &is, &st} {
		if err := d.Get(r); err != nil {
			return out, err
		}
	}
	out.SwReset = c2.SwReset
	out.Boot = is.BootOn
	out.DrdyPres = st.PDA
	out.DrdyTemp = st.TDA
	out.OvrPres = st.POR
	out.OvrTemp = st.TOR
	out.EndMeas = !c2.OneShot
	out.RefDone = !ic.Autozero
	return out, nil
}

// AllSourcesGet reads every flag register. It reads INT_SOURCE, which
// clears latched interrupt flags.
func (d *Dev) AllSourcesGet() (AllSources, error) {
	var (
		is  IntSource
		fs2 FifoStatus2
		st  Status
		out AllSources
	)
	for _, r := range []Register{&is, &fs2, &st} {
		if err := d.Get(r); err != nil {
			return out, err
		}
	}
	out.DrdyPres = st.PDA
	out.DrdyTemp = st.TDA
	out.OverPres = is.PH
	out.UnderPres = is.PL
	out.ThrsldPres = is.IA
	out.FifoFull = fs2.FifoFullIA
	out.FifoOvr = fs2.FifoOvrIA
	out.FifoTh = fs2.FifoWtmIA
	return out, nil
}

// BusModeSet selects the serial interface and the antispike filter.
func (d *Dev) BusModeSet(val *BusMode) error {
	if _, err := InterfaceFromBits(uint8(val.Interface)); err != nil {
		return err
	}
	if _, err := FilterFromBits(uint8(val.Filter)); err != nil {
		return err
	}
	var ifc IfCtrl
	err := d.modify(&ifc, func() {
		ifc.I2CI3CDisable = val.Interface&0x02 != 0
		ifc.EnSPIRead = val.Interface&0x01 != 0
	})
	if err != nil {
		return err
	}
	var i3c I3cIfCtrl
	return d.modify(&i3c, func() { i3c.AsfOn = val.Filter&0x01 != 0 })
}

// BusModeGet reads back the interface selection.
func (d *Dev) BusModeGet() (BusMode, error) {
	var (
		ifc IfCtrl
		i3c I3cIfCtrl
		out BusMode
	)
	if err := d.Get(&ifc); err != nil {
		return out, err
	}
	if err := d.Get(&i3c); err != nil {
		return out, err
	}
	iface, err := InterfaceFromBits(uint8(bit(ifc.I2CI3CDisable)<<1 | bit(ifc.EnSPIRead)))
	if err != nil {
		return out, err
	}
	out.Interface = iface
	out.Filter, _ = FilterFromBits(uint8(bit(i3c.AsfOn)))
	return out, nil
}

func (md *Md) validate() error {
	if _, err := FsFromBits(uint8(md.Fs)); err != nil {
		return err
	}
	if _, err := OdrFromBits(uint8(md.Odr)); err != nil {
		return err
	}
	if _, err := AvgFromBits(uint8(md.Avg)); err != nil {
		return err
	}
	_, err := LpfFromBits(uint8(md.Lpf))
	return err
}

// ModeSet writes the output data rate, averaging, filter, full scale and
// interleaving settings.
func (d *Dev) ModeSet(md *Md) error {
	if err := md.validate(); err != nil {
		return err
	}
	var c1 CtrlReg1
	err := d.modify(&c1, func() {
		c1.Odr = uint8(md.Odr)
		c1.Avg = uint8(md.Avg)
	})
	if err != nil {
		return err
	}
	var c2 CtrlReg2
	err = d.modify(&c2, func() {
		c2.EnLPFP = md.Lpf&0x01 != 0
		c2.LPFPCfg = md.Lpf&0x02 != 0
		c2.FSMode = uint8(md.Fs)
	})
	if err != nil {
		return err
	}
	var c3 CtrlReg3
	if err := d.modify(&c3, func() { c3.AhQvarPAutoEn = md.InterleavedMode }); err != nil {
		return err
	}
	var fc FifoCtrl
	return d.modify(&fc, func() { fc.AhQvarPFifoEn = md.InterleavedMode })
}

// ModeGet reads back the operating mode. Register contents that do not map
// to a known setting fail with ErrInvalidEnumValue.
func (d *Dev) ModeGet() (Md, error) {
	var (
		c1  CtrlReg1
		c2  CtrlReg2
		c3  CtrlReg3
		out Md
		err error
	)
	for _, r := range []Register{&c1, &c2, &c3} {
		if err := d.Get(r); err != nil {
			return out, err
		}
	}
	if out.Fs, err = FsFromBits(c2.FSMode); err != nil {
		return Md{}, err
	}
	if out.Odr, err = OdrFromBits(c1.Odr); err != nil {
		return Md{}, err
	}
	if out.Avg, err = AvgFromBits(c1.Avg); err != nil {
		return Md{}, err
	}
	if out.Lpf, err = LpfFromBits(uint8(bit(c2.LPFPCfg)<<1 | bit(c2.EnLPFP))); err != nil {
		return Md{}, err
	}
	out.InterleavedMode = c3.AhQvarPAutoEn
	return out, nil
}

// TriggerSw starts a one-shot conversion. It does nothing unless md selects
// OneShot.
func (d *Dev) TriggerSw(md *Md) error {
	if md.Odr != OneShot {
		return nil
	}
	var c2 CtrlReg2
	return d.modify(&c2, func() { c2.OneShot = true })
}

// AhQvarEnSet turns the AH/QVAR channel on or off.
func (d *Dev) AhQvarEnSet(on bool) error {
	var c3 CtrlReg3
	return d.modify(&c3, func() { c3.AhQvarEn = on })
}

// AhQvarEnGet reports whether the AH/QVAR channel is on.
func (d *Dev) AhQvarEnGet() (bool, error) {
	var c3 CtrlReg3
	err := d.Get(&c3)
	return c3.AhQvarEn, err
}

// AhQvarDisable disconnects the analog hub. It must be issued before
// enabling AH/QVAR after a reset.
func (d *Dev) AhQvarDisable() error {
	return d.WriteRaw(RegAnalogHubDisable, []byte{0x00})
}

// PinConfSet configures the SDA and CS pull-ups.
func (d *Dev) PinConfSet(val *PinConf) error {
	var ifc IfCtrl
	return d.modify(&ifc, func() {
		ifc.SdaPuEn = val.SdaPullUp
		ifc.CsPuDis = !val.CsPullUp
	})
}

// PinConfGet reads back the pull-up configuration.
func (d *Dev) PinConfGet() (PinConf, error) {
	var ifc IfCtrl
	if err := d.Get(&ifc); err != nil {
		return PinConf{}, err
	}
	return PinConf{SdaPullUp: ifc.SdaPuEn, CsPullUp: !ifc.CsPuDis}, nil
}

// IntOnThresholdModeSet configures the pressure threshold interrupt.
func (d *Dev) IntOnThresholdModeSet(val *IntThMd) error {
	if val.Threshold > 0x7FFF {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, val.Threshold)
	}
	var ic InterruptCfg
	err := d.modify(&ic, func() {
		ic.PHE = val.OverTh
		ic.PLE = val.UnderTh
	})
	if err != nil {
		return err
	}
	return d.Set(&ThsP{Ths: val.Threshold})
}

// IntOnThresholdModeGet reads back the threshold interrupt configuration.
func (d *Dev) IntOnThresholdModeGet() (IntThMd, error) {
	var (
		ic InterruptCfg
		th ThsP
	)
	if err := d.Get(&ic); err != nil {
		return IntThMd{}, err
	}
	if err := d.Get(&th); err != nil {
		return IntThMd{}, err
	}
	return IntThMd{Threshold: th.Ths, OverTh: ic.PHE, UnderTh: ic.PLE}, nil
}

// IntLatchSet latches threshold events in INT_SOURCE until it is read.
func (d *Dev) IntLatchSet(on bool) error {
	var ic InterruptCfg
	return d.modify(&ic, func() { ic.LIR = on })
}

// ReferenceModeSet configures AUTOZERO and AUTOREFP.
func (d *Dev) ReferenceModeSet(val *RefMd) error {
	if _, err := ApplyRefFromBits(uint8(val.ApplyRef)); err != nil {
		return err
	}
	var ic InterruptCfg
	return d.modify(&ic, func() {
		ic.Autozero = val.GetRef
		ic.AutoRefP = val.ApplyRef&0x01 != 0
		ic.ResetAZ = val.ApplyRef&0x02 != 0
		ic.ResetARP = val.ApplyRef&0x02 != 0
	})
}

// ReferenceModeGet reads back the reference configuration.
func (d *Dev) ReferenceModeGet() (RefMd, error) {
	var ic InterruptCfg
	if err := d.Get(&ic); err != nil {
		return RefMd{}, err
	}
	apply, err := ApplyRefFromBits(uint8(bit(ic.ResetAZ)<<1 | bit(ic.AutoRefP)))
	if err != nil {
		return RefMd{}, err
	}
	return RefMd{ApplyRef: apply, GetRef: ic.Autozero}, nil
}

// RefPressureGet returns the captured reference pressure code.
func (d *Dev) RefPressureGet() (int16, error) {
	var r RefP
	err := d.Get(&r)
	return r.RefP, err
}

// OpcSet writes the one-point calibration offset.
func (d *Dev) OpcSet(val int16) error {
	return d.Set(&Rpds{Rpds: val})
}

// OpcGet reads the one-point calibration offset.
func (d *Dev) OpcGet() (int16, error) {
	var r Rpds
	err := d.Get(&r)
	return r.Rpds, err
}
