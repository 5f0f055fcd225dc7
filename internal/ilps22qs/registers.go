// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ilps22qs

import "fmt"

// Reg is a register address.
type Reg uint8

const (
	RegInterruptCfg       Reg = 0x0B
	RegThsPL              Reg = 0x0C
	RegThsPH              Reg = 0x0D
	RegIfCtrl             Reg = 0x0E
	RegWhoAmI             Reg = 0x0F
	RegCtrlReg1           Reg = 0x10
	RegCtrlReg2           Reg = 0x11
	RegCtrlReg3           Reg = 0x12
	RegFifoCtrl           Reg = 0x14
	RegFifoWtm            Reg = 0x15
	RegRefPL              Reg = 0x16
	RegRefPH              Reg = 0x17
	RegI3cIfCtrl          Reg = 0x19
	RegRpdsL              Reg = 0x1A
	RegRpdsH              Reg = 0x1B
	RegIntSource          Reg = 0x24
	RegFifoStatus1        Reg = 0x25
	RegFifoStatus2        Reg = 0x26
	RegStatus             Reg = 0x27
	RegPressOutXL         Reg = 0x28
	RegPressOutL          Reg = 0x29
	RegPressOutH          Reg = 0x2A
	RegTempOutL           Reg = 0x2B
	RegTempOutH           Reg = 0x2C
	RegAnalogHubDisable   Reg = 0x5F
	RegFifoDataOutPressXL Reg = 0x78
	RegFifoDataOutPressL  Reg = 0x79
	RegFifoDataOutPressH  Reg = 0x7A
)

var regNames = map[Reg]string{
	RegInterruptCfg:       "INTERRUPT_CFG",
	RegThsPL:              "THS_P_L",
	RegThsPH:              "THS_P_H",
	RegIfCtrl:             "IF_CTRL",
	RegWhoAmI:             "WHO_AM_I",
	RegCtrlReg1:           "CTRL_REG1",
	RegCtrlReg2:           "CTRL_REG2",
	RegCtrlReg3:           "CTRL_REG3",
	RegFifoCtrl:           "FIFO_CTRL",
	RegFifoWtm:            "FIFO_WTM",
	RegRefPL:              "REF_P_L",
	RegRefPH:              "REF_P_H",
	RegI3cIfCtrl:          "I3C_IF_CTRL",
	RegRpdsL:              "RPDS_L",
	RegRpdsH:              "RPDS_H",
	RegIntSource:          "INT_SOURCE",
	RegFifoStatus1:        "FIFO_STATUS1",
	RegFifoStatus2:        "FIFO_STATUS2",
	RegStatus:             "STATUS",
	RegPressOutXL:         "PRESS_OUT_XL",
	RegPressOutL:          "PRESS_OUT_L",
	RegPressOutH:          "PRESS_OUT_H",
	RegTempOutL:           "TEMP_OUT_L",
	RegTempOutH:           "TEMP_OUT_H",
	RegAnalogHubDisable:   "ANALOGIC_HUB_DISABLE",
	RegFifoDataOutPressXL: "FIFO_DATA_OUT_PRESS_XL",
	RegFifoDataOutPressL:  "FIFO_DATA_OUT_PRESS_L",
	RegFifoDataOutPressH:  "FIFO_DATA_OUT_PRESS_H",
}

func (r Reg) String() string {
	if n, ok := regNames[r]; ok {
		return n
	}
	return fmt.Sprintf("REG_0x%02X", uint8(r))
}

// Register is implemented by the typed register values below. Pass a pointer
// to Dev.Get or Dev.Set.
type Register interface {
	Layout() *Layout
	pack() []uint32
	unpack(v []uint32)
}

var (
	interruptCfgLayout = newLayout(RegInterruptCfg, "INTERRUPT_CFG", 1,
		"Interrupt mode for pressure acquisition",
		rw("PHE", 1, "Interrupt on pressure high event"),
		rw("PLE", 1, "Interrupt on pressure low event"),
		rw("LIR", 1, "Latch interrupt request to INT_SOURCE"),
		reserved(1),
		rw("RESET_AZ", 1, "Reset AUTOZERO function"),
		rw("AUTOZERO", 1, "Enable AUTOZERO function"),
		rw("RESET_ARP", 1, "Reset AUTOREFP function"),
		rw("AUTOREFP", 1, "Enable AUTOREFP function"),
	)
	thsPLayout = newLayout(RegThsPL, "THS_P", 2,
		"User-defined threshold for the pressure interrupt event",
		rw("THS", 15, "Threshold, unsigned, in the active full-scale units"),
		reserved(1),
	)
	ifCtrlLayout = newLayout(RegIfCtrl, "IF_CTRL", 1,
		"Interface control",
		reserved(1),
		rw("CS_PU_DIS", 1, "Disable pull-up on CS pin"),
		reserved(2),
		rw("SDA_PU_EN", 1, "Enable pull-up on SDA pin"),
		rw("EN_SPI_READ", 1, "Enable SPI read mode (3-wire)"),
		rw("I2C_I3C_DIS", 1, "Disable I2C and I3C digital interfaces"),
		reserved(1),
	)
	whoAmILayout = newLayout(RegWhoAmI, "WHO_AM_I", 1,
		"Device identification, fixed at 0xB4",
		ro("ID", 8, "Device identifier"),
	)
	ctrlReg1Layout = newLayout(RegCtrlReg1, "CTRL_REG1", 1,
		"Output data rate and averaging",
		rw("AVG", 3, "Averaging selection"),
		rw("ODR", 4, "Output data rate selection"),
		reserved(1),
	)
	ctrlReg2Layout = newLayout(RegCtrlReg2, "CTRL_REG2", 1,
		"Conversion, reset and filter control",
		rw("ONESHOT", 1, "Trigger a one-shot measurement"),
		reserved(1),
		rw("SWRESET", 1, "Software reset, self-clearing"),
		rw("BDU", 1, "Block data update"),
		rw("EN_LPFP", 1, "Enable low-pass filter on pressure"),
		rw("LFPF_CFG", 1, "Low-pass filter bandwidth: 0=ODR/4, 1=ODR/9"),
		rw("FS_MODE", 1, "Full scale: 0=1260 hPa, 1=4060 hPa"),
		rw("BOOT", 1, "Reboot memory content, self-clearing"),
	)
	ctrlReg3Layout = newLayout(RegCtrlReg3, "CTRL_REG3", 1,
		"Interface and AH/QVAR control",
		rw("IF_ADD_INC", 1, "Register address auto-increment on multi-byte access"),
		reserved(4),
		rw("AH_QVAR_P_AUTO_EN", 1, "Interleave AH/QVAR and pressure samples"),
		reserved(1),
		rw("AH_QVAR_EN", 1, "Enable AH/QVAR channel"),
	)
	fifoCtrlLayout = newLayout(RegFifoCtrl, "FIFO_CTRL", 1,
		"FIFO mode selection",
		rw("F_MODE", 2, "FIFO mode"),
		rw("TRIG_MODES", 1, "Enable triggered FIFO modes"),
		rw("STOP_ON_WTM", 1, "Limit FIFO depth to the watermark"),
		rw("AH_QVAR_P_FIFO_EN", 1, "Store interleaved AH/QVAR samples in FIFO"),
		reserved(3),
	)
	fifoWtmLayout = newLayout(RegFifoWtm, "FIFO_WTM", 1,
		"FIFO watermark level",
		rw("WTM", 7, "Watermark level, 0..127"),
		reserved(1),
	)
	refPLayout = newLayout(RegRefPL, "REF_P", 2,
		"Reference pressure captured by AUTOZERO/AUTOREFP",
		Field{Name: "REFP", Width: 16, Access: RO, Signed: true, Description: "Reference pressure, two's complement"},
	)
	i3cIfCtrlLayout = newLayout(RegI3cIfCtrl, "I3C_IF_CTRL", 1,
		"I3C interface control",
		reserved(5),
		rw("ASF_ON", 1, "Antispike filter always on"),
		reserved(2),
	)
	rpdsLayout = newLayout(RegRpdsL, "RPDS", 2,
		"Pressure offset for one-point calibration after soldering",
		Field{Name: "RPDS", Width: 16, Access: RW, Signed: true, Description: "Offset, two's complement"},
	)
	intSourceLayout = newLayout(RegIntSource, "INT_SOURCE", 1,
		"Interrupt source, cleared on read when latched",
		ro("PH", 1, "Differential pressure high"),
		ro("PL", 1, "Differential pressure low"),
		ro("IA", 1, "Interrupt active"),
		reserved(4),
		ro("BOOT_ON", 1, "Boot phase running"),
	)
	fifoStatus1Layout = newLayout(RegFifoStatus1, "FIFO_STATUS1", 1,
		"FIFO stored data level",
		ro("FSS", 8, "Number of unread samples, 0..128"),
	)
	fifoStatus2Layout = newLayout(RegFifoStatus2, "FIFO_STATUS2", 1,
		"FIFO flags",
		reserved(5),
		ro("FIFO_FULL_IA", 1, "FIFO full"),
		ro("FIFO_OVR_IA", 1, "FIFO overrun"),
		ro("FIFO_WTM_IA", 1, "FIFO watermark reached"),
	)
	statusLayout = newLayout(RegStatus, "STATUS", 1,
		"Data ready and overrun flags",
		ro("P_DA", 1, "Pressure data available"),
		ro("T_DA", 1, "Temperature data available"),
		reserved(2),
		ro("P_OR", 1, "Pressure data overrun"),
		ro("T_OR", 1, "Temperature data overrun"),
		reserved(2),
	)
	pressOutLayout = newLayout(RegPressOutXL, "PRESS_OUT", 3,
		"Pressure (or AH/QVAR) output, 24-bit two's complement",
		Field{Name: "POUT", Width: 24, Access: RO, Signed: true, Description: "Pressure output code"},
	)
	tempOutLayout = newLayout(RegTempOutL, "TEMP_OUT", 2,
		"Temperature output, 16-bit two's complement",
		Field{Name: "TOUT", Width: 16, Access: RO, Signed: true, Description: "Temperature output code"},
	)
	fifoDataOutPressLayout = newLayout(RegFifoDataOutPressXL, "FIFO_DATA_OUT_PRESS", 3,
		"Oldest FIFO entry, 24-bit two's complement",
		Field{Name: "FIFO_P", Width: 24, Access: RO, Signed: true, Description: "FIFO pressure output code"},
	)
)

// Layouts returns every register layout in address order.
func Layouts() []*Layout {
	return []*Layout{
		interruptCfgLayout, thsPLayout, ifCtrlLayout, whoAmILayout,
		ctrlReg1Layout, ctrlReg2Layout, ctrlReg3Layout, fifoCtrlLayout,
		fifoWtmLayout, refPLayout, i3cIfCtrlLayout, rpdsLayout,
		intSourceLayout, fifoStatus1Layout, fifoStatus2Layout, statusLayout,
		pressOutLayout, tempOutLayout, fifoDataOutPressLayout,
	}
}

// InterruptCfg is INTERRUPT_CFG (0x0B).
type InterruptCfg struct {
	PHE, PLE, LIR      bool
	ResetAZ, Autozero  bool
	ResetARP, AutoRefP bool
}

func (*InterruptCfg) Layout() *Layout { return interruptCfgLayout }

func (r *InterruptCfg) pack() []uint32 {
	return []uint32{bit(r.PHE), bit(r.PLE), bit(r.LIR), 0,
		bit(r.ResetAZ), bit(r.Autozero), bit(r.ResetARP), bit(r.AutoRefP)}
}

func (r *InterruptCfg) unpack(v []uint32) {
	r.PHE, r.PLE, r.LIR = v[0] != 0, v[1] != 0, v[2] != 0
	r.ResetAZ, r.Autozero = v[4] != 0, v[5] != 0
	r.ResetARP, r.AutoRefP = v[6] != 0, v[7] != 0
}

// ThsP is THS_P_L/THS_P_H (0x0C-0x0D).
type ThsP struct {
	Ths uint16
}

func (*ThsP) Layout() *Layout     { return thsPLayout }
func (r *ThsP) pack() []uint32    { return []uint32{uint32(r.Ths), 0} }
func (r *ThsP) unpack(v []uint32) { r.Ths = uint16(v[0]) }

// IfCtrl is IF_CTRL (0x0E).
type IfCtrl struct {
	CsPuDis, SdaPuEn         bool
	EnSPIRead, I2CI3CDisable bool
}

func (*IfCtrl) Layout() *Layout { return ifCtrlLayout }

func (r *IfCtrl) pack() []uint32 {
	return []uint32{0, bit(r.CsPuDis), 0, bit(r.SdaPuEn), bit(r.EnSPIRead), bit(r.I2CI3CDisable), 0}
}

func (r *IfCtrl) unpack(v []uint32) {
	r.CsPuDis, r.SdaPuEn = v[1] != 0, v[3] != 0
	r.EnSPIRead, r.I2CI3CDisable = v[4] != 0, v[5] != 0
}

// WhoAmI is WHO_AM_I (0x0F).
type WhoAmI struct {
	ID uint8
}

func (*WhoAmI) Layout() *Layout     { return whoAmILayout }
func (r *WhoAmI) pack() []uint32    { return []uint32{uint32(r.ID)} }
func (r *WhoAmI) unpack(v []uint32) { r.ID = uint8(v[0]) }

// CtrlReg1 is CTRL_REG1 (0x10).
type CtrlReg1 struct {
	Avg uint8
	Odr uint8
}

func (*CtrlReg1) Layout() *Layout     { return ctrlReg1Layout }
func (r *CtrlReg1) pack() []uint32    { return []uint32{uint32(r.Avg), uint32(r.Odr), 0} }
func (r *CtrlReg1) unpack(v []uint32) { r.Avg, r.Odr = uint8(v[0]), uint8(v[1]) }

// CtrlReg2 is CTRL_REG2 (0x11).
type CtrlReg2 struct {
	OneShot, SwReset, BDU bool
	EnLPFP, LPFPCfg       bool
	FSMode                uint8
	Boot                  bool
}

func (*CtrlReg2) Layout() *Layout { return ctrlReg2Layout }

func (r *CtrlReg2) pack() []uint32 {
	return []uint32{bit(r.OneShot), 0, bit(r.SwReset), bit(r.BDU),
		bit(r.EnLPFP), bit(r.LPFPCfg), uint32(r.FSMode), bit(r.Boot)}
}

func (r *CtrlReg2) unpack(v []uint32) {
	r.OneShot, r.SwReset, r.BDU = v[0] != 0, v[2] != 0, v[3] != 0
	r.EnLPFP, r.LPFPCfg = v[4] != 0, v[5] != 0
	r.FSMode, r.Boot = uint8(v[6]), v[7] != 0
}

// CtrlReg3 is CTRL_REG3 (0x12).
type CtrlReg3 struct {
	IfAddInc      bool
	AhQvarPAutoEn bool
	AhQvarEn      bool
}

func (*CtrlReg3) Layout() *Layout { return ctrlReg3Layout }

func (r *CtrlReg3) pack() []uint32 {
	return []uint32{bit(r.IfAddInc), 0, bit(r.AhQvarPAutoEn), 0, bit(r.AhQvarEn)}
}

func (r *CtrlReg3) unpack(v []uint32) {
	r.IfAddInc, r.AhQvarPAutoEn, r.AhQvarEn = v[0] != 0, v[2] != 0, v[4] != 0
}

// FifoCtrl is FIFO_CTRL (0x14).
type FifoCtrl struct {
	FMode         uint8
	TrigModes     bool
	StopOnWtm     bool
	AhQvarPFifoEn bool
}

func (*FifoCtrl) Layout() *Layout { return fifoCtrlLayout }

func (r *FifoCtrl) pack() []uint32 {
	return []uint32{uint32(r.FMode), bit(r.TrigModes), bit(r.StopOnWtm), bit(r.AhQvarPFifoEn), 0}
}

func (r *FifoCtrl) unpack(v []uint32) {
	r.FMode, r.TrigModes = uint8(v[0]), v[1] != 0
	r.StopOnWtm, r.AhQvarPFifoEn = v[2] != 0, v[3] != 0
}

// FifoWtm is FIFO_WTM (0x15).
type FifoWtm struct {
	Wtm uint8
}

func (*FifoWtm) Layout() *Layout     { return fifoWtmLayout }
func (r *FifoWtm) pack() []uint32    { return []uint32{uint32(r.Wtm), 0} }
func (r *FifoWtm) unpack(v []uint32) { r.Wtm = uint8(v[0]) }

// RefP is REF_P_L/REF_P_H (0x16-0x17).
type RefP struct {
	RefP int16
}

func (*RefP) Layout() *Layout     { return refPLayout }
func (r *RefP) pack() []uint32    { return []uint32{uint32(uint16(r.RefP))} }
func (r *RefP) unpack(v []uint32) { r.RefP = int16(SignExtend(v[0], 16)) }

// I3cIfCtrl is I3C_IF_CTRL (0x19).
type I3cIfCtrl struct {
	AsfOn bool
}

func (*I3cIfCtrl) Layout() *Layout     { return i3cIfCtrlLayout }
func (r *I3cIfCtrl) pack() []uint32    { return []uint32{0, bit(r.AsfOn), 0} }
func (r *I3cIfCtrl) unpack(v []uint32) { r.AsfOn = v[1] != 0 }

// Rpds is RPDS_L/RPDS_H (0x1A-0x1B).
type Rpds struct {
	Rpds int16
}

func (*Rpds) Layout() *Layout     { return rpdsLayout }
func (r *Rpds) pack() []uint32    { return []uint32{uint32(uint16(r.Rpds))} }
func (r *Rpds) unpack(v []uint32) { r.Rpds = int16(SignExtend(v[0], 16)) }

// IntSource is INT_SOURCE (0x24). Reading it clears latched flags.
type IntSource struct {
	PH, PL, IA bool
	BootOn     bool
}

func (*IntSource) Layout() *Layout { return intSourceLayout }

func (r *IntSource) pack() []uint32 {
	return []uint32{bit(r.PH), bit(r.PL), bit(r.IA), 0, bit(r.BootOn)}
}

func (r *IntSource) unpack(v []uint32) {
	r.PH, r.PL, r.IA, r.BootOn = v[0] != 0, v[1] != 0, v[2] != 0, v[4] != 0
}

// FifoStatus1 is FIFO_STATUS1 (0x25).
type FifoStatus1 struct {
	Fss uint8
}

func (*FifoStatus1) Layout() *Layout     { return fifoStatus1Layout }
func (r *FifoStatus1) pack() []uint32    { return []uint32{uint32(r.Fss)} }
func (r *FifoStatus1) unpack(v []uint32) { r.Fss = uint8(v[0]) }

// FifoStatus2 is FIFO_STATUS2 (0x26).
type FifoStatus2 struct {
	FifoFullIA bool
	FifoOvrIA  bool
	FifoWtmIA  bool
}

func (*FifoStatus2) Layout() *Layout { return fifoStatus2Layout }

func (r *FifoStatus2) pack() []uint32 {
	return []uint32{0, bit(r.FifoFullIA), bit(r.FifoOvrIA), bit(r.FifoWtmIA)}
}

func (r *FifoStatus2) unpack(v []uint32) {
	r.FifoFullIA, r.FifoOvrIA, r.FifoWtmIA = v[1] != 0, v[2] != 0, v[3] != 0
}

// Status is STATUS (0x27).
type Status struct {
	PDA, TDA bool
	POR, TOR bool
}

func (*Status) Layout() *Layout { return statusLayout }

func (r *Status) pack() []uint32 {
	return []uint32{bit(r.PDA), bit(r.TDA), 0, bit(r.POR), bit(r.TOR), 0}
}

func (r *Status) unpack(v []uint32) {
	r.PDA, r.TDA, r.POR, r.TOR = v[0] != 0, v[1] != 0, v[3] != 0, v[4] != 0
}

// PressOut is PRESS_OUT_XL/L/H (0x28-0x2A).
type PressOut struct {
	Pout int32
}

func (*PressOut) Layout() *Layout     { return pressOutLayout }
func (r *PressOut) pack() []uint32    { return []uint32{uint32(r.Pout) & 0xFFFFFF} }
func (r *PressOut) unpack(v []uint32) { r.Pout = SignExtend(v[0], 24) }

// TempOut is TEMP_OUT_L/H (0x2B-0x2C).
type TempOut struct {
	Tout int16
}

func (*TempOut) Layout() *Layout     { return tempOutLayout }
func (r *TempOut) pack() []uint32    { return []uint32{uint32(uint16(r.Tout))} }
func (r *TempOut) unpack(v []uint32) { r.Tout = int16(SignExtend(v[0], 16)) }

// FifoDataOutPress is FIFO_DATA_OUT_PRESS_XL/L/H (0x78-0x7A). Each read pops
// one entry.
type FifoDataOutPress struct {
	FifoP int32
}

func (*FifoDataOutPress) Layout() *Layout     { return fifoDataOutPressLayout }
func (r *FifoDataOutPress) pack() []uint32    { return []uint32{uint32(r.FifoP) & 0xFFFFFF} }
func (r *FifoDataOutPress) unpack(v []uint32) { r.FifoP = SignExtend(v[0], 24) }
