// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/baro_computer/internal/config"
	"github.com/relabs-tech/baro_computer/internal/env"
	"github.com/relabs-tech/baro_computer/internal/ilps22qs"
)

// regFile is a flat register file. CTRL_REG2 self-clearing bits drop on
// every write unless stuckReset is set. With latchInt, reading INT_SOURCE
// clears it as the device does in latched mode.
type regFile struct {
	regs       [0x80]byte
	written    []uint8
	stuckReset bool
	latchInt   bool
}

func newRegFile() *regFile {
	f := &regFile{}
	f.regs[ilps22qs.RegWhoAmI] = ilps22qs.ID
	return f
}

func (f *regFile) ReadRegs(reg uint8, b []byte) error {
	copy(b, f.regs[reg:])
	is := uint8(ilps22qs.RegIntSource)
	if f.latchInt && reg <= is && int(is) < int(reg)+len(b) {
		f.regs[is] = 0
	}
	return nil
}

func (f *regFile) WriteRegs(reg uint8, b []byte) error {
	f.written = append(f.written, reg)
	copy(f.regs[reg:], b)
	l := new(ilps22qs.CtrlReg2).Layout()
	drop := maskOf(l, "ONESHOT") | maskOf(l, "BOOT")
	if !f.stuckReset {
		drop |= maskOf(l, "SWRESET")
	}
	f.regs[ilps22qs.RegCtrlReg2] &^= drop
	return nil
}

func maskOf(l *ilps22qs.Layout, name string) byte {
	for i, f := range l.Fields {
		if f.Name == name {
			return byte(((1 << f.Width) - 1) << l.Offset(i))
		}
	}
	panic("no field " + name)
}

func testConfig() *config.Config {
	return &config.Config{
		BaroBus:           "i2c",
		BaroFS:            1,
		BaroODR:           4,
		BaroAvg:           2,
		BaroLPF:           3,
		BaroFIFOMode:      2,
		BaroFIFOWatermark: 32,
		BaroOPC:           -120,
		BaroResetTimeout:  10,
		BaroCSPullUp:      true,
	}
}

func newTestManager(t *testing.T, f *regFile, cfg *config.Config) *BaroManager {
	t.Helper()
	dev := ilps22qs.New(f, &ilps22qs.Opts{Delay: func(time.Duration) {}})
	return newBaroManager(dev, cfg)
}

func TestConfigure(t *testing.T) {
	f := newRegFile()
	m := newTestManager(t, f, testConfig())
	if err := m.configure(); err != nil {
		t.Fatal(err)
	}

	md, err := m.dev.ModeGet()
	if err != nil {
		t.Fatal(err)
	}
	want := ilps22qs.Md{Fs: ilps22qs.Fs4060hPa, Odr: ilps22qs.Odr25Hz, Avg: ilps22qs.Avg16, Lpf: ilps22qs.LpfOdrDiv9}
	if md != want {
		t.Fatalf("ModeGet = %+v, want %+v", md, want)
	}
	fifo, err := m.dev.FifoModeGet()
	if err != nil {
		t.Fatal(err)
	}
	if fifo.Operation != ilps22qs.Stream || fifo.Watermark != 32 {
		t.Fatalf("FifoModeGet = %+v", fifo)
	}
	if opc, _ := m.dev.OpcGet(); opc != -120 {
		t.Fatalf("OpcGet = %d", opc)
	}
	if !m.FIFOEnabled() {
		t.Fatal("FIFOEnabled = false")
	}

	// Analog hub disable precedes every mode write.
	hub := -1
	for i, r := range f.written {
		if r == uint8(ilps22qs.RegAnalogHubDisable) {
			hub = i
			break
		}
	}
	if hub < 0 {
		t.Fatal("analog hub never disabled")
	}
	for _, r := range f.written[:hub] {
		if r == uint8(ilps22qs.RegCtrlReg1) {
			t.Fatal("CTRL_REG1 written before analog hub disable")
		}
	}
}

func TestConfigureWrongID(t *testing.T) {
	f := newRegFile()
	f.regs[ilps22qs.RegWhoAmI] = 0xB1
	m := newTestManager(t, f, testConfig())
	err := m.configure()
	if err == nil || !strings.Contains(err.Error(), "WHO_AM_I") {
		t.Fatalf("got %v", err)
	}
	if len(f.written) != 0 {
		t.Fatalf("writes after bad ID: %v", f.written)
	}
}

func TestConfigureResetTimeout(t *testing.T) {
	f := newRegFile()
	f.stuckReset = true
	m := newTestManager(t, f, testConfig())
	err := m.configure()
	if err == nil || !strings.Contains(err.Error(), "did not complete") {
		t.Fatalf("got %v", err)
	}
}

func TestConfigureInvalidMode(t *testing.T) {
	cfg := testConfig()
	cfg.BaroLPF = 2
	m := newTestManager(t, newRegFile(), cfg)
	if err := m.configure(); !errors.Is(err, ilps22qs.ErrInvalidEnumValue) {
		t.Fatalf("got %v", err)
	}
}

func TestReadSample(t *testing.T) {
	f := newRegFile()
	cfg := testConfig()
	cfg.BaroFS = 0
	m := newTestManager(t, f, cfg)
	if err := m.configure(); err != nil {
		t.Fatal(err)
	}
	// 126000 LSB and 2500 LSB.
	copy(f.regs[ilps22qs.RegPressOutXL:], []byte{0x30, 0xEC, 0x01, 0xC4, 0x09})

	s, err := m.ReadSample()
	if err != nil {
		t.Fatal(err)
	}
	if s.Source != "data" || s.PressureHPa != 1260 || s.Temperature != 25 || s.PressureRaw != 126000 {
		t.Fatalf("got %+v", s)
	}
	if s.IsQvar() {
		t.Fatal("IsQvar = true")
	}
}

func TestReadSampleQvarOnly(t *testing.T) {
	f := newRegFile()
	cfg := testConfig()
	cfg.BaroQvarEnable = true
	m := newTestManager(t, f, cfg)
	if err := m.configure(); err != nil {
		t.Fatal(err)
	}
	// 438000 LSB is 1 mV.
	copy(f.regs[ilps22qs.RegPressOutXL:], []byte{0xF0, 0xAE, 0x06})

	s, err := m.ReadSample()
	if err != nil {
		t.Fatal(err)
	}
	if !s.IsQvar() || s.QvarMV != 1 || s.PressureHPa != 0 {
		t.Fatalf("got %+v", s)
	}

	// A zero reading is still an AH/QVAR sample.
	copy(f.regs[ilps22qs.RegPressOutXL:], []byte{0, 0, 0})
	s, err = m.ReadSample()
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind != env.KindQvar || !s.IsQvar() || s.QvarLSB != 0 {
		t.Fatalf("zero reading: %+v", s)
	}
}

func TestReadSampleOneShot(t *testing.T) {
	f := newRegFile()
	cfg := testConfig()
	cfg.BaroODR = 0
	m := newTestManager(t, f, cfg)
	if err := m.configure(); err != nil {
		t.Fatal(err)
	}
	f.written = nil
	if _, err := m.ReadSample(); err != nil {
		t.Fatal(err)
	}
	if len(f.written) == 0 || f.written[0] != uint8(ilps22qs.RegCtrlReg2) {
		t.Fatalf("one-shot not triggered: %v", f.written)
	}
}

func TestReadSampleOneShotKeepsLatchedEvents(t *testing.T) {
	f := newRegFile()
	cfg := testConfig()
	cfg.BaroODR = 0
	m := newTestManager(t, f, cfg)
	if err := m.configure(); err != nil {
		t.Fatal(err)
	}
	is := new(ilps22qs.IntSource).Layout()
	f.latchInt = true
	f.regs[ilps22qs.RegIntSource] = maskOf(is, "PH") | maskOf(is, "IA")

	if _, err := m.ReadSample(); err != nil {
		t.Fatal(err)
	}
	src, err := m.Sources()
	if err != nil {
		t.Fatal(err)
	}
	if !src.OverPres || !src.ThrsldPres || src.UnderPres {
		t.Fatalf("latched event lost: %+v", src)
	}

	// Consumed once.
	if src, _ = m.Sources(); src.OverPres || src.ThrsldPres {
		t.Fatalf("event reported twice: %+v", src)
	}
}

func TestReadFIFO(t *testing.T) {
	f := newRegFile()
	cfg := testConfig()
	cfg.BaroFS = 0
	m := newTestManager(t, f, cfg)
	if err := m.configure(); err != nil {
		t.Fatal(err)
	}

	got, err := m.ReadFIFO()
	if err != nil || got != nil {
		t.Fatalf("empty fifo: %v %v", got, err)
	}

	f.regs[ilps22qs.RegFifoStatus1] = 3
	copy(f.regs[ilps22qs.RegFifoDataOutPressXL:], []byte{0x10, 0x27, 0x00}) // 10000 LSB
	got, err = m.ReadFIFO()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	for _, s := range got {
		if s.Source != "fifo" || s.Kind != env.KindPressure || s.PressureHPa != 100 {
			t.Fatalf("got %+v", s)
		}
	}
}

func TestSources(t *testing.T) {
	f := newRegFile()
	m := newTestManager(t, f, testConfig())
	if err := m.configure(); err != nil {
		t.Fatal(err)
	}
	st := new(ilps22qs.Status).Layout()
	f.regs[ilps22qs.RegStatus] = maskOf(st, "P_DA")
	f.regs[ilps22qs.RegFifoStatus1] = 7

	src, err := m.Sources()
	if err != nil {
		t.Fatal(err)
	}
	if !src.DrdyPres || src.DrdyTemp || src.FifoLevel != 7 {
		t.Fatalf("got %+v", src)
	}
}

func TestRegisterAccess(t *testing.T) {
	f := newRegFile()
	m := newTestManager(t, f, testConfig())

	if v, err := m.ReadRegister(byte(ilps22qs.RegWhoAmI)); err != nil || v != ilps22qs.ID {
		t.Fatalf("ReadRegister = 0x%02X, %v", v, err)
	}
	if err := m.WriteRegister(byte(ilps22qs.RegWhoAmI), 0x00); !errors.Is(err, ilps22qs.ErrReadOnly) {
		t.Fatalf("WHO_AM_I write: %v", err)
	}
	if err := m.WriteRegister(0x40, 0x00); err == nil {
		t.Fatal("unmapped write accepted")
	}
	if err := m.WriteRegister(byte(ilps22qs.RegRpdsH), 0x12); err != nil {
		t.Fatal(err)
	}
	if f.regs[ilps22qs.RegRpdsH] != 0x12 {
		t.Fatalf("RPDS_H = 0x%02X", f.regs[ilps22qs.RegRpdsH])
	}

	all, err := m.ReadAllRegisters()
	if err != nil {
		t.Fatal(err)
	}
	if all[byte(ilps22qs.RegWhoAmI)] != ilps22qs.ID || all[byte(ilps22qs.RegRpdsH)] != 0x12 {
		t.Fatalf("ReadAllRegisters = %v", all)
	}
	if _, ok := all[byte(ilps22qs.RegFifoDataOutPressXL)]; ok {
		t.Fatal("FIFO output read by ReadAllRegisters")
	}

	exp, err := m.ExportRegisterConfig()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := exp[byte(ilps22qs.RegWhoAmI)]; ok {
		t.Fatal("read-only register exported")
	}
	if _, ok := exp[byte(ilps22qs.RegCtrlReg1)]; !ok {
		t.Fatal("CTRL_REG1 not exported")
	}
}

func TestWriteRegisterKeepsReservedBits(t *testing.T) {
	f := newRegFile()
	m := newTestManager(t, f, testConfig())
	l := new(ilps22qs.CtrlReg1).Layout()
	owned := maskOf(l, "AVG") | maskOf(l, "ODR")

	if err := m.WriteRegister(byte(ilps22qs.RegCtrlReg1), 0xFF); err != nil {
		t.Fatal(err)
	}
	if got := f.regs[ilps22qs.RegCtrlReg1]; got != owned {
		t.Fatalf("CTRL_REG1 = 0x%02X, want 0x%02X", got, owned)
	}

	f.regs[ilps22qs.RegCtrlReg1] = ^owned
	if err := m.WriteRegister(byte(ilps22qs.RegCtrlReg1), 0x00); err != nil {
		t.Fatal(err)
	}
	if got := f.regs[ilps22qs.RegCtrlReg1]; got != ^owned {
		t.Fatalf("reserved bits cleared: CTRL_REG1 = 0x%02X", got)
	}
}

func TestNotInitialized(t *testing.T) {
	m := &BaroManager{}
	if _, err := m.ReadSample(); err == nil {
		t.Fatal("expected error")
	}
	if err := m.Reinitialize(); err == nil {
		t.Fatal("expected error")
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
}
