// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/relabs-tech/baro_computer/internal/config"
	"github.com/relabs-tech/baro_computer/internal/env"
	"github.com/relabs-tech/baro_computer/internal/ilps22qs"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// oneShotPolls bounds the wait for a one-shot conversion, in 1 ms steps.
const oneShotPolls = 1000

// BaroManager owns the barometer and serializes access to it. The
// producer, the register debugger and the FIFO dump all go through it.
type BaroManager struct {
	mu     sync.Mutex
	cfg    *config.Config
	dev    *ilps22qs.Dev
	bus    io.Closer
	md     ilps22qs.Md
	fifo   ilps22qs.FifoMd
	inited bool
}

var (
	baroManager     *BaroManager
	baroManagerOnce sync.Once
)

// GetBaroManager returns the process-wide barometer manager.
func GetBaroManager() *BaroManager {
	baroManagerOnce.Do(func() {
		baroManager = &BaroManager{}
	})
	return baroManager
}

func newBaroManager(dev *ilps22qs.Dev, cfg *config.Config) *BaroManager {
	return &BaroManager{dev: dev, cfg: cfg}
}

// Init opens the configured bus and runs the device initialization
// sequence. Calling it again after success is a no-op.
func (m *BaroManager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inited {
		return nil
	}

	cfg := config.Get()
	if cfg == nil {
		return errors.New("baro: config not initialized")
	}
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("baro: periph host init: %w", err)
	}

	switch cfg.BaroBus {
	case "spi":
		port, err := spireg.Open(cfg.BaroSPIDevice)
		if err != nil {
			return fmt.Errorf("baro: SPI open (%s): %w", cfg.BaroSPIDevice, err)
		}
		opts := ilps22qs.DefaultOpts
		opts.SPIFreq = physic.Frequency(cfg.BaroSPISpeedHz) * physic.Hertz
		dev, err := ilps22qs.NewSPI(port, &opts)
		if err != nil {
			port.Close()
			return fmt.Errorf("baro: SPI device: %w", err)
		}
		m.dev, m.bus = dev, port
	default:
		bus, err := i2creg.Open(cfg.BaroI2CBus)
		if err != nil {
			return fmt.Errorf("baro: I2C open (%q): %w", cfg.BaroI2CBus, err)
		}
		dev, err := ilps22qs.NewI2C(bus, cfg.BaroI2CAddr, &ilps22qs.DefaultOpts)
		if err != nil {
			bus.Close()
			return fmt.Errorf("baro: I2C device: %w", err)
		}
		m.dev, m.bus = dev, bus
	}
	m.cfg = cfg

	if err := m.configure(); err != nil {
		return err
	}
	m.inited = true
	return nil
}

// modeFromConfig turns the raw config selectors into driver settings.
func modeFromConfig(cfg *config.Config) (ilps22qs.Md, ilps22qs.FifoMd, error) {
	var (
		md   ilps22qs.Md
		fifo ilps22qs.FifoMd
		err  error
	)
	if md.Fs, err = ilps22qs.FsFromBits(cfg.BaroFS); err != nil {
		return md, fifo, err
	}
	// BARO_ODR 0..8 maps onto the ODR field directly.
	if md.Odr, err = ilps22qs.OdrFromBits(cfg.BaroODR); err != nil {
		return md, fifo, err
	}
	if md.Avg, err = ilps22qs.AvgFromBits(cfg.BaroAvg); err != nil {
		return md, fifo, err
	}
	if md.Lpf, err = ilps22qs.LpfFromBits(cfg.BaroLPF); err != nil {
		return md, fifo, err
	}
	md.InterleavedMode = cfg.BaroInterleaved

	if fifo.Operation, err = ilps22qs.OperationFromBits(cfg.BaroFIFOMode); err != nil {
		return md, fifo, err
	}
	fifo.Watermark = cfg.BaroFIFOWatermark
	return md, fifo, nil
}

// configure runs reset, bus, mode and FIFO setup. Caller holds m.mu.
func (m *BaroManager) configure() error {
	cfg := m.cfg
	md, fifo, err := modeFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("baro: %w", err)
	}

	id, err := m.dev.IDGet()
	if err != nil {
		return fmt.Errorf("baro: read WHO_AM_I: %w", err)
	}
	if id != ilps22qs.ID {
		return fmt.Errorf("baro: unexpected WHO_AM_I 0x%02X (want 0x%02X)", id, ilps22qs.ID)
	}

	if err := m.dev.InitSet(ilps22qs.Reset); err != nil {
		return fmt.Errorf("baro: reset: %w", err)
	}
	if err := m.waitReset(cfg.BaroResetTimeout); err != nil {
		return err
	}

	// The analog hub must be disconnected before AH/QVAR is touched.
	if err := m.dev.AhQvarDisable(); err != nil {
		return fmt.Errorf("baro: analog hub disable: %w", err)
	}
	if cfg.BaroQvarEnable {
		if err := m.dev.AhQvarEnSet(true); err != nil {
			return fmt.Errorf("baro: AH/QVAR enable: %w", err)
		}
	}

	if err := m.dev.InitSet(ilps22qs.DrvRdy); err != nil {
		return fmt.Errorf("baro: driver ready: %w", err)
	}

	bus := ilps22qs.BusMode{Interface: ilps22qs.SelByHw, Filter: ilps22qs.FilterAuto}
	if cfg.BaroAntiSpike {
		bus.Filter = ilps22qs.FilterAlwaysOn
	}
	if err := m.dev.BusModeSet(&bus); err != nil {
		return fmt.Errorf("baro: bus mode: %w", err)
	}
	pins := ilps22qs.PinConf{SdaPullUp: cfg.BaroSDAPullUp, CsPullUp: cfg.BaroCSPullUp}
	if err := m.dev.PinConfSet(&pins); err != nil {
		return fmt.Errorf("baro: pin config: %w", err)
	}
	if err := m.dev.OpcSet(cfg.BaroOPC); err != nil {
		return fmt.Errorf("baro: one-point calibration: %w", err)
	}

	if err := m.dev.ModeSet(&md); err != nil {
		return fmt.Errorf("baro: mode: %w", err)
	}
	if err := m.dev.FifoModeSet(&fifo); err != nil {
		return fmt.Errorf("baro: fifo mode: %w", err)
	}
	m.md, m.fifo = md, fifo

	log.Printf("baro: %s configured: %s, %s, %s, lpf %s, fifo %s (wtm %d)",
		m.dev, md.Fs, md.Odr, md.Avg, md.Lpf, fifo.Operation, fifo.Watermark)
	return nil
}

func (m *BaroManager) waitReset(timeoutMs int) error {
	for i := 0; i <= timeoutMs; i++ {
		st, err := m.dev.StatusGet()
		if err != nil {
			return fmt.Errorf("baro: reset status: %w", err)
		}
		if !st.SwReset {
			return nil
		}
		m.dev.DelayMs(1)
	}
	return fmt.Errorf("baro: software reset did not complete within %d ms", timeoutMs)
}

// Reinitialize reruns the initialization sequence on the open device.
func (m *BaroManager) Reinitialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return errors.New("baro: not initialized")
	}
	return m.configure()
}

// Mode returns the operating mode applied by the last initialization.
func (m *BaroManager) Mode() (ilps22qs.Md, ilps22qs.FifoMd) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.md, m.fifo
}

// FIFOEnabled reports whether samples are buffered by the device FIFO.
func (m *BaroManager) FIFOEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fifo.Operation != ilps22qs.Bypass
}

// ReadSample reads one measurement. In one-shot mode a conversion is
// triggered first.
func (m *BaroManager) ReadSample() (env.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return env.Sample{}, errors.New("baro: not initialized")
	}

	if m.md.Odr == ilps22qs.OneShot {
		if err := m.dev.TriggerSw(&m.md); err != nil {
			return env.Sample{}, fmt.Errorf("baro: trigger: %w", err)
		}
		if err := m.waitOneShot(); err != nil {
			return env.Sample{}, err
		}
	}

	// With AH/QVAR on and no interleaving the output registers hold only
	// the auxiliary channel.
	if m.cfg.BaroQvarEnable && !m.md.InterleavedMode {
		q, err := m.dev.AhQvarDataGet()
		if err != nil {
			return env.Sample{}, fmt.Errorf("baro: AH/QVAR read: %w", err)
		}
		return env.Sample{
			Source:  "data",
			Kind:    env.KindQvar,
			Time:    time.Now(),
			QvarLSB: q.LSB,
			QvarMV:  float64(q.MV),
		}, nil
	}

	data, err := m.dev.DataGet(&m.md)
	if err != nil {
		return env.Sample{}, fmt.Errorf("baro: data read: %w", err)
	}
	return sampleFromData(&data, time.Now()), nil
}

// waitOneShot polls CTRL_REG2 only. StatusGet would also read INT_SOURCE
// and clear latched threshold events before Sources sees them.
func (m *BaroManager) waitOneShot() error {
	var c2 ilps22qs.CtrlReg2
	for i := 0; i < oneShotPolls; i++ {
		if err := m.dev.Get(&c2); err != nil {
			return fmt.Errorf("baro: one-shot status: %w", err)
		}
		if !c2.OneShot {
			return nil
		}
		m.dev.DelayMs(1)
	}
	return errors.New("baro: one-shot conversion timed out")
}

func sampleFromData(d *ilps22qs.Data, t time.Time) env.Sample {
	s := env.Sample{
		Source:      "data",
		Time:        t,
		Temperature: float64(d.Heat.DegC),
		PressureRaw: d.Pressure.Raw,
	}
	if d.AhQvar.LSB != 0 {
		s.Kind = env.KindQvar
		s.QvarLSB = d.AhQvar.LSB
		s.QvarMV = float64(ilps22qs.FromLSBToMV(d.AhQvar.LSB))
	} else {
		s.Kind = env.KindPressure
		s.PressureHPa = float64(d.Pressure.HPa)
	}
	return s
}

// ReadFIFO drains every entry currently stored in the FIFO, oldest first.
func (m *BaroManager) ReadFIFO() ([]env.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil, errors.New("baro: not initialized")
	}

	level, err := m.dev.FifoLevelGet()
	if err != nil {
		return nil, fmt.Errorf("baro: fifo level: %w", err)
	}
	if level == 0 {
		return nil, nil
	}
	buf := make([]ilps22qs.FifoData, level)
	if err := m.dev.FifoDataGet(level, &m.md, buf); err != nil {
		return nil, fmt.Errorf("baro: fifo read: %w", err)
	}

	now := time.Now()
	out := make([]env.Sample, len(buf))
	for i, e := range buf {
		out[i] = env.Sample{Source: "fifo", Time: now, PressureRaw: e.Raw}
		if e.LSB != 0 {
			out[i].Kind = env.KindQvar
			out[i].QvarLSB = e.LSB
			out[i].QvarMV = float64(ilps22qs.FromLSBToMV(e.LSB))
		} else {
			out[i].Kind = env.KindPressure
			out[i].PressureHPa = float64(e.HPa)
		}
	}
	return out, nil
}

// Sources reads all interrupt and FIFO flags plus the FIFO level. Latched
// interrupt flags are cleared by the read.
func (m *BaroManager) Sources() (env.Sources, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return env.Sources{}, errors.New("baro: not initialized")
	}

	src, err := m.dev.AllSourcesGet()
	if err != nil {
		return env.Sources{}, fmt.Errorf("baro: sources: %w", err)
	}
	level, err := m.dev.FifoLevelGet()
	if err != nil {
		return env.Sources{}, fmt.Errorf("baro: fifo level: %w", err)
	}
	return env.Sources{
		Time:       time.Now(),
		DrdyPres:   src.DrdyPres,
		DrdyTemp:   src.DrdyTemp,
		OverPres:   src.OverPres,
		UnderPres:  src.UnderPres,
		ThrsldPres: src.ThrsldPres,
		FifoFull:   src.FifoFull,
		FifoOvr:    src.FifoOvr,
		FifoTh:     src.FifoTh,
		FifoLevel:  level,
	}, nil
}

// ReadRegister reads a single register byte.
func (m *BaroManager) ReadRegister(addr byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return 0, errors.New("baro: not initialized")
	}
	var b [1]byte
	if err := m.dev.ReadRaw(ilps22qs.Reg(addr), b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteRegister writes a single register byte. Only registers with at least
// one writable field are accepted, and only their writable bits change.
func (m *BaroManager) WriteRegister(addr, value byte) error {
	l := layoutAt(addr)
	if l == nil {
		return fmt.Errorf("baro: register 0x%02X is not mapped", addr)
	}
	if !l.Writable() {
		return fmt.Errorf("baro: register 0x%02X: %w", addr, ilps22qs.ErrReadOnly)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return errors.New("baro: not initialized")
	}

	// Merge through the layout so reserved and read-only bits keep the
	// device's current value.
	off := int(addr - byte(l.Reg))
	prev := make([]byte, l.Size)
	if l.HasReadOnly() {
		if err := m.dev.ReadRaw(l.Reg, prev); err != nil {
			return err
		}
	}
	next := append([]byte(nil), prev...)
	next[off] = value
	merged := l.Encode(l.Decode(next), prev)
	return m.dev.WriteRaw(ilps22qs.Reg(addr), merged[off:off+1])
}

// ReadAllRegisters reads every mapped register except the FIFO output,
// which would pop an entry. INT_SOURCE is included and is cleared by the
// read when latched.
func (m *BaroManager) ReadAllRegisters() (map[byte]byte, error) {
	return m.readLayouts(func(l *ilps22qs.Layout) bool {
		return l.Reg != ilps22qs.RegFifoDataOutPressXL
	})
}

// ExportRegisterConfig reads back the writable registers, which is enough
// to restore the device configuration.
func (m *BaroManager) ExportRegisterConfig() (map[byte]byte, error) {
	return m.readLayouts((*ilps22qs.Layout).Writable)
}

func (m *BaroManager) readLayouts(keep func(*ilps22qs.Layout) bool) (map[byte]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dev == nil {
		return nil, errors.New("baro: not initialized")
	}

	out := make(map[byte]byte)
	for _, l := range ilps22qs.Layouts() {
		if !keep(l) {
			continue
		}
		buf := make([]byte, l.Size)
		if err := m.dev.ReadRaw(l.Reg, buf); err != nil {
			return nil, err
		}
		for i, b := range buf {
			out[byte(l.Reg)+byte(i)] = b
		}
	}
	return out, nil
}

// GetRegisterMap returns the register metadata for the debugger.
func (m *BaroManager) GetRegisterMap() []RegisterInfo {
	return BaroRegisterMap()
}

// Close releases the bus. The manager can be initialized again afterwards.
func (m *BaroManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	if m.bus != nil {
		err = m.bus.Close()
	}
	m.dev, m.bus, m.inited = nil, nil, false
	return err
}
