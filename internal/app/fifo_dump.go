// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/relabs-tech/baro_computer/internal/env"
	"github.com/relabs-tech/baro_computer/internal/sensors"
)

// fifoSummary aggregates one FIFO capture.
type fifoSummary struct {
	Pressure int
	Qvar     int
	MinHPa   float64
	MaxHPa   float64
	MeanHPa  float64
}

func summarizeFIFO(samples []env.Sample) fifoSummary {
	sum := fifoSummary{MinHPa: math.Inf(1), MaxHPa: math.Inf(-1)}
	var total float64
	for _, s := range samples {
		if s.IsQvar() {
			sum.Qvar++
			continue
		}
		sum.Pressure++
		total += s.PressureHPa
		sum.MinHPa = math.Min(sum.MinHPa, s.PressureHPa)
		sum.MaxHPa = math.Max(sum.MaxHPa, s.PressureHPa)
	}
	if sum.Pressure == 0 {
		sum.MinHPa, sum.MaxHPa = 0, 0
		return sum
	}
	sum.MeanHPa = total / float64(sum.Pressure)
	return sum
}

func writeFIFODump(w io.Writer, samples []env.Sample) {
	for i, s := range samples {
		if s.IsQvar() {
			fmt.Fprintf(w, "%3d  qvar  %10.4f mV  lsb=%d\n", i, s.QvarMV, s.QvarLSB)
			continue
		}
		fmt.Fprintf(w, "%3d  press %10.2f hPa raw=%d\n", i, s.PressureHPa, s.PressureRaw)
	}
	sum := summarizeFIFO(samples)
	fmt.Fprintf(w, "%d pressure, %d qvar entries", sum.Pressure, sum.Qvar)
	if sum.Pressure > 0 {
		fmt.Fprintf(w, "; min %.2f max %.2f mean %.2f hPa", sum.MinHPa, sum.MaxHPa, sum.MeanHPa)
	}
	fmt.Fprintln(w)
}

// RunFIFODump waits for the FIFO watermark (or a full FIFO), drains it once
// and prints every entry to out.
func RunFIFODump(out io.Writer, timeout time.Duration) error {
	mgr := sensors.GetBaroManager()
	if err := mgr.Init(); err != nil {
		return fmt.Errorf("barometer init: %w", err)
	}
	defer mgr.Close()

	if !mgr.FIFOEnabled() {
		return errors.New("BARO_FIFO_MODE is bypass; nothing is buffered")
	}
	_, fifo := mgr.Mode()
	log.Printf("fifo_dump: waiting for %s watermark %d", fifo.Operation, fifo.Watermark)

	deadline := time.Now().Add(timeout)
	for {
		src, err := mgr.Sources()
		if err != nil {
			return err
		}
		if src.FifoTh || src.FifoFull {
			if src.FifoOvr {
				log.Println("fifo_dump: FIFO overrun, oldest entries were lost")
			}
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no watermark within %s (level %d)", timeout, src.FifoLevel)
		}
		time.Sleep(10 * time.Millisecond)
	}

	samples, err := mgr.ReadFIFO()
	if err != nil {
		return err
	}
	writeFIFODump(out, samples)
	return nil
}
