// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/baro_computer/internal/config"
	"github.com/relabs-tech/baro_computer/internal/env"
)

const (
	displayW = 128
	displayH = 64
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	pressure     env.Sample // last pressure sample, temperature included
	havePressure bool
	qvar         env.Sample
	haveQvar     bool
}

func (d *DisplayData) update(s env.Sample) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s.IsQvar() {
		d.qvar, d.haveQvar = s, true
		return
	}
	// FIFO entries have no temperature; keep the last one seen.
	if s.Source == "fifo" && d.havePressure {
		s.Temperature = d.pressure.Temperature
	}
	d.pressure, d.havePressure = s, true
}

func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	if err := dev.Draw(dev.Bounds(), renderSplash(), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTTBroker)

	err = subscribeJSON(client, cfg.TopicBaro, data.update, func(err error) {
		log.Printf("display: unmarshal error: %v", err)
	})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for now := range ticker.C {
		data.mu.RLock()
		img := renderBaro(data.pressure, data.havePressure, data.qvar, data.haveQvar, now)
		data.mu.RUnlock()

		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

// canvas is a blank frame with a text drawer on it.
func canvas() (*image1bit.VerticalLSB, *font.Drawer) {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayW, displayH))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	return img, drawer
}

func drawLine(d *font.Drawer, x, y int, s string) {
	d.Dot = fixed.P(x, y)
	d.DrawString(s)
}

func renderSplash() *image1bit.VerticalLSB {
	img, d := canvas()
	drawLine(d, 22, 26, "Baro Station")
	drawLine(d, 29, 43, "ILPS22QS")
	return img
}

func renderBaro(p env.Sample, haveP bool, q env.Sample, haveQ bool, now time.Time) *image1bit.VerticalLSB {
	img, d := canvas()
	if !haveP && !haveQ {
		drawLine(d, 0, 26, "Barometer")
		drawLine(d, 0, 39, "Waiting...")
		return img
	}

	if haveP {
		pressure := physic.Pressure(p.PressureHPa * 100 * float64(physic.Pascal))
		drawLine(d, 0, 13, fmt.Sprintf("P: %.2f hPa", p.PressureHPa))
		drawLine(d, 0, 26, fmt.Sprintf("   %s", pressure))
		drawLine(d, 0, 39, fmt.Sprintf("T: %.2f C", p.Temperature))
	}
	if haveQ {
		drawLine(d, 0, 52, fmt.Sprintf("Q: %.3f mV", q.QvarMV))
	} else if haveP {
		drawLine(d, 0, 52, humanize.RelTime(p.Time, now, "ago", "ahead"))
	}
	return img
}
