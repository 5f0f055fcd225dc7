// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/relabs-tech/baro_computer/internal/config"
	"github.com/relabs-tech/baro_computer/internal/env"
)

// RunConsoleMQTT prints every barometer sample and flag snapshot, plus a
// periodic summary line.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	var (
		mu    sync.Mutex
		count uint64
		last  env.Sample
	)
	onErr := func(err error) { log.Printf("console: unmarshal error: %v", err) }

	err = subscribeJSON(client, cfg.TopicBaro, func(s env.Sample) {
		mu.Lock()
		count++
		last = s
		mu.Unlock()
		fmt.Println(formatSample(s))
	}, onErr)
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicBaro)

	err = subscribeJSON(client, cfg.TopicBaroSources, func(s env.Sources) {
		if line := formatSources(s); line != "" {
			fmt.Println(line)
		}
	}, onErr)
	if err != nil {
		return err
	}
	log.Printf("console: subscribed to %s", cfg.TopicBaroSources)

	ticker := time.NewTicker(time.Duration(cfg.ConsoleLogInterval) * time.Millisecond)
	defer ticker.Stop()

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case now := <-ticker.C:
			mu.Lock()
			line := formatSummary(count, last, now)
			mu.Unlock()
			fmt.Println(line)
		case <-sigCh:
			log.Println("console: shutting down")
			client.Disconnect(250)
			return nil
		}
	}
}

func formatSample(s env.Sample) string {
	tag := "[BARO]"
	if s.Source == "fifo" {
		tag = "[FIFO]"
	}
	if s.IsQvar() {
		return fmt.Sprintf("%s QVAR=%9.4f mV  lsb=%d", tag, s.QvarMV, s.QvarLSB)
	}
	return fmt.Sprintf("%s P=%8.2f hPa  T=%6.2f°C  raw=%d", tag, s.PressureHPa, s.Temperature, s.PressureRaw)
}

// formatSources returns an empty string when no event flag is set.
func formatSources(s env.Sources) string {
	var flags []string
	for _, f := range []struct {
		set  bool
		name string
	}{
		{s.OverPres, "over"},
		{s.UnderPres, "under"},
		{s.ThrsldPres, "threshold"},
		{s.FifoFull, "fifo-full"},
		{s.FifoOvr, "fifo-ovr"},
		{s.FifoTh, "fifo-wtm"},
	} {
		if f.set {
			flags = append(flags, f.name)
		}
	}
	if len(flags) == 0 {
		return ""
	}
	return fmt.Sprintf("[SRC ] %v level=%d", flags, s.FifoLevel)
}

func formatSummary(count uint64, last env.Sample, now time.Time) string {
	if count == 0 {
		return "[STAT] no samples yet"
	}
	return fmt.Sprintf("[STAT] %s samples, last %s",
		humanize.Comma(int64(count)), humanize.RelTime(last.Time, now, "ago", "from now"))
}
