// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/baro_computer/internal/config"
	"github.com/relabs-tech/baro_computer/internal/env"
	"github.com/relabs-tech/baro_computer/internal/sensors"
)

// baroReader is the part of sensors.BaroManager the producer loop needs.
type baroReader interface {
	FIFOEnabled() bool
	ReadSample() (env.Sample, error)
	ReadFIFO() ([]env.Sample, error)
	Sources() (env.Sources, error)
}

// RunBaroProducer initializes the barometer and publishes every sample on
// TOPIC_BARO and the flag snapshot on TOPIC_BARO_SOURCES.
func RunBaroProducer() error {
	log.Println("starting barometer producer")

	cfg := config.Get()

	mgr := sensors.GetBaroManager()
	if err := mgr.Init(); err != nil {
		return fmt.Errorf("barometer init: %w", err)
	}
	defer mgr.Close()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	log.Println("producer: connected to MQTT, starting publish loop")

	pub := func(topic string, v any) error { return publishJSON(client, topic, v) }

	ticker := time.NewTicker(time.Duration(cfg.BaroSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		n, err := produceTick(mgr, cfg, pub)
		if err != nil {
			log.Printf("producer: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("%s tick: published %d sample(s)", t.Format(time.RFC3339), n)
		}
	}
	return nil
}

// produceTick reads whatever is ready and publishes it. It returns the
// number of samples published.
func produceTick(r baroReader, cfg *config.Config, pub func(topic string, v any) error) (int, error) {
	src, err := r.Sources()
	if err != nil {
		return 0, err
	}
	if err := pub(cfg.TopicBaroSources, src); err != nil {
		return 0, err
	}

	var samples []env.Sample
	if r.FIFOEnabled() {
		// Drain on watermark or full so stream mode never overruns.
		if !src.FifoTh && !src.FifoFull {
			return 0, nil
		}
		if samples, err = r.ReadFIFO(); err != nil {
			return 0, err
		}
	} else {
		s, err := r.ReadSample()
		if err != nil {
			return 0, err
		}
		samples = []env.Sample{s}
	}

	for i, s := range samples {
		if err := pub(cfg.TopicBaro, s); err != nil {
			return i, err
		}
	}
	return len(samples), nil
}
