// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/relabs-tech/baro_computer/internal/env"
)

type baroMetrics struct {
	pressure    prometheus.Gauge
	temperature prometheus.Gauge
	qvar        prometheus.Gauge
	fifoLevel   prometheus.Gauge
	samples     *prometheus.CounterVec
	events      *prometheus.CounterVec
}

func newBaroMetrics(reg prometheus.Registerer) *baroMetrics {
	m := &baroMetrics{
		pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "baro_pressure_hpa",
			Help: "Last pressure reading in hPa.",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "baro_temperature_celsius",
			Help: "Last temperature reading in degrees Celsius.",
		}),
		qvar: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "baro_qvar_millivolts",
			Help: "Last AH/QVAR reading in mV.",
		}),
		fifoLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "baro_fifo_level",
			Help: "Unread FIFO entries at the last flag snapshot.",
		}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baro_samples_total",
			Help: "Samples received, by source and kind.",
		}, []string{"source", "kind"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "baro_events_total",
			Help: "Interrupt and FIFO flags seen set.",
		}, []string{"flag"}),
	}
	reg.MustRegister(m.pressure, m.temperature, m.qvar, m.fifoLevel, m.samples, m.events)
	return m
}

func (m *baroMetrics) observeSample(s env.Sample) {
	if s.IsQvar() {
		m.qvar.Set(s.QvarMV)
		m.samples.With(prometheus.Labels{"source": s.Source, "kind": "qvar"}).Inc()
		return
	}
	m.pressure.Set(s.PressureHPa)
	// FIFO entries carry no temperature.
	if s.Source != "fifo" {
		m.temperature.Set(s.Temperature)
	}
	m.samples.With(prometheus.Labels{"source": s.Source, "kind": "pressure"}).Inc()
}

func (m *baroMetrics) observeSources(s env.Sources) {
	m.fifoLevel.Set(float64(s.FifoLevel))
	for flag, set := range map[string]bool{
		"over_pres":   s.OverPres,
		"under_pres":  s.UnderPres,
		"thrsld_pres": s.ThrsldPres,
		"fifo_full":   s.FifoFull,
		"fifo_ovr":    s.FifoOvr,
		"fifo_wtm":    s.FifoTh,
	} {
		if set {
			m.events.With(prometheus.Labels{"flag": flag}).Inc()
		}
	}
}
