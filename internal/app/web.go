// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/baro_computer/internal/config"
	"github.com/relabs-tech/baro_computer/internal/env"
)

// baroState keeps the latest MQTT messages for the HTTP handlers.
type baroState struct {
	mu          sync.RWMutex
	sample      env.Sample
	haveSample  bool
	sources     env.Sources
	haveSources bool
	metrics     *baroMetrics
}

func (s *baroState) updateSample(v env.Sample) {
	s.mu.Lock()
	s.sample, s.haveSample = v, true
	s.mu.Unlock()
	s.metrics.observeSample(v)
}

func (s *baroState) updateSources(v env.Sources) {
	s.mu.Lock()
	s.sources, s.haveSources = v, true
	s.mu.Unlock()
	s.metrics.observeSources(v)
}

func (s *baroState) handleSample(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	v, ok := s.sample, s.haveSample
	s.mu.RUnlock()
	writeJSON(w, v, ok)
}

func (s *baroState) handleSources(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	v, ok := s.sources, s.haveSources
	s.mu.RUnlock()
	writeJSON(w, v, ok)
}

func writeJSON(w http.ResponseWriter, v any, ok bool) {
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func newWebMux(state *baroState, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/baro", state.handleSample)
	mux.HandleFunc("/api/baro/sources", state.handleSources)
	mux.Handle("/metrics", metrics)
	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

// RunWeb subscribes to the barometer topics and serves the latest values
// as JSON plus prometheus metrics.
func RunWeb() error {
	cfg := config.Get()

	state := &baroState{metrics: newBaroMetrics(prometheus.DefaultRegisterer)}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	onErr := func(err error) { log.Printf("web: MQTT payload unmarshal error: %v", err) }
	if err := subscribeJSON(client, cfg.TopicBaro, state.updateSample, onErr); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicBaroSources, state.updateSources, onErr); err != nil {
		return err
	}
	log.Printf("web: subscribed to %s and %s", cfg.TopicBaro, cfg.TopicBaroSources)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: listening on %s", addr)
	return http.ListenAndServe(addr, newWebMux(state, promhttp.Handler()))
}
