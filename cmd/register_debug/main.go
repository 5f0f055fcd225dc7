// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/baro_computer/internal/app"
	"github.com/relabs-tech/baro_computer/internal/config"
	"github.com/relabs-tech/baro_computer/internal/sensors"
)

func main() {
	log.Println("starting ILPS22QS register debug tool (standalone)")

	if err := config.InitGlobal("baro_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Get()

	log.Println("Initializing barometer...")
	if err := sensors.GetBaroManager().Init(); err != nil {
		log.Printf("Warning: barometer initialization failed: %v", err)
		log.Println("Continuing anyway - use the init action to retry")
	}

	http.HandleFunc("/ws", app.HandleRegisterDebugWS)

	// API endpoint for live pressure data
	http.HandleFunc("/api/baro", app.HandleBaroData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
