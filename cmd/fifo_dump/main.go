// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/relabs-tech/baro_computer/internal/app"
	"github.com/relabs-tech/baro_computer/internal/config"
)

func main() {
	configPath := flag.String("config", "./baro_config.txt", "path to configuration file")
	timeout := flag.Duration("timeout", 10*time.Second, "how long to wait for the FIFO watermark")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunFIFODump(os.Stdout, *timeout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
