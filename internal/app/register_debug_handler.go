// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/baro_computer/internal/sensors"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// registerDevice is the register-level surface of sensors.BaroManager.
type registerDevice interface {
	ReadRegister(addr byte) (byte, error)
	WriteRegister(addr, value byte) error
	ReadAllRegisters() (map[byte]byte, error)
	ExportRegisterConfig() (map[byte]byte, error)
	Reinitialize() error
	GetRegisterMap() []sensors.RegisterInfo
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
	dev  registerDevice
}

// RegisterCmd is any command sent by the debugger page.
type RegisterCmd struct {
	Action  string `json:"action"` // get_map, read, read_all, write, init, export_config
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Response types
type RegisterResponse struct {
	Type        string                 `json:"type"` // "register_data", "register_map", "status", "error"
	Device      string                 `json:"device,omitempty"`
	Address     string                 `json:"addr,omitempty"`
	Value       string                 `json:"value,omitempty"`
	Registers   map[string]string      `json:"registers,omitempty"` // for bulk read
	Timestamp   string                 `json:"timestamp,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Status      string                 `json:"status,omitempty"`
	RegisterMap []sensors.RegisterInfo `json:"register_map,omitempty"`
	Config      string                 `json:"config,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
}

// RegisterConfigFile represents the JSON structure for exported register configuration
type RegisterConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

const debugDevice = "ilps22qs"

// HandleRegisterDebugWS handles the WebSocket connection for register debugging
func HandleRegisterDebugWS(w http.ResponseWriter, r *http.Request) {
	serveRegisterDebug(w, r, sensors.GetBaroManager())
}

func serveRegisterDebug(w http.ResponseWriter, r *http.Request, dev registerDevice) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &RegisterDebugSession{Conn: conn, dev: dev}

	// Send register map on connection
	if err := session.sendRegisterMap(); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	// Message loop
	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}

		switch cmd.Action {
		case "get_map":
			err = session.sendRegisterMap()
		case "read":
			err = session.handleRead(cmd)
		case "read_all":
			err = session.handleReadAll()
		case "write":
			err = session.handleWrite(cmd)
		case "init":
			err = session.handleInit()
		case "export_config":
			err = session.handleExportConfig()
		case "":
			err = session.sendError("missing or invalid action field")
		default:
			err = session.sendError(fmt.Sprintf("unknown action: %s", cmd.Action))
		}
		if err != nil {
			log.Printf("register_debug: write error: %v", err)
			break
		}
	}
}

func parseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	return byte(v), err
}

func hexMap(regs map[byte]byte) map[string]string {
	out := make(map[string]string, len(regs))
	for addr, value := range regs {
		out[fmt.Sprintf("0x%02X", addr)] = fmt.Sprintf("0x%02X", value)
	}
	return out
}

func timestamp() string { return time.Now().Format(time.RFC3339) }

func (s *RegisterDebugSession) handleRead(cmd RegisterCmd) error {
	if cmd.Address == "" {
		return s.sendError("missing addr field")
	}
	addr, err := parseByte(cmd.Address)
	if err != nil {
		return s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}

	value, err := s.dev.ReadRegister(addr)
	if err != nil {
		return s.sendError(fmt.Sprintf("read error: %v", err))
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    debugDevice,
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: timestamp(),
	})
}

func (s *RegisterDebugSession) handleReadAll() error {
	registers, err := s.dev.ReadAllRegisters()
	if err != nil {
		return s.sendError(fmt.Sprintf("read all error: %v", err))
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    debugDevice,
		Registers: hexMap(registers),
		Timestamp: timestamp(),
	})
}

func (s *RegisterDebugSession) handleWrite(cmd RegisterCmd) error {
	if cmd.Address == "" || cmd.Value == "" {
		return s.sendError("missing addr or value field")
	}
	addr, err := parseByte(cmd.Address)
	if err != nil {
		return s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}
	value, err := parseByte(cmd.Value)
	if err != nil {
		return s.sendError(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}

	// The manager rejects unmapped and read-only registers.
	if err := s.dev.WriteRegister(addr, value); err != nil {
		return s.sendError(fmt.Sprintf("write error: %v", err))
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    debugDevice,
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: timestamp(),
		Message:   "write successful",
	})
}

func (s *RegisterDebugSession) handleInit() error {
	if err := s.dev.Reinitialize(); err != nil {
		return s.sendError(fmt.Sprintf("reinit error: %v", err))
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:    "status",
		Device:  debugDevice,
		Status:  "initialized",
		Message: "barometer reinitialized successfully",
	})
}

func (s *RegisterDebugSession) handleExportConfig() error {
	registers, err := s.dev.ExportRegisterConfig()
	if err != nil {
		return s.sendError(fmt.Sprintf("export error: %v", err))
	}

	configFile := RegisterConfigFile{
		Version:   1,
		Device:    debugDevice,
		Timestamp: timestamp(),
		Registers: hexMap(registers),
	}
	configJSON, err := json.Marshal(configFile)
	if err != nil {
		return s.sendError(fmt.Sprintf("export error: %v", err))
	}
	return s.Conn.WriteJSON(RegisterResponse{
		Type:     "export_config",
		Device:   debugDevice,
		Message:  "config exported",
		Config:   string(configJSON),
		Filename: fmt.Sprintf("%s_%s_registers.json", debugDevice, time.Now().Format("20060102_150405")),
	})
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	return s.Conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		Device:      debugDevice,
		RegisterMap: s.dev.GetRegisterMap(),
	})
}

func (s *RegisterDebugSession) sendError(message string) error {
	return s.Conn.WriteJSON(RegisterResponse{
		Type:    "error",
		Message: message,
	})
}

// HandleBaroData serves a live sample read straight from the device.
func HandleBaroData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	s, err := sensors.GetBaroManager().ReadSample()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(s)
}
