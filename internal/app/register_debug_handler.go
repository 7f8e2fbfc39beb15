// Copyright (c) 2026 vicaller
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vicaller/icm20948"
	"github.com/vicaller/icm20948/internal/config"
	"github.com/vicaller/icm20948/internal/regmap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RegisterDebugSession holds WebSocket connection state for register debugging
type RegisterDebugSession struct {
	Conn *websocket.Conn
	Dev  *icm20948.Device
}

// Response types
type RegisterResponse struct {
	Type        string                `json:"type"` // "register_data", "register_map", "error"
	Bank        int                   `json:"bank"`
	Address     string                `json:"addr,omitempty"`
	Value       string                `json:"value,omitempty"`
	Registers   map[string]string     `json:"registers,omitempty"` // for bulk read
	Timestamp   string                `json:"timestamp,omitempty"`
	Message     string                `json:"message,omitempty"`
	RegisterMap []regmap.RegisterInfo `json:"register_map,omitempty"`
}

// RunRegisterDebug serves the register debug WebSocket endpoint on the
// configured port.
func RunRegisterDebug(dev *icm20948.Device) error {
	cfg := config.Get()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/registers", func(w http.ResponseWriter, r *http.Request) {
		handleRegisterDebugWS(dev, w, r)
	})

	addr := fmt.Sprintf(":%d", cfg.RegisterDebugPort)
	log.Printf("register_debug: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// RunRegisterDebugStandalone opens the configured transport, brings the
// sensor up and serves the register debug endpoint until killed.
func RunRegisterDebugStandalone() error {
	cfg := config.Get()

	bus, err := openBus(cfg)
	if err != nil {
		return fmt.Errorf("open transport: %w", err)
	}
	defer bus.Close()

	dev, err := icm20948.New(bus.Read, bus.Write, bus.Delay)
	if err != nil {
		return fmt.Errorf("init ICM-20948: %w", err)
	}

	return RunRegisterDebug(dev)
}

// handleRegisterDebugWS handles one WebSocket connection for register debugging
func handleRegisterDebugWS(dev *icm20948.Device, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	session := &RegisterDebugSession{Conn: conn, Dev: dev}

	// Send register map on connection
	if err := session.sendRegisterMap(); err != nil {
		log.Printf("register_debug: error sending register map: %v", err)
		return
	}

	// Message loop
	for {
		var rawMsg map[string]interface{}
		err := conn.ReadJSON(&rawMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("register_debug: websocket error: %v", err)
			}
			break
		}

		action, ok := rawMsg["action"].(string)
		if !ok {
			session.sendError("missing or invalid action field")
			continue
		}

		switch action {
		case "get_map":
			if err := session.sendRegisterMap(); err != nil {
				log.Printf("register_debug: error sending register map: %v", err)
			}
		case "read":
			session.handleRead(rawMsg)
		case "read_all":
			session.handleReadAll(rawMsg)
		case "write":
			session.handleWrite(rawMsg)
		default:
			session.sendError(fmt.Sprintf("unknown action: %s", action))
		}
	}
}

func msgBank(rawMsg map[string]interface{}) (icm20948.Bank, int, error) {
	n := 0
	if v, ok := rawMsg["bank"].(float64); ok {
		n = int(v)
	}
	bank, err := regmap.ParseBank(n)
	return bank, n, err
}

func (s *RegisterDebugSession) handleRead(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	if addr == "" {
		s.sendError("missing addr field")
		return
	}

	bank, bankNum, err := msgBank(rawMsg)
	if err != nil {
		s.sendError(err.Error())
		return
	}

	addrByte, err := regmap.ParseAddr(addr)
	if err != nil {
		s.sendError(err.Error())
		return
	}

	value, err := s.Dev.ReadRegister(bank, addrByte)
	if err != nil {
		s.sendError(fmt.Sprintf("read error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Bank:      bankNum,
		Address:   addr,
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleReadAll(rawMsg map[string]interface{}) {
	bank, bankNum, err := msgBank(rawMsg)
	if err != nil {
		s.sendError(err.Error())
		return
	}

	// Read every register the map knows about in the requested bank
	regs := make(map[string]string)
	for _, info := range regmap.ByBank(bankNum) {
		addrByte, err := regmap.ParseAddr(info.Address)
		if err != nil {
			continue
		}
		value, err := s.Dev.ReadRegister(bank, addrByte)
		if err != nil {
			s.sendError(fmt.Sprintf("read all error at %s: %v", info.Address, err))
			return
		}
		regs[info.Address] = fmt.Sprintf("0x%02X", value)
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Bank:      bankNum,
		Registers: regs,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) handleWrite(rawMsg map[string]interface{}) {
	addr, _ := rawMsg["addr"].(string)
	valueStr, _ := rawMsg["value"].(string)

	if addr == "" || valueStr == "" {
		s.sendError("missing addr or value field")
		return
	}

	bank, bankNum, err := msgBank(rawMsg)
	if err != nil {
		s.sendError(err.Error())
		return
	}

	addrByte, err := regmap.ParseAddr(addr)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	value, err := strconv.ParseUint(valueStr, 0, 8)
	if err != nil {
		s.sendError(fmt.Sprintf("invalid value format: %s", valueStr))
		return
	}
	valueByte := byte(value)

	cfg := config.Get()
	if !isRegisterWritable(addrByte, cfg.RegisterDebugAllowedRanges) {
		s.sendError(fmt.Sprintf("register 0x%02X not in allowed write ranges", addrByte))
		return
	}

	if err := s.Dev.WriteRegister(bank, addrByte, valueByte); err != nil {
		s.sendError(fmt.Sprintf("write error: %v", err))
		return
	}

	resp := RegisterResponse{
		Type:      "register_data",
		Bank:      bankNum,
		Address:   addr,
		Value:     valueStr,
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   "write successful",
	}
	s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) sendRegisterMap() error {
	resp := RegisterResponse{
		Type:        "register_map",
		RegisterMap: regmap.ICM20948(),
	}
	return s.Conn.WriteJSON(resp)
}

func (s *RegisterDebugSession) sendError(message string) {
	resp := RegisterResponse{
		Type:    "error",
		Message: message,
	}
	s.Conn.WriteJSON(resp)
}

// isRegisterWritable checks if a register address is in the allowed write
// ranges. Ranges look like "0x06-0x07,0x7F". Empty means no writes allowed.
func isRegisterWritable(addr byte, allowedRanges string) bool {
	if allowedRanges == "" {
		return false
	}

	for _, part := range strings.Split(allowedRanges, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if i := strings.Index(part, "-"); i >= 0 {
			lo, hi = part[:i], part[i+1:]
		}

		loByte, err := regmap.ParseAddr(strings.TrimSpace(lo))
		if err != nil {
			continue
		}
		hiByte, err := regmap.ParseAddr(strings.TrimSpace(hi))
		if err != nil {
			continue
		}
		if addr >= loByte && addr <= hiByte {
			return true
		}
	}
	return false
}
