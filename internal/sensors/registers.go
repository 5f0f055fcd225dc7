// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relabs-tech/baro_computer/internal/ilps22qs"
)

// BitField describes one named bit range of a register for the debugger UI.
type BitField struct {
	Bits        string `json:"bits"` // "7:0" or "5"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo describes one register (or a multi-byte run) of the ILPS22QS.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R" or "RW"
	Size        int        `json:"size"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// enumValues lists the decoded meaning of enumerated fields.
var enumValues = map[string]string{
	"AVG":     enumList(8, func(b uint8) (fmt.Stringer, error) { return ilps22qs.AvgFromBits(b) }),
	"ODR":     enumList(16, func(b uint8) (fmt.Stringer, error) { return ilps22qs.OdrFromBits(b) }),
	"FS_MODE": enumList(2, func(b uint8) (fmt.Stringer, error) { return ilps22qs.FsFromBits(b) }),
	"F_MODE":  enumList(4, func(b uint8) (fmt.Stringer, error) { return ilps22qs.OperationFromBits(b) }),
}

func enumList(n int, decode func(uint8) (fmt.Stringer, error)) string {
	var parts []string
	for b := 0; b < n; b++ {
		v, err := decode(uint8(b))
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d=%s", b, v))
	}
	return strings.Join(parts, ", ")
}

// BaroRegisterMap returns metadata for every mapped register, in address
// order, generated from the driver layouts.
func BaroRegisterMap() []RegisterInfo {
	layouts := ilps22qs.Layouts()
	out := make([]RegisterInfo, 0, len(layouts))
	for _, l := range layouts {
		info := RegisterInfo{
			Address:     fmt.Sprintf("0x%02X", uint8(l.Reg)),
			Name:        l.Name,
			Description: l.Description,
			Access:      "R",
			Size:        l.Size,
		}
		if l.Writable() {
			info.Access = "RW"
		}
		type placed struct {
			hi int
			bf BitField
		}
		var fields []placed
		for i, f := range l.Fields {
			if f.Name == "" {
				continue
			}
			lo := int(l.Offset(i))
			hi := lo + int(f.Width) - 1
			bits := fmt.Sprintf("%d", lo)
			if hi != lo {
				bits = fmt.Sprintf("%d:%d", hi, lo)
			}
			desc := f.Description
			if f.Access == ilps22qs.RO && l.Writable() {
				desc += " (read-only)"
			}
			fields = append(fields, placed{hi, BitField{Bits: bits, Name: f.Name, Description: desc, Values: enumValues[f.Name]}})
		}
		sort.Slice(fields, func(i, j int) bool { return fields[i].hi > fields[j].hi })
		for _, p := range fields {
			info.BitFields = append(info.BitFields, p.bf)
		}
		out = append(out, info)
	}
	return out
}

// layoutAt returns the layout covering addr, or nil for unmapped addresses.
func layoutAt(addr byte) *ilps22qs.Layout {
	for _, l := range ilps22qs.Layouts() {
		base := byte(l.Reg)
		if addr >= base && int(addr) < int(base)+l.Size {
			return l
		}
	}
	return nil
}
