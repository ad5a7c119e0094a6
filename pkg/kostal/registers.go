package kostal

import (
	"errors"
	"fmt"
)

// RegisterType describes how the raw words of a register block are decoded.
type RegisterType int

const (
	U8 RegisterType = iota
	U16
	S16
	U32
	Float32
	String8
	String32
)

func (t RegisterType) String() string {
	switch t {
	case U8:
		return "U8"
	case U16:
		return "U16"
	case S16:
		return "S16"
	case U32:
		return "U32"
	case Float32:
		return "Float32"
	case String8:
		return "String8"
	case String32:
		return "String32"
	default:
		return fmt.Sprintf("RegisterType(%d)", int(t))
	}
}

// Count returns the number of consecutive 16-bit registers a value of this
// type spans on the wire.
func (t RegisterType) Count() uint16 {
	switch t {
	case String8:
		return 8
	case String32:
		return 32
	case U32, Float32:
		return 2
	default:
		return 1
	}
}

// Register is one entry of the inverter's published Modbus map.
type Register struct {
	Addr     uint16
	Name     string
	Type     RegisterType
	Unit     string
	Writable bool
}

func (r Register) String() string {
	return fmt.Sprintf("0x%03X %s [%s, %d]", r.Addr, r.Name, r.Type, r.Type.Count())
}

var ErrUnknownRegister = errors.New("unknown register")

// Catalog is the full read-out map of the Plenticore inverter, addresses and
// types taken from the vendor's Modbus interface description. Order matters:
// ReadAll visits entries in this order.
//
// Registers 1028-1044 are read/write on the device. Everything else must never
// be written; careless writes can damage the inverter.
var Catalog = []Register{
	{Addr: 6, Name: "Inverter article number", Type: String8},
	{Addr: 46, Name: "Software-Version IO-Controller (IOC)", Type: String8},
	{Addr: 56, Name: "Inverter State", Type: U16},
	{Addr: 100, Name: "Total DC power", Type: Float32, Unit: "W"},
	{Addr: 104, Name: "State of energy manager", Type: Float32},
	{Addr: 106, Name: "Home own consumption from battery", Type: Float32, Unit: "W"},
	{Addr: 108, Name: "Home own consumption from grid", Type: Float32, Unit: "W"},
	{Addr: 110, Name: "Total home consumption Battery", Type: Float32, Unit: "Wh"},
	{Addr: 112, Name: "Total home consumption Grid", Type: Float32, Unit: "Wh"},
	{Addr: 114, Name: "Total home consumption PV", Type: Float32, Unit: "Wh"},
	{Addr: 116, Name: "Home own consumption from PV", Type: Float32, Unit: "W"},
	{Addr: 118, Name: "Total home consumption", Type: Float32, Unit: "Wh"},
	{Addr: 120, Name: "Isolation resistance", Type: Float32, Unit: "Ohm"},
	{Addr: 122, Name: "Power limit from EVU", Type: Float32, Unit: "%"},
	{Addr: 124, Name: "Total home consumption rate", Type: Float32, Unit: "%"},
	{Addr: 144, Name: "Worktime", Type: Float32, Unit: "s"},
	{Addr: 150, Name: "Actual cos phi", Type: Float32},
	{Addr: 152, Name: "Grid frequency", Type: Float32, Unit: "Hz"},
	{Addr: 154, Name: "Current Phase 1", Type: Float32, Unit: "A"},
	{Addr: 156, Name: "Active power Phase 1", Type: Float32, Unit: "W"},
	{Addr: 158, Name: "Voltage Phase 1", Type: Float32, Unit: "V"},
	{Addr: 160, Name: "Current Phase 2", Type: Float32, Unit: "A"},
	{Addr: 162, Name: "Active power Phase 2", Type: Float32, Unit: "W"},
	{Addr: 164, Name: "Voltage Phase 2", Type: Float32, Unit: "V"},
	{Addr: 166, Name: "Current Phase 3", Type: Float32, Unit: "A"},
	{Addr: 168, Name: "Active power Phase 3", Type: Float32, Unit: "W"},
	{Addr: 170, Name: "Voltage Phase 3", Type: Float32, Unit: "V"},
	{Addr: 172, Name: "Total AC active power", Type: Float32, Unit: "W"},
	{Addr: 174, Name: "Total AC reactive power", Type: Float32, Unit: "var"},
	{Addr: 178, Name: "Total AC apparent power", Type: Float32, Unit: "VA"},
	{Addr: 190, Name: "Battery charge current", Type: Float32, Unit: "A"},
	{Addr: 194, Name: "Number of battery cycles", Type: Float32},
	{Addr: 200, Name: "Actual battery charge -minus or discharge -plus current", Type: Float32, Unit: "A"},
	{Addr: 202, Name: "PSSB fuse state", Type: Float32},
	{Addr: 208, Name: "Battery ready flag", Type: Float32},
	{Addr: 210, Name: "Act. state of charge", Type: Float32, Unit: "%"},
	{Addr: 214, Name: "Battery temperature", Type: Float32, Unit: "°C"},
	{Addr: 216, Name: "Battery voltage", Type: Float32, Unit: "V"},
	{Addr: 218, Name: "Cos phi (powermeter)", Type: Float32},
	{Addr: 220, Name: "Frequency (powermeter)", Type: Float32, Unit: "Hz"},
	{Addr: 222, Name: "Current phase 1 (powermeter)", Type: Float32, Unit: "A"},
	{Addr: 224, Name: "Active power phase 1 (powermeter)", Type: Float32, Unit: "W"},
	{Addr: 226, Name: "Reactive power phase 1 (powermeter)", Type: Float32, Unit: "var"},
	{Addr: 228, Name: "Apparent power phase 1 (powermeter)", Type: Float32, Unit: "VA"},
	{Addr: 230, Name: "Voltage phase 1 (powermeter)", Type: Float32, Unit: "V"},
	{Addr: 232, Name: "Current phase 2 (powermeter)", Type: Float32, Unit: "A"},
	{Addr: 234, Name: "Active power phase 2 (powermeter)", Type: Float32, Unit: "W"},
	{Addr: 236, Name: "Reactive power phase 2 (powermeter)", Type: Float32, Unit: "var"},
	{Addr: 238, Name: "Apparent power phase 2 (powermeter)", Type: Float32, Unit: "VA"},
	{Addr: 240, Name: "Voltage phase 2 (powermeter)", Type: Float32, Unit: "V"},
	{Addr: 242, Name: "Current phase 3 (powermeter)", Type: Float32, Unit: "A"},
	{Addr: 244, Name: "Active power phase 3 (powermeter)", Type: Float32, Unit: "W"},
	{Addr: 246, Name: "Reactive power phase 3 (powermeter)", Type: Float32, Unit: "var"},
	{Addr: 248, Name: "Apparent power phase 3 (powermeter)", Type: Float32, Unit: "VA"},
	{Addr: 250, Name: "Voltage phase 3 (powermeter)", Type: Float32, Unit: "V"},
	{Addr: 252, Name: "Total active power (powermeter)", Type: Float32, Unit: "W"},
	{Addr: 254, Name: "Total reactive power (powermeter)", Type: Float32, Unit: "var"},
	{Addr: 256, Name: "Total apparent power (powermeter)", Type: Float32, Unit: "VA"},
	{Addr: 258, Name: "Current DC1", Type: Float32, Unit: "A"},
	{Addr: 260, Name: "Power DC1", Type: Float32, Unit: "W"},
	{Addr: 266, Name: "Voltage DC1", Type: Float32, Unit: "V"},
	{Addr: 268, Name: "Current DC2", Type: Float32, Unit: "A"},
	{Addr: 270, Name: "Power DC2", Type: Float32, Unit: "W"},
	{Addr: 276, Name: "Voltage DC2", Type: Float32, Unit: "V"},
	{Addr: 278, Name: "Current DC3", Type: Float32, Unit: "A"},
	{Addr: 280, Name: "Power DC3", Type: Float32, Unit: "W"},
	{Addr: 286, Name: "Voltage DC3", Type: Float32, Unit: "V"},
	{Addr: 320, Name: "Total yield", Type: Float32, Unit: "Wh"},
	{Addr: 322, Name: "Daily yield", Type: Float32, Unit: "Wh"},
	{Addr: 324, Name: "Yearly yield", Type: Float32, Unit: "Wh"},
	{Addr: 326, Name: "Monthly yield", Type: Float32, Unit: "Wh"},
	{Addr: 512, Name: "Battery Gross Capacity", Type: U32, Unit: "Ah"},
	{Addr: 514, Name: "Battery actual SOC", Type: U16, Unit: "%"},
	{Addr: 515, Name: "Firmware Maincontroller (MC)", Type: U32},
	{Addr: 517, Name: "Battery Manufacturer", Type: String8},
	{Addr: 525, Name: "Battery Model ID", Type: U32},
	{Addr: 527, Name: "Battery Serial Number", Type: U32},
	{Addr: 529, Name: "Battery Operation mode", Type: U32},
	{Addr: 531, Name: "Inverter Max Power", Type: Float32, Unit: "W"},
	{Addr: 575, Name: "Inverter Generation Power (actual)", Type: S16, Unit: "W"},
	{Addr: 577, Name: "Generation Energy", Type: U32, Unit: "Wh"},
	{Addr: 580, Name: "Battery Net Capacity", Type: U32, Unit: "Ah"},
	{Addr: 582, Name: "Actual battery charge-discharge power", Type: S16, Unit: "W"},
	{Addr: 586, Name: "Battery Firmware", Type: U32},
	{Addr: 588, Name: "Battery Type", Type: U16},
	{Addr: 768, Name: "Productname", Type: String32},
	{Addr: 800, Name: "Power Class", Type: String32},
	{Addr: 1024, Name: "Battery charge power (AC) setpoint", Type: S16, Unit: "W"},
	{Addr: 1025, Name: "Power Scale Factor", Type: S16},
	{Addr: 1026, Name: "Battery charge power (AC) setpoint, absolute", Type: Float32, Unit: "W"},
	{Addr: 1028, Name: "Battery charge current (DC) setpoint, relative", Type: Float32, Unit: "%", Writable: true},
	{Addr: 1030, Name: "Battery charge power (AC) setpoint, relative", Type: Float32, Unit: "%", Writable: true},
	{Addr: 1032, Name: "Battery charge current (DC) setpoint, absolute", Type: Float32, Unit: "A", Writable: true},
	{Addr: 1034, Name: "Battery charge power (DC) setpoint, absolute", Type: Float32, Unit: "W", Writable: true},
	{Addr: 1036, Name: "Battery charge power (DC) setpoint, relative", Type: Float32, Unit: "%", Writable: true},
	{Addr: 1038, Name: "Battery max charge power limit, absolute", Type: U32, Unit: "W", Writable: true},
	{Addr: 1040, Name: "Battery max discharge power limit, absolute", Type: U32, Unit: "W", Writable: true},
	{Addr: 1042, Name: "Minimum SOC", Type: Float32, Unit: "%", Writable: true},
	{Addr: 1044, Name: "Maximum SOC", Type: Float32, Unit: "%", Writable: true},
	{Addr: 1046, Name: "Total DC charge energy (DC-side to battery)", Type: Float32, Unit: "Wh"},
	{Addr: 1048, Name: "Total DC discharge energy (DC-side from battery)", Type: Float32, Unit: "Wh"},
	{Addr: 1050, Name: "Total AC charge energy (AC-side to battery)", Type: Float32, Unit: "Wh"},
	{Addr: 1052, Name: "Total AC discharge energy (Battery to grid)", Type: Float32, Unit: "Wh"},
	{Addr: 1054, Name: "Total AC charge energy (grid to battery)", Type: Float32, Unit: "Wh"},
	{Addr: 1056, Name: "Total DC PV energy (sum of all PV inputs)", Type: Float32, Unit: "Wh"},
	{Addr: 1058, Name: "Total DC energy from PV1", Type: Float32, Unit: "Wh"},
	{Addr: 1060, Name: "Total DC energy from PV2", Type: Float32, Unit: "Wh"},
	{Addr: 1062, Name: "Total DC energy from PV3", Type: Float32, Unit: "Wh"},
	{Addr: 1064, Name: "Total energy AC-side to grid", Type: Float32, Unit: "Wh"},
	{Addr: 1066, Name: "Total DC power (sum of all PV inputs)", Type: Float32, Unit: "W"},
	{Addr: 1068, Name: "Battery work capacity", Type: Float32, Unit: "Wh"},
	{Addr: 1070, Name: "Battery serial number", Type: U32},
	{Addr: 1076, Name: "Maximum charge power limit (readout from battery)", Type: Float32, Unit: "W"},
	{Addr: 1078, Name: "Maximum discharge power limit (readout from battery)", Type: Float32, Unit: "W"},
	{Addr: 1080, Name: "Battery management mode", Type: U8},
	{Addr: 1082, Name: "Installed sensor type", Type: U8},
}

var (
	byName = make(map[string]Register, len(Catalog))
	byAddr = make(map[uint16]Register, len(Catalog))
)

func init() {
	for _, reg := range Catalog {
		byName[reg.Name] = reg
		byAddr[reg.Addr] = reg
	}
}

// ByName resolves a catalog entry by its symbolic name.
func ByName(name string) (Register, error) {
	reg, ok := byName[name]
	if !ok {
		return Register{}, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
	}
	return reg, nil
}

// ByAddress resolves a catalog entry by its start address.
func ByAddress(addr uint16) (Register, error) {
	reg, ok := byAddr[addr]
	if !ok {
		return Register{}, fmt.Errorf("%w: address %d", ErrUnknownRegister, addr)
	}
	return reg, nil
}
