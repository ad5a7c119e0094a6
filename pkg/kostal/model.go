package kostal

import (
	"fmt"
)

// inverter states (register 56)
const (
	InverterStateOff            = 0
	InverterStateInit           = 1
	InverterStateIsoMeasurement = 2
	InverterStateGridCheck      = 3
	InverterStateStartUp        = 4
	InverterStateFeedIn         = 6
	InverterStateThrottled      = 7
	InverterStateExtSwitchOff   = 8
	InverterStateUpdate         = 9
	InverterStateStandby        = 10
	InverterStateGridSync       = 11
	InverterStateGridPreCheck   = 12
	InverterStateGridSwitchOff  = 13
	InverterStateOverheating    = 14
	InverterStateShutdown       = 15
	InverterStateImproperDCVolt = 16
	InverterStateESB            = 17
)

func InverterStateToString(state uint16) string {
	switch state {
	case InverterStateOff:
		return "off"
	case InverterStateInit:
		return "init"
	case InverterStateIsoMeasurement:
		return "iso_measurement"
	case InverterStateGridCheck:
		return "grid_check"
	case InverterStateStartUp:
		return "startup"
	case InverterStateFeedIn:
		return "feed_in"
	case InverterStateThrottled:
		return "throttled"
	case InverterStateExtSwitchOff:
		return "ext_switch_off"
	case InverterStateUpdate:
		return "update"
	case InverterStateStandby:
		return "standby"
	case InverterStateGridSync:
		return "grid_sync"
	case InverterStateGridPreCheck:
		return "grid_pre_check"
	case InverterStateGridSwitchOff:
		return "grid_switch_off"
	case InverterStateOverheating:
		return "overheating"
	case InverterStateShutdown:
		return "shutdown"
	case InverterStateImproperDCVolt:
		return "improper_dc_voltage"
	case InverterStateESB:
		return "esb"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// battery types (register 588)
const (
	BatteryTypeNone    = 0
	BatteryTypePikoLi  = 2
	BatteryTypeBydBBox = 4
)

func BatteryTypeToString(batteryType uint16) string {
	switch batteryType {
	case BatteryTypeNone:
		return "none"
	case BatteryTypePikoLi:
		return "PIKO Battery Li"
	case BatteryTypeBydBBox:
		return "BYD B-Box HV"
	default:
		return fmt.Sprintf("unknown(%d)", batteryType)
	}
}

type InverterInfo struct {
	ArticleNumber       string
	ProductName         string
	PowerClass          string
	IOCVersion          string
	MCVersion           uint32
	MaxPowerWatt        float64
	BatteryType         uint16
	BatteryTypeStr      string
	BatteryManufacturer string
}

type InverterState struct {
	State         uint16
	StateStr      string
	StateOfCharge float64
}

// PowerFlow holds the decoded power readings the derived metrics are
// computed from. All values in watt unless noted.
type PowerFlow struct {
	GenerationPowerWatt float64
	PowerDC1Watt        float64
	PowerDC2Watt        float64
	PowerDC3Watt        float64
	FromBatteryWatt     float64
	FromGridWatt        float64
	FromPVWatt          float64
	BatteryVoltage      float64
	BatteryCurrent      float64
}

// Value is one decoded catalog entry.
type Value struct {
	Register Register
	Value    any
}

// Snapshot is the result of a full read-out, in catalog order.
type Snapshot []Value

// Get returns the decoded value for a register name.
func (s Snapshot) Get(name string) (any, error) {
	for _, v := range s {
		if v.Register.Name == name {
			return v.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRegister, name)
}

// Float returns the value for name coerced to float64. String registers
// yield an error.
func (s Snapshot) Float(name string) (float64, error) {
	v, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("register %q is not numeric", name)
	}
}
