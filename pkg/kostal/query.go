package kostal

import (
	"fmt"
	"time"

	"github.com/simonvetter/modbus"
	"go.uber.org/zap"
)

// InverterReader is the read/derive surface of a Plenticore inverter.
type InverterReader interface {
	Open() error
	Close() error

	Read(name string) (any, error)
	ReadRegister(reg Register) (any, error)
	ReadAll() (Snapshot, error)

	Info() (*InverterInfo, error)
	State() (*InverterState, error)
	PowerFlow() (*PowerFlow, error)

	SetBatteryChargePower(watts float32) error
}

// Query issues one-shot reads against the inverter's register catalog and
// decodes the raw words. All framing and transport is handled by the
// underlying Modbus client.
type Query struct {
	modbusClient

	logger *zap.Logger
}

func (q *Query) Open() error {
	return q.client.Open()
}

func (q *Query) Close() error {
	return q.client.Close()
}

// Read resolves name against the catalog and reads the value.
func (q *Query) Read(name string) (any, error) {
	reg, err := ByName(name)
	if err != nil {
		return nil, err
	}
	return q.ReadRegister(reg)
}

// ReadRegister reads and decodes one catalog entry.
func (q *Query) ReadRegister(reg Register) (any, error) {
	words, err := q.readRegisters(reg.Addr, reg.Type.Count())
	if err != nil {
		return nil, fmt.Errorf("read register %d (%s): %w", reg.Addr, reg.Name, err)
	}
	value, err := Decode(reg.Type, words)
	if err != nil {
		return nil, err
	}
	return cleanValue(reg, value), nil
}

// ReadAll reads every catalog entry in order.
func (q *Query) ReadAll() (Snapshot, error) {
	snapshot := make(Snapshot, 0, len(Catalog))
	for _, reg := range Catalog {
		value, err := q.ReadRegister(reg)
		if err != nil {
			return nil, err
		}
		q.logger.Debug("register read",
			zap.Uint16("addr", reg.Addr), zap.String("name", reg.Name), zap.Any("value", value))
		snapshot = append(snapshot, Value{Register: reg, Value: value})
	}
	return snapshot, nil
}

func (q *Query) Info() (*InverterInfo, error) {
	names := []string{
		"Inverter article number", "Productname", "Power Class",
		"Software-Version IO-Controller (IOC)", "Firmware Maincontroller (MC)",
		"Inverter Max Power", "Battery Type", "Battery Manufacturer",
	}
	values := make(map[string]any, len(names))
	for _, name := range names {
		v, err := q.Read(name)
		if err != nil {
			return nil, err
		}
		values[name] = v
	}
	batteryType := values["Battery Type"].(uint16)
	return &InverterInfo{
		ArticleNumber:       values["Inverter article number"].(string),
		ProductName:         values["Productname"].(string),
		PowerClass:          values["Power Class"].(string),
		IOCVersion:          values["Software-Version IO-Controller (IOC)"].(string),
		MCVersion:           values["Firmware Maincontroller (MC)"].(uint32),
		MaxPowerWatt:        float64(values["Inverter Max Power"].(float32)),
		BatteryType:         batteryType,
		BatteryTypeStr:      BatteryTypeToString(batteryType),
		BatteryManufacturer: values["Battery Manufacturer"].(string),
	}, nil
}

func (q *Query) State() (*InverterState, error) {
	state, err := q.Read("Inverter State")
	if err != nil {
		return nil, err
	}
	soc, err := q.Read("Act. state of charge")
	if err != nil {
		return nil, err
	}
	code := state.(uint16)
	return &InverterState{
		State:         code,
		StateStr:      InverterStateToString(code),
		StateOfCharge: float64(soc.(float32)),
	}, nil
}

func (q *Query) PowerFlow() (*PowerFlow, error) {
	var flow PowerFlow
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"Inverter Generation Power (actual)", &flow.GenerationPowerWatt},
		{"Power DC1", &flow.PowerDC1Watt},
		{"Power DC2", &flow.PowerDC2Watt},
		{"Power DC3", &flow.PowerDC3Watt},
		{"Home own consumption from battery", &flow.FromBatteryWatt},
		{"Home own consumption from grid", &flow.FromGridWatt},
		{"Home own consumption from PV", &flow.FromPVWatt},
		{"Battery voltage", &flow.BatteryVoltage},
		{"Actual battery charge -minus or discharge -plus current", &flow.BatteryCurrent},
	} {
		value, err := q.Read(f.name)
		if err != nil {
			return nil, err
		}
		switch n := value.(type) {
		case float32:
			*f.dst = float64(n)
		case int16:
			*f.dst = float64(n)
		}
	}
	return &flow, nil
}

// SetBatteryChargePower writes the absolute DC battery charge power setpoint
// (register 1034). Positive discharges the battery, negative charges it. Has
// effect only when battery management is set to external via Modbus.
func (q *Query) SetBatteryChargePower(watts float32) error {
	reg, err := ByAddress(1034)
	if err != nil {
		return err
	}
	return q.WriteFloat32(reg, watts)
}

// WriteFloat32 writes a Float32 register. Registers not flagged writable in
// the catalog are refused before anything goes out on the wire.
func (q *Query) WriteFloat32(reg Register, value float32) error {
	if !reg.Writable {
		return fmt.Errorf("register %d (%s) is not writable", reg.Addr, reg.Name)
	}
	if reg.Type != Float32 {
		return fmt.Errorf("register %d (%s) is not a Float32 register", reg.Addr, reg.Name)
	}
	current, err := q.ReadRegister(reg)
	if err != nil {
		return err
	}
	q.logger.Info("writing register",
		zap.Uint16("addr", reg.Addr), zap.Any("current", current), zap.Float32("new", value))
	return q.writeRegisters(reg.Addr, EncodeFloat32(value))
}

// erratic reads: the generation power register sometimes reports its max
// value, which the device uses to signal zero output
func cleanValue(reg Register, value any) any {
	if reg.Addr == 575 {
		if v, ok := value.(int16); ok && v > 32766 {
			return int16(0)
		}
	}
	return value
}

func traceLoggerInstrumentation(logger *zap.Logger) *Instrument {
	return &Instrument{
		RecordTime: func(fnName string, readTime time.Duration) {
			logger.Debug("modbus call",
				zap.String("fn", fnName), zap.Int64("millis", readTime.Milliseconds()))
		},
	}
}

// CreateQuery builds a Query against a Plenticore at ip:port. The Plenticore
// answers on unit id 71 and port 1502 by default.
func CreateQuery(ip string, port uint, unitID uint8, timeout time.Duration,
	logger *zap.Logger, instrumentation *Instrument) (*Query, error) {
	client, err := modbus.NewClient(&modbus.ClientConfiguration{
		URL:     fmt.Sprintf("tcp://%s:%d", ip, port),
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}

	// instrumentation
	var inst []Instrument
	logInst := traceLoggerInstrumentation(logger.With(zap.String("target", "inverter"), zap.Uint8("unit", unitID)))
	if logInst != nil {
		inst = append(inst, *logInst)
	}
	if instrumentation != nil {
		inst = append(inst, *instrumentation)
	}

	if unitID > 0 {
		if err := client.SetUnitId(unitID); err != nil {
			return nil, err
		}
	}

	return &Query{
		modbusClient: modbusClient{
			client:     client,
			instrument: inst,
		},
		logger: logger,
	}, nil
}
