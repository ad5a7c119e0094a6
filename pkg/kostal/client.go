package kostal

import (
	"time"

	"github.com/simonvetter/modbus"
)

type modbusClient struct {
	client     *modbus.ModbusClient
	instrument []Instrument
}

// Instrument receives per-call timing of raw Modbus operations.
type Instrument struct {
	RecordTime func(fnName string, readTime time.Duration)
}

func (mc modbusClient) readRegisters(addr uint16, quantity uint16) ([]uint16, error) {
	defer RecordTimer("ReadRegisters", mc.instrument)()
	return mc.client.ReadRegisters(addr, quantity, modbus.HOLDING_REGISTER)
}

func (mc modbusClient) writeRegisters(addr uint16, values []uint16) error {
	defer RecordTimer("WriteRegisters", mc.instrument)()
	return mc.client.WriteRegisters(addr, values)
}

func RecordTimer(name string, instrument []Instrument) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, duration)
		}
	}
}
