package kostal

// DerivedMetrics mirrors the summary values shown on the inverter's web
// dashboard. Rates are percentages in [0, 100]; a rate whose denominator is
// zero is reported as 0 rather than NaN.
type DerivedMetrics struct {
	HomeConsumptionWatt float64
	PowerToGridWatt     float64
	BatteryPowerWatt    float64
	StringPowerWatt     float64
	SelfConsumptionRate float64
	AutarkyRate         float64
}

// HomeConsumptionWatt is the momentary house load, summed over its three
// supply paths.
func HomeConsumptionWatt(fromBattery, fromGrid, fromPV float64) float64 {
	return fromBattery + fromGrid + fromPV
}

// PowerToGridWatt is what the inverter feeds into the grid: negative values
// mean the house is importing.
func PowerToGridWatt(generation, homeConsumption float64) float64 {
	return generation - homeConsumption
}

// BatteryPowerWatt reports the battery's momentary power. Negative while
// charging, positive while discharging, matching the sign of the battery
// current register.
func BatteryPowerWatt(voltage, current float64) float64 {
	return voltage * current
}

// SelfConsumptionRate is the share of generated power consumed by the house
// itself instead of being exported.
func SelfConsumptionRate(ownConsumptionFromPV, generation float64) float64 {
	if generation == 0 {
		return 0
	}
	return clampRate(ownConsumptionFromPV / generation * 100)
}

// AutarkyRate is the share of the house load covered without the grid.
func AutarkyRate(fromGrid, homeConsumption float64) float64 {
	if homeConsumption == 0 {
		return 0
	}
	return clampRate((homeConsumption - fromGrid) / homeConsumption * 100)
}

func clampRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// Derive computes the dashboard metrics from a power flow reading.
func Derive(flow PowerFlow) DerivedMetrics {
	homeConsumption := HomeConsumptionWatt(flow.FromBatteryWatt, flow.FromGridWatt, flow.FromPVWatt)
	return DerivedMetrics{
		HomeConsumptionWatt: homeConsumption,
		PowerToGridWatt:     PowerToGridWatt(flow.GenerationPowerWatt, homeConsumption),
		BatteryPowerWatt:    BatteryPowerWatt(flow.BatteryVoltage, flow.BatteryCurrent),
		StringPowerWatt:     flow.PowerDC1Watt + flow.PowerDC2Watt,
		SelfConsumptionRate: SelfConsumptionRate(flow.FromPVWatt, flow.GenerationPowerWatt),
		AutarkyRate:         AutarkyRate(flow.FromGridWatt, homeConsumption),
	}
}

// PowerFlowFromSnapshot assembles the derived-metric inputs out of a full
// read-out instead of issuing fresh reads.
func PowerFlowFromSnapshot(s Snapshot) (*PowerFlow, error) {
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
		value, err := s.Float(f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = value
	}
	return &flow, nil
}
