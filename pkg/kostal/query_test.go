package kostal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	USE_MOCKED_READER = true
)

func TestReadAll(t *testing.T) {
	reader := Reader()

	err := reader.Open()
	require.NoError(t, err)
	defer reader.Close()

	snapshot, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, snapshot, len(Catalog))

	state, err := snapshot.Get("Inverter State")
	require.NoError(t, err)
	assert.Equal(t, uint16(InverterStateFeedIn), state)

	_, err = snapshot.Get("No such register")
	assert.ErrorIs(t, err, ErrUnknownRegister)
}

func TestReadByName(t *testing.T) {
	reader := Reader()

	err := reader.Open()
	require.NoError(t, err)
	defer reader.Close()

	value, err := reader.Read("Grid frequency")
	require.NoError(t, err)
	assert.InDelta(t, 50.02, value.(float32), 0.001)

	_, err = reader.Read("Flux capacitor charge")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRegister)
}

func TestInverterInfo(t *testing.T) {
	reader := Reader()

	err := reader.Open()
	require.NoError(t, err)
	defer reader.Close()

	info, err := reader.Info()
	require.NoError(t, err)
	assert.Equal(t, "PLENTICORE plus", info.ProductName)
	assert.Equal(t, "BYD B-Box HV", info.BatteryTypeStr)
}

func TestInverterState(t *testing.T) {
	reader := Reader()

	err := reader.Open()
	require.NoError(t, err)
	defer reader.Close()

	state, err := reader.State()
	require.NoError(t, err)
	assert.Equal(t, "feed_in", state.StateStr)
	assert.Equal(t, 76.0, state.StateOfCharge)
}

func TestPowerFlowAndDerive(t *testing.T) {
	reader := Reader()

	err := reader.Open()
	require.NoError(t, err)
	defer reader.Close()

	flow, err := reader.PowerFlow()
	require.NoError(t, err)

	metrics := Derive(*flow)
	assert.GreaterOrEqual(t, metrics.AutarkyRate, 0.0)
	assert.LessOrEqual(t, metrics.AutarkyRate, 100.0)
	assert.GreaterOrEqual(t, metrics.SelfConsumptionRate, 0.0)
	assert.LessOrEqual(t, metrics.SelfConsumptionRate, 100.0)
	assert.Greater(t, metrics.StringPowerWatt, 0.0)
}

func TestSetBatteryChargePower(t *testing.T) {
	mock := &TestInverterReader{}

	err := mock.SetBatteryChargePower(475)
	require.NoError(t, err)
	assert.Equal(t, []float32{475}, mock.WrittenChargePower)
}

func TestWriteRefusesReadOnlyRegisters(t *testing.T) {
	// the writable check fires before anything touches the wire, so an
	// unconnected query is enough
	q, err := CreateQuery("127.0.0.1", 1502, 71, 1*time.Second, zap.NewNop(), nil)
	require.NoError(t, err)

	reg, err := ByName("Total DC power")
	require.NoError(t, err)
	err = q.WriteFloat32(reg, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not writable")

	reg, err = ByName("Battery max charge power limit, absolute")
	require.NoError(t, err)
	err = q.WriteFloat32(reg, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a Float32")
}

func TestErraticGenerationPowerReadsAsZero(t *testing.T) {
	reg, err := ByAddress(575)
	require.NoError(t, err)
	assert.Equal(t, int16(0), cleanValue(reg, int16(32767)))
	assert.Equal(t, int16(4470), cleanValue(reg, int16(4470)))
	assert.Equal(t, int16(-312), cleanValue(reg, int16(-312)))
}

func MockedReader() InverterReader {
	reader, err := CreateTestInverterReader()
	if err != nil {
		panic(err)
	}
	return reader
}

func RealReader() InverterReader {
	logger := zap.Must(zap.NewDevelopment())
	reader, err := CreateQuery("-.-.-.-", 1502, 71, 1*time.Second, logger, nil)
	if err != nil {
		panic(err)
	}
	return reader
}

func Reader() InverterReader {
	if USE_MOCKED_READER {
		return MockedReader()
	} else {
		return RealReader()
	}
}
