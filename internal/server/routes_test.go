package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kilianknoll/kostal-modbusquery/internal/util"
	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	reader, err := kostal.CreateTestInverterReader()
	require.NoError(t, err)
	cfg := util.LoadTestConfig()
	return &Server{
		port:    cfg.Port,
		httpLog: cfg.HttpLog,
		reader:  reader,
		logger:  zap.NewNop(),
	}
}

func TestHealthCheck(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "health_check: OK", rec.Body.String())
}

func TestRegistersEndpoint(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/registers", nil)
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Inverter State"`)
	assert.Contains(t, rec.Body.String(), `"Float32"`)
}

func TestValuesEndpoint(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/values", nil)
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Grid frequency"`)
}

func TestPowerFlowEndpoint(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/powerflow", nil)
	rec := httptest.NewRecorder()
	s.RegisterRoutes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"metrics"`)
}
