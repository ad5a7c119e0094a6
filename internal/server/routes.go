package server

import (
	"net/http"

	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/registers", s.RegistersHandler)
	e.GET("/values", s.ValuesHandler)
	e.GET("/powerflow", s.PowerFlowHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	_, err := s.reader.Read("Inverter State")
	if err != nil {
		s.logger.Warn("healthcheck read failed", zap.Error(err))
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	return c.String(http.StatusOK, "health_check: OK")
}

type registerJSON struct {
	Address  uint16 `json:"address"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Count    uint16 `json:"count"`
	Unit     string `json:"unit,omitempty"`
	Writable bool   `json:"writable,omitempty"`
}

func (s *Server) RegistersHandler(c echo.Context) error {
	out := make([]registerJSON, 0, len(kostal.Catalog))
	for _, reg := range kostal.Catalog {
		out = append(out, registerJSON{
			Address:  reg.Addr,
			Name:     reg.Name,
			Type:     reg.Type.String(),
			Count:    reg.Type.Count(),
			Unit:     reg.Unit,
			Writable: reg.Writable,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type valueJSON struct {
	Address uint16 `json:"address"`
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Unit    string `json:"unit,omitempty"`
}

func (s *Server) ValuesHandler(c echo.Context) error {
	snapshot, err := s.reader.ReadAll()
	if err != nil {
		s.logger.Error("read all failed", zap.Error(err))
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	out := make([]valueJSON, 0, len(snapshot))
	for _, v := range snapshot {
		out = append(out, valueJSON{
			Address: v.Register.Addr,
			Name:    v.Register.Name,
			Value:   v.Value,
			Unit:    v.Register.Unit,
		})
	}
	return c.JSON(http.StatusOK, out)
}

type powerFlowJSON struct {
	Flow    *kostal.PowerFlow     `json:"flow"`
	Metrics kostal.DerivedMetrics `json:"metrics"`
}

func (s *Server) PowerFlowHandler(c echo.Context) error {
	flow, err := s.reader.PowerFlow()
	if err != nil {
		s.logger.Error("power flow read failed", zap.Error(err))
		return c.String(http.StatusServiceUnavailable, err.Error())
	}
	return c.JSON(http.StatusOK, powerFlowJSON{
		Flow:    flow,
		Metrics: kostal.Derive(*flow),
	})
}
