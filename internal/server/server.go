package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kilianknoll/kostal-modbusquery/internal/config"
	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

type Server struct {
	port    uint
	httpLog bool
	reader  kostal.InverterReader
	logger  *zap.Logger
}

func NewServer(cfg config.Config, reader kostal.InverterReader, logger *zap.Logger) *http.Server {
	NewServer := &Server{
		port:    cfg.Port,
		httpLog: cfg.HttpLog,
		reader:  reader,
		logger:  logger,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
