package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kilianknoll/kostal-modbusquery/internal/config"
	"github.com/kilianknoll/kostal-modbusquery/internal/export"
	"github.com/kilianknoll/kostal-modbusquery/internal/monitor"
	"github.com/kilianknoll/kostal-modbusquery/internal/mqtt"
	"github.com/kilianknoll/kostal-modbusquery/internal/server"
	"github.com/kilianknoll/kostal-modbusquery/pkg/kostal"

	"github.com/carlmjohnson/versioninfo"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// bootstrap logging until the real logger is configured
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		TimeFormat: time.DateTime,
	})))

	formatFlag := pflag.String("format", "table", "output format: table, csv or json")
	serveFlag := pflag.Bool("serve", false, "expose values over HTTP instead of printing once")
	watchFlag := pflag.Bool("watch", false, "poll on an interval and publish to MQTT")
	mockFlag := pflag.Bool("mock", false, "use canned values instead of a real inverter")
	batChargeFlag := pflag.Float64("bat-charge", 0, "set the battery charge/discharge power [W]; positive discharges, negative charges. Only works with battery management set to external via Modbus")
	versionFlag := pflag.BoolP("version", "v", false, "print version and exit")
	pflag.Parse()

	if *versionFlag {
		fmt.Println(versioninfo.Short())
		return
	}

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		slog.Error("bad flag", "error", err)
		os.Exit(2)
	}

	cfg, err := initConfig(*mockFlag)
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	reader, err := buildReader(cfg, logger, *mockFlag)
	if err != nil {
		logger.Fatal("could not create inverter reader", zap.Error(err))
	}

	if err := reader.Open(); err != nil {
		logger.Fatal("could not connect to inverter",
			zap.String("host", cfg.InverterModbusTcp.Host), zap.Error(err))
	}
	defer reader.Close()

	switch {
	case *serveFlag:
		err = runServe(cfg, reader, logger)
	case *watchFlag:
		err = runWatch(cfg, reader, logger)
	default:
		var setpoint *float64
		if pflag.CommandLine.Changed("bat-charge") {
			setpoint = batChargeFlag
		}
		err = runOnce(cfg, reader, logger, format, setpoint)
	}
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func runOnce(cfg *config.Config, reader kostal.InverterReader, logger *zap.Logger,
	format export.Format, batCharge *float64) error {

	start := time.Now()
	snapshot, err := reader.ReadAll()
	if err != nil {
		return err
	}
	logger.Info("query complete",
		zap.Int("registers", len(snapshot)), zap.Duration("elapsed", time.Since(start)))

	if err := export.WriteSnapshot(os.Stdout, format, snapshot); err != nil {
		return err
	}

	flow, err := kostal.PowerFlowFromSnapshot(snapshot)
	if err != nil {
		return err
	}
	if format == export.FormatTable {
		fmt.Println("----------------------------------")
	}
	if err := export.WriteMetrics(os.Stdout, format, kostal.Derive(*flow)); err != nil {
		return err
	}

	if batCharge != nil {
		logger.Info("setting battery charge power", zap.Float64("watts", *batCharge))
		if err := reader.SetBatteryChargePower(float32(*batCharge)); err != nil {
			return err
		}
	}

	if cfg.MQTT.Enable {
		return publishOnce(cfg, reader, logger)
	}
	return nil
}

func publishOnce(cfg *config.Config, reader kostal.InverterReader, logger *zap.Logger) error {
	mqttClient, err := connectMQTT(cfg, logger)
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect(1 * time.Second)

	mon := monitor.NewMonitor(reader, mqttClient, 0, logger)
	published, err := mon.PublishOnce()
	if err != nil {
		return err
	}
	logger.Info("published to MQTT", zap.Int("topics", published))
	return nil
}

func runWatch(cfg *config.Config, reader kostal.InverterReader, logger *zap.Logger) error {
	mqttClient, err := connectMQTT(cfg, logger)
	if err != nil {
		return err
	}
	defer mqttClient.Disconnect(1 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := monitor.NewMonitor(reader, mqttClient,
		time.Duration(cfg.MonitorConfig.PollIntervalMillis)*time.Millisecond, logger)
	if err := mon.Start(ctx); err != nil {
		return err
	}
	defer mon.Stop()

	<-ctx.Done()
	return nil
}

func runServe(cfg *config.Config, reader kostal.InverterReader, logger *zap.Logger) error {
	apiServer := server.NewServer(*cfg, reader, logger)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	err := apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")
	return nil
}

func connectMQTT(cfg *config.Config, logger *zap.Logger) (*mqtt.MQTTClient, error) {
	mqttClient := mqtt.CreateMQTTClient(cfg, mqtt.OptsFromConfig(cfg), nil, nil)

	errCh := make(chan error, 1)
	mqttClient.Connect(func(err error) { errCh <- err }, 10*time.Second)
	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	logger.Info("connected to MQTT broker", zap.String("host", cfg.MQTT.Host))
	return mqttClient, nil
}

func buildReader(cfg *config.Config, logger *zap.Logger, mock bool) (kostal.InverterReader, error) {
	if mock {
		return kostal.CreateTestInverterReader()
	}
	return kostal.CreateQuery(cfg.InverterModbusTcp.Host, cfg.InverterModbusTcp.Port,
		uint8(cfg.InverterModbusTcp.UnitId),
		time.Duration(cfg.InverterModbusTcp.TimeoutMillis)*time.Millisecond,
		logger, nil)
}

func initConfig(mock bool) (*config.Config, error) {

	// alias PORT => KOSTAL_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("KOSTAL_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("kostal")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	// check and fix base topic
	baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return nil, errors.New("invalid base topic. can only contain letters, numbers, underscores and slashes")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check bounds
	if cfg.InverterModbusTcp.Host == "" && !mock {
		return nil, errors.New("config param inverter_modbus_tcp.host is required")
	}
	if cfg.InverterModbusTcp.UnitId > 255 {
		return nil, errors.New("config param inverter_modbus_tcp.unit_id should be <= 255")
	}
	if cfg.MonitorConfig.PollIntervalMillis < 1000 {
		return nil, errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}

	return &cfg, nil
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Debug("Using", "config", cfg)
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("inverter_modbus_tcp.port", 1502)
	viper.SetDefault("inverter_modbus_tcp.unit_id", 71)
	viper.SetDefault("inverter_modbus_tcp.timeout_millis", 1000)
	viper.SetDefault("mqtt.enable", false)
	viper.SetDefault("mqtt.base_topic", "kostal")
	viper.SetDefault("monitor.poll_interval_millis", 5000)
	viper.SetDefault("port", 8080)
}
