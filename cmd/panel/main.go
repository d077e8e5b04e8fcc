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

	adactor "studiopanel/internal/adapter/actor"
	"studiopanel/internal/config"
	"studiopanel/internal/core/actor"
	"studiopanel/internal/server"
	"studiopanel/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
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

	slog.Info("studiopanel", "version", versioninfo.Short())

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	es := &eventstream.EventStream{}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewSessionActor(*cfg,
			adactor.DefaultHubGatewayFactory(cfg.Hub.ProxyBase),
			adactor.DefaultSettingsStoreFactory(cfg.Hub.ProxyBase),
			es, logger)
	})
	pid, err := ctx.SpawnNamed(props, "session")
	if err != nil {
		return
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => STUDIOPANEL_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("STUDIOPANEL_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("studiopanel")
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

	// check and fix hub URL
	hubURL, err := config.CheckHubURL(cfg.Hub.URL)
	if err != nil {
		return nil, err
	}
	cfg.Hub.URL = hubURL

	// check bounds
	if cfg.Panel.PollIntervalMillis < 1000 {
		return nil, errors.New("config param panel.poll_interval_millis should be >= 1000")
	}
	if cfg.Panel.PersistDebounceMillis < 100 {
		return nil, errors.New("config param panel.persist_debounce_millis should be >= 100")
	}
	if cfg.Panel.ApplyDebounceMillis < 50 {
		return nil, errors.New("config param panel.apply_debounce_millis should be >= 50")
	}
	if cfg.MQTT.Enable && cfg.MQTT.Host == "" {
		return nil, errors.New("config param mqtt.host is required when mqtt.enable is set")
	}

	return &cfg, nil
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("panel.poll_interval_millis", 3000)
	viper.SetDefault("panel.persist_debounce_millis", 500)
	viper.SetDefault("panel.apply_debounce_millis", 300)
	viper.SetDefault("mqtt.enable", false)
	viper.SetDefault("mqtt.base_topic", "studiopanel")
	viper.SetDefault("port", 8080)
}

func safePrintConfig(cfg config.Config) {
	cfg.Hub.Token = "*redacted*"
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
