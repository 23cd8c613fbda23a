package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakecurve-service/internal/archive"
	"bakecurve-service/internal/bakecurve"
	"bakecurve-service/internal/notify"
	"bakecurve-service/internal/platform/config"
	"bakecurve-service/internal/platform/logger"
	"bakecurve-service/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	samplePeriod := config.GetEnvFloat("SAMPLE_PERIOD_SECONDS", bakecurve.DefaultSamplePeriod)
	archivePath := config.GetEnv("ARCHIVE_PATH", "")
	broker := config.GetEnv("MQTT_BROKER", "")

	log := logger.New(logLevel, logFormat)

	opts := []bakecurve.Option{bakecurve.WithSamplePeriod(samplePeriod)}

	if archivePath != "" {
		store, err := archive.Open(archivePath)
		if err != nil {
			log.Error("open archive", "path", archivePath, "error", err)
			os.Exit(1)
		}
		defer store.Close()
		opts = append(opts, bakecurve.WithArchiver(store))
	}

	if broker != "" {
		pub, err := notify.Connect(notify.Config{
			Broker:   broker,
			ClientID: config.GetEnv("MQTT_CLIENT_ID", "bakecurve-service"),
			Username: config.GetEnv("MQTT_USERNAME", ""),
			Password: config.GetEnv("MQTT_PASSWORD", ""),
			Topic:    config.GetEnv("MQTT_TOPIC_CURVES", notify.DefaultTopic),
			Retain:   config.GetEnvBool("MQTT_RETAIN", false),
		}, log)
		if err != nil {
			log.Error("connect mqtt", "broker", broker, "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		timeout := time.Duration(config.GetEnvInt("MQTT_PUBLISH_TIMEOUT_MS", 5000)) * time.Millisecond
		opts = append(opts, bakecurve.WithPublisher(pub), bakecurve.WithPublishTimeout(timeout))
	}

	detCfg := detectorConfigFromEnv(bakecurve.DefaultDetectorConfig())
	repo := bakecurve.NewInMemoryRepository()
	svc := bakecurve.NewService(repo, bakecurve.NewDetector(detCfg), log, opts...)
	met := metrics.New()
	h := bakecurve.NewHandler(svc, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetLoadedRecordings(repo.RecordingCount()) }).ServeHTTP(w, r)
	})
	h.Routes(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"log_level", logLevel,
		"sample_period_seconds", samplePeriod,
		"archive", archivePath != "",
		"mqtt", broker != "",
		"min_peak_temperature", detCfg.MinPeakTemperature,
		"min_curve_duration_samples", detCfg.MinCurveDurationSamples,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return
	}

	log.Info("server stopped")
}
