package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parking-facility/internal/config"
	"parking-facility/internal/insights"
	"parking-facility/internal/logging"
	"parking-facility/internal/parking"
	"parking-facility/internal/server"
	"parking-facility/internal/shell"
	"parking-facility/internal/store"
)

var mode = flag.String("mode", "server", "Mode to run: cli, server, or both")

func main() {
	flag.Parse()

	cfg := config.Load()
	logging.Init(cfg.Environment == "development")
	log := logging.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryProvider, err := parking.NewTelemetryProvider()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open state store")
	}
	defer st.Close()

	facility := parking.NewFacility(parking.Tariff{
		HourlyRate: cfg.HourlyRate,
		MinimumFee: cfg.MinimumFee,
	}, parking.SystemClock())

	if err := store.Restore(ctx, st, facility); err != nil {
		log.Fatal().Err(err).Msg("failed to restore facility state")
	}
	if facility.Stats().TotalSlots == 0 {
		for i := 0; i < cfg.InitialCapacity; i++ {
			facility.AddSlot(fmt.Sprintf("S%02d", i+1))
		}
		log.Info().Int("capacity", cfg.InitialCapacity).Msg("provisioned fresh facility")
	} else {
		log.Info().Int("slots", facility.Stats().TotalSlots).Msg("restored facility state")
	}

	instrumented, err := parking.NewInstrumentedFacility(facility, telemetryProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to instrument facility")
	}

	saver := store.NewSaver(st, facility, cfg.SaveInterval)
	go saver.Run(ctx)

	summarizer := buildSummarizer(cfg, telemetryProvider)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	switch *mode {
	case "cli":
		runCLI(ctx, cancel, facility, summarizer, cfg, sigChan)
	case "server":
		runServer(ctx, cancel, instrumented, summarizer, cfg, sigChan)
	case "both":
		runBoth(ctx, cancel, facility, instrumented, summarizer, cfg, sigChan)
	default:
		log.Fatal().Str("mode", *mode).Msg("invalid mode, must be cli, server, or both")
	}

	// State must be durable before the process exits so the last
	// transactions are never lost.
	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := saver.Flush(flushCtx); err != nil {
		log.Error().Err(err).Msg("final state flush failed")
	}

	shutdownTelemetry(telemetryProvider)
}

func buildSummarizer(cfg *config.Config, telemetry *parking.TelemetryProvider) *insights.Client {
	client := &insights.Client{
		Model:         cfg.InsightsModel,
		FallbackModel: cfg.FallbackModel,
		Currency:      cfg.Currency,
		Tracer:        telemetry.Tracer(),
	}
	client.Primary = buildProvider(cfg.InsightsProvider, cfg)
	client.Fallback = buildProvider(cfg.FallbackProvider, cfg)
	return client
}

func buildProvider(name string, cfg *config.Config) insights.Provider {
	switch name {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil
		}
		return insights.NewOpenAIProvider(cfg.OpenAIAPIKey)
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil
		}
		return insights.NewAnthropicProvider(cfg.AnthropicAPIKey)
	default:
		return nil
	}
}

func runCLI(ctx context.Context, cancel context.CancelFunc, facility *parking.Facility, summarizer *insights.Client, cfg *config.Config, sigChan chan os.Signal) {
	go func() {
		<-sigChan
		logging.Logger().Info().Msg("shutting down")
		cancel()
	}()

	sh := shell.New(facility, summarizer, cfg.Currency)
	sh.Run(ctx)
}

func runServer(ctx context.Context, cancel context.CancelFunc, facility *parking.InstrumentedFacility, summarizer *insights.Client, cfg *config.Config, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, server.NewHandler(facility, summarizer, cfg.Currency))

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger().Error().Err(err).Msg("server error")
	}
}

func runBoth(ctx context.Context, cancel context.CancelFunc, facility *parking.Facility, instrumented *parking.InstrumentedFacility, summarizer *insights.Client, cfg *config.Config, sigChan chan os.Signal) {
	srv := server.NewServer(cfg.Port, server.NewHandler(instrumented, summarizer, cfg.Currency))

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger().Error().Err(err).Msg("server error")
		}
	}()

	go func() {
		<-sigChan
		logging.Logger().Info().Msg("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger().Error().Err(err).Msg("server shutdown error")
		}

		cancel()
	}()

	sh := shell.New(facility, summarizer, cfg.Currency)
	sh.Run(ctx)
}

func shutdownTelemetry(telemetryProvider *parking.TelemetryProvider) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
		logging.Logger().Error().Err(err).Msg("telemetry shutdown error")
	}
}
