package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"menufetcher/cmd/menufetcher/commands"
	"menufetcher/lib/telemetry"
	"menufetcher/lib/util/serviceutil"

	"github.com/joho/godotenv"
)

func logLevel() slog.Level {
	var level slog.Level
	err := level.UnmarshalText([]byte(os.Getenv("MENUFETCHER_LOG_LEVEL")))
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func main() {
	// a missing .env is fine, the environment is used as is
	envErr := godotenv.Load()

	telemetry.InitSlog(logLevel())
	if envErr != nil {
		slog.Debug("no .env loaded", "err", envErr)
	}

	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "menufetcher")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if tel.MeterProvider != nil {
		telemetry.InstrumentPerfStats(ctx, 10*time.Second)
	}

	code := commands.ExecuteContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = tel.Shutdown(shutdownCtx)
	if err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
	os.Exit(code)
}
