package commands

import (
	"context"
	"log/slog"
	"path/filepath"

	"menufetcher/internal/batch"
	"menufetcher/internal/components/chrono"
	"menufetcher/internal/components/telemetry"
	"menufetcher/internal/halls"
	"menufetcher/internal/menu"
	"menufetcher/lib/restyutil"
)

// env is what every fetching command needs, close must be called when done.
type env struct {
	clock   chrono.API
	tel     telemetry.API
	set     *halls.Set
	sources []menu.Source
}

func hallsConfigPath() string {
	return filepath.Join(configDir, "halls.json5")
}

func newEnv(ctx context.Context) (*env, error) {
	clock, err := chrono.NewStandardImpl()
	if err != nil {
		return nil, err
	}
	tel := telemetry.SlogAPI{}

	cfg, err := halls.LoadConfig(hallsConfigPath())
	if err != nil {
		return nil, err
	}

	var opts halls.BuildOptions
	if dumpDir != "" {
		out, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return nil, err
		}
		opts.Dump = out
		slog.Info("dumping http exchanges", "dir", dumpDir)
	}

	set, err := halls.Build(ctx, cfg, clock, tel, opts)
	if err != nil {
		return nil, err
	}
	sources, err := set.Select(hallIds)
	if err != nil {
		set.Close()
		return nil, err
	}
	return &env{clock: clock, tel: tel, set: set, sources: sources}, nil
}

func (e *env) close() {
	err := e.set.Close()
	if err != nil {
		slog.Warn("failed to close halls", "err", err)
	}
}

func (e *env) run(ctx context.Context, f dateFlags) (batch.Result, error) {
	days, err := f.resolve(e.clock.Now(), e.clock.Location())
	if err != nil {
		return batch.Result{}, err
	}
	result, err := batch.Run(ctx, e.sources, days, e.tel, batch.Options{Parallelism: parallelism})
	if err != nil {
		return batch.Result{}, err
	}
	if n := result.Failures(); n > 0 {
		slog.Warn("some menus could not be fetched", "failures", n, "run_id", result.RunID)
	}
	return result, nil
}
