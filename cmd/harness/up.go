package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/container-harness/harness"
	"github.com/example/container-harness/internal/harnesscfg"
	"github.com/example/container-harness/internal/logging"
	"github.com/example/container-harness/internal/manifest"
	"github.com/example/container-harness/internal/metrics"
)

func upCmd() *cobra.Command {
	var manifestPath, envFile, listen string
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Start the manifest's containers and hold them until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := harnesscfg.Load(configPath)
			if err != nil {
				return err
			}
			stop := logging.Init(cfg.Logging)
			defer stop()
			if envFile == "" {
				envFile = cfg.Properties.EnvFile
			}
			m, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}
			decl, err := m.Declarations()
			if err != nil {
				return err
			}
			if listen != "" {
				shutdown := serveMetrics(listen)
				defer shutdown()
			}
			return up(cmd.Context(), cfg, decl, envFile, cmd)
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "harness.yaml", "container manifest")
	cmd.Flags().StringVar(&envFile, "env-file", "", "write published properties to this dotenv file")
	cmd.Flags().StringVar(&listen, "listen", "", "serve /metrics and /healthz on this address")
	return cmd
}

func up(ctx context.Context, cfg *harnesscfg.Config, decl harness.Declarations, envFile string, cmd *cobra.Command) error {
	opts, probe := harness.FromConfig(cfg)
	ok, err := probe.Available(ctx)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	if !ok {
		return errNoDocker
	}

	run := harness.New("harness-up", decl, opts...)
	defer func() {
		// ctx is already canceled by the signal
		tctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Docker.TerminateTimeoutMs)*time.Millisecond*2)
		defer cancel()
		run.Close(tctx)
	}()
	if err := run.Enter(ctx, nil); err != nil {
		return err
	}

	props := run.Properties().Snapshot()
	if envFile != "" {
		if err := godotenv.Write(props, envFile); err != nil {
			return fmt.Errorf("write %s: %w", envFile, err)
		}
		logging.Info("properties written", logging.F("file", envFile), logging.F("count", len(props)))
	}
	for _, kv := range run.Properties().Environ() {
		fmt.Fprintln(cmd.OutOrStdout(), kv)
	}
	logging.Info("containers up, waiting for interrupt", logging.F("containers", run.Registry().Names()))
	<-ctx.Done()
	return nil
}

func serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("metrics server", logging.Err(err))
		}
	}()
	logging.Info("metrics server listening", logging.F("addr", addr))
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
