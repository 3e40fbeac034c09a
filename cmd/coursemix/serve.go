package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/coursemix/internal/api"
	"github.com/Veraticus/coursemix/internal/certs"
	"github.com/Veraticus/coursemix/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve progress data over a read-only HTTP API",
		Long: `Start an HTTP server exposing JSON endpoints:

  GET /v1/progress      GPA summary and projected graduation
  GET /v1/grades        grades, filterable by ?status=, ?term= and ?year=
  GET /v1/transcript    the academic progress report
  GET /v1/suggestions   courses eligible to take next
  GET /v1/reviews       course reviews, filterable by ?course=, ?difficulty=, ?q= and ?sort=

With --tls a self-signed certificate for localhost is generated on first use
and reused until it expires.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			e, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := &api.Options{
				Engine:  e,
				Logger:  slog.Default(),
				Address: viper.GetString("serve.address"),
			}
			if viper.GetBool("serve.tls") {
				certStore := certs.NewStore(config.ExpandPath(viper.GetString("serve.cert_dir")))
				if _, err := certStore.Ensure(); err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
				opts.CertFile = certStore.CertFile()
				opts.KeyFile = certStore.KeyFile()
			}

			server := api.NewServer(opts)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("Shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Stop(shutdownCtx)
		},
	}

	cmd.Flags().String("address", ":8080", "listen address")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	cmd.Flags().String("cert-dir", "~/.local/share/coursemix/certs", "directory holding the localhost certificate")
	_ = viper.BindPFlag("serve.address", cmd.Flags().Lookup("address"))
	_ = viper.BindPFlag("serve.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("serve.cert_dir", cmd.Flags().Lookup("cert-dir"))

	return cmd
}
