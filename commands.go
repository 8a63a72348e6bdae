package main

import (
	"fmt"
	"time"

	"github.com/amirphl/counter-api/config"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/client"
	"github.com/spf13/cobra"
)

// rootOptions holds global flags for all commands
type rootOptions struct {
	EnvFile string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "counter-api",
		Short:         "HTTP backend over a persisted integer counter",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "optional dotenv file read before the environment")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newHealthcheckCommand(opts))

	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(opts)
		},
	}
}

func serve(opts *rootOptions) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}
	return runServer(cfg)
}

func newHealthcheckCommand(opts *rootOptions) *cobra.Command {
	var url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe /health of a running server and exit non-zero unless it answers 200",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				cfg, err := config.Load(opts.EnvFile)
				if err != nil {
					return err
				}
				url = fmt.Sprintf("http://%s/health", cfg.Server.Address())
			}
			return probe(url, timeout)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "health endpoint (defaults to SERVER_HOST:SERVER_PORT/health)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")

	return cmd
}

func probe(url string, timeout time.Duration) error {
	cc := client.New().SetTimeout(timeout)
	resp, err := cc.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Close()

	if resp.StatusCode() != fiber.StatusOK {
		return fmt.Errorf("health check failed: %s returned %d", url, resp.StatusCode())
	}
	return nil
}
