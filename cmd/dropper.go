package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/indieinfra/dropper/config"
	"github.com/indieinfra/dropper/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configFile string
	envFile    string
	cfg        *config.Config
}

func main() {
	log.SetPrefix("dropper: ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lmsgprefix)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "dropper",
		Short: "Drop PNG, JPG and JPEG images onto an upload endpoint",
		Long: `dropper posts image files to an upload endpoint as a single
multipart request, shows upload progress, and reports the outcome the way
the drop zone widget does.

Configuration is read from a YAML file (--config), DROPPER_* environment
variables and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to the configuration file (i.e., /etc/dropper.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before the configuration")

	rootCmd.AddCommand(
		uploadCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)

	return rootCmd
}

func (o *rootOptions) load() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", o.envFile, err)
		}
	}

	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.SetDebug(cfg.Debug)
	o.cfg = cfg
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dropper %s (%s)\n", version, commit)
		},
	}
}
