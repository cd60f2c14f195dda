package main

import (
	"log"

	"github.com/indieinfra/dropper/receiver"
	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run a local upload endpoint that checks and discards uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg

			ropts := receiver.OptionsFromConfig(cfg)
			ropts.Logger = log.Default()

			log.Println("starting http server...")
			srv := receiver.NewServer(cfg.Receiver.Address, cfg.Receiver.Port, receiver.Handler(ropts))
			return srv.ListenAndServe(cmd.Context())
		},
	}
}
