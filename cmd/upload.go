package main

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/indieinfra/dropper/config"
	"github.com/indieinfra/dropper/dropzone"
	"github.com/indieinfra/dropper/notify"
	"github.com/indieinfra/dropper/transport"
	"github.com/indieinfra/dropper/widget"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var errUploadFailed = errors.New("upload did not succeed")

func uploadCmd(opts *rootOptions) *cobra.Command {
	var color, quiet bool

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Drop files onto the configured endpoint",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg

			files := make([]dropzone.File, 0, len(args))
			for _, path := range args {
				f, err := dropzone.FromPath(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			var reg *prometheus.Registry
			var metrics *widget.Metrics
			if cfg.Metrics.Enabled {
				reg = prometheus.NewRegistry()
				metrics = widget.NewMetrics(reg, cfg.Metrics.Namespace)
			}

			recorder := &notify.Recorder{}
			sink := notify.Multi(notify.NewWriterSink(cmd.OutOrStdout(), color), recorder)

			w := widget.New(newClient(cfg), sink, widgetOptions(cfg, metrics)...)

			if !quiet {
				var mu sync.Mutex
				progress := cmd.ErrOrStderr()
				cancel := w.Subscribe(func(s widget.State) {
					if !s.Uploading {
						return
					}
					mu.Lock()
					defer mu.Unlock()
					fmt.Fprintf(progress, "\r%s", widget.Render(s, w.Accept()))
				})
				defer cancel()
			}

			w.DragEnter()
			w.Drop(cmd.Context(), files)

			if !quiet && len(files) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr())
			}

			if reg != nil && cfg.Metrics.Textfile != "" {
				if err := prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg); err != nil {
					log.Printf("failed to write metrics to %s: %v", cfg.Metrics.Textfile, err)
				}
			}

			for _, n := range recorder.All() {
				if n.Destructive() {
					return errUploadFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&color, "color", false, "Colour notification marks")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress line")

	return cmd
}

func newClient(cfg *config.Config) *transport.Client {
	copts := []transport.Option{
		transport.WithField(cfg.Upload.Field),
		transport.WithTimeout(cfg.Upload.Timeout),
		transport.WithLogger(log.Default()),
	}
	for k, v := range cfg.Upload.Headers {
		copts = append(copts, transport.WithHeader(k, v))
	}

	return transport.New(cfg.Upload.Endpoint, copts...)
}

func widgetOptions(cfg *config.Config, metrics *widget.Metrics) []widget.Option {
	accept := make(dropzone.Accept, 0, len(cfg.Accept))
	for _, rule := range cfg.Accept {
		accept = append(accept, dropzone.Rule{MIMEType: rule.MIME, Extensions: rule.Extensions})
	}

	return []widget.Option{
		widget.WithAccept(accept),
		widget.WithZoneOptions(dropzone.Options{
			MaxFiles: cfg.Limits.MaxFiles,
			MinSize:  cfg.Limits.MinFileSize,
			MaxSize:  cfg.Limits.MaxFileSize,
		}),
		widget.WithMessages(widget.Messages{
			SuccessTitle:           cfg.Messages.SuccessTitle,
			SuccessDescription:     cfg.Messages.SuccessDescription,
			FailureTitle:           cfg.Messages.FailureTitle,
			FailureFallback:        cfg.Messages.FailureFallback,
			InvalidTypeTitle:       cfg.Messages.InvalidTypeTitle,
			InvalidTypeDescription: cfg.Messages.InvalidTypeDescription,
			TooLargeTitle:          cfg.Messages.TooLargeTitle,
			TooSmallTitle:          cfg.Messages.TooSmallTitle,
			TooManyTitle:           cfg.Messages.TooManyTitle,
		}),
		widget.WithLogger(log.Default()),
		widget.WithMetrics(metrics),
	}
}
