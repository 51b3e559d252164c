package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/eth2030/dassim/pkg/dasconfig"
	"github.com/eth2030/dassim/pkg/dassim"
	"github.com/eth2030/dassim/pkg/simmetrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a single simulation while exposing its step-by-step metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := dasconfig.Load(cfgFile)
		if err != nil {
			return err
		}
		if f.Shape == nil {
			return fmt.Errorf("dassim serve: config file has no top-level shape")
		}

		exporter := simmetrics.NewPrometheusExporter(simmetrics.DefaultRegistry, simmetrics.DefaultPrometheusConfig())
		srv := &http.Server{Addr: serveAddr, Handler: exporter.Handler()}

		log := logger()
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		log.Info("serving metrics", "addr", serveAddr, "path", "/metrics")

		sim := dassim.NewSimulator(*f.Shape, f.Config, log)
		sim.InitValidators()
		sim.InitNetwork()
		result := sim.Run()
		log.Info("run complete", "tta", result.TTA, "missingSamples", result.MissingSamples, "stalled", result.Stalled)

		shutdownCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":9469", "address to serve /metrics on while the run executes")
}
