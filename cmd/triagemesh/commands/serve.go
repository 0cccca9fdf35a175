package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/triagemesh/triagemesh/metrics"
	"github.com/triagemesh/triagemesh/pipeline"
	"github.com/triagemesh/triagemesh/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the triage HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = rt.closer() }()

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		p := pipeline.New(rt.client, func(o *pipeline.Options) {
			o.SessionStore = rt.store
			o.Logger = rt.logger
			o.Metrics = m
		})

		srv := server.New(p, func(o *server.Options) {
			o.Logger = rt.logger
			o.Gatherer = reg
		})

		return srv.ListenAndServe(rt.cfg.Server.Addr)
	},
}
