package main

import (
	"github.com/spf13/cobra"

	"github.com/san-kum/motiontwin/internal/server"
)

func serve(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	h := server.NewHandler(a.planner,
		server.WithLogger(a.log),
		server.WithMetrics(a.reg),
		server.WithPathLimit(serveLimit),
	)
	a.log.Info("planner ready",
		"cache", a.cfg.Cache.Backend,
		"integrator", a.cfg.Twin.Integrator,
		"max_velocity", a.cfg.Constraints.MaxVelocity,
	)
	return server.Run(cmd.Context(), addr, h, a.log)
}
