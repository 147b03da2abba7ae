package main

import (
	"github.com/spf13/cobra"

	"github.com/codimo/promptdiff/internal/auth"
	"github.com/codimo/promptdiff/internal/diff"
	"github.com/codimo/promptdiff/internal/protocol"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prompt store over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := protocol.NewServer(store, diff.NewCache(a.engine(), a.cfg.Diff.CacheSize), protocol.Options{
				Verifier:  auth.FromToken(a.cfg.Server.Token),
				Logger:    a.logger,
				RateLimit: a.cfg.Server.RateLimit,
				Burst:     a.cfg.Server.Burst,
				Context:   a.cfg.Diff.Context,
			})
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
