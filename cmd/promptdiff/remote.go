package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codimo/promptdiff/internal/auth"
	"github.com/codimo/promptdiff/internal/diff"
	"github.com/codimo/promptdiff/internal/protocol"
)

func (a *app) client(url string) *protocol.Client {
	if url == "" {
		url = a.cfg.Server.URL
	}
	return protocol.NewClient(url, auth.FromToken(a.cfg.Server.Token))
}

func newRemoteCmd(a *app) *cobra.Command {
	var (
		url     string
		version int
		opts    renderOptions
	)

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Show a version diff from a promptdiff server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client(url).GetPromptDiff(cmd.Context(), version, protocol.ModeUnified)
			if err != nil {
				return err
			}

			opts.from = "old_prompt"
			opts.to = "new_prompt"
			return a.render(cmd.OutOrStdout(), &diff.Diff{Hunks: resp.Hunks}, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&url, "url", "", "server URL (default from config)")
	cmd.Flags().IntVar(&version, "version", 0, "version number")
	opts.register(cmd)

	cmd.AddCommand(newRemoteSetCmd(a, &url))
	return cmd
}

func newRemoteSetCmd(a *app, url *string) *cobra.Command {
	var meta []string

	cmd := &cobra.Command{
		Use:   "set FILE",
		Short: "Push FILE to the server as the next prompt version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metadata, err := parseMetadata(meta)
			if err != nil {
				return err
			}
			text, err := readInput(args[0])
			if err != nil {
				return err
			}

			u, err := a.client(*url).SetPrompt(cmd.Context(), text, metadata)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version %d -> %d\n", u.PreviousVersion, u.Version)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "metadata as key=value (repeatable)")
	return cmd
}
