package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codimo/promptdiff/internal/diff"
	"github.com/codimo/promptdiff/internal/prompts"
)

func newInitCmd(a *app) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a prompt store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := ""
			if from != "" {
				text, err := readInput(from)
				if err != nil {
					return err
				}
				initial = text
			}

			if _, err := prompts.Init(a.cfg.Store.Dir, initial); err != nil {
				return err
			}
			a.logger.Info("store initialized", "dir", a.cfg.Store.Dir)
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized prompt store in %s\n", a.cfg.Store.Dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "file holding version 1 of the prompt")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var meta []string

	cmd := &cobra.Command{
		Use:   "set FILE",
		Short: "Store FILE as the next prompt version",
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

			store, err := a.openStore()
			if err != nil {
				return err
			}
			u, err := store.Set(text, metadata)
			if err != nil {
				return err
			}

			d, err := a.engine().Compute(u.OldPrompt, u.NewPrompt)
			if err != nil {
				return err
			}
			s := d.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Version %d -> %d (%s, %s)\n", u.PreviousVersion, u.Version,
				color.GreenString("+%d", s.Added), color.RedString("-%d", s.Removed))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&meta, "meta", nil, "metadata as key=value (repeatable)")
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var version int

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print a prompt version (default: current)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			var text string
			if version == 0 {
				_, text, err = store.Current()
			} else {
				text, err = store.Get(version)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "version number")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List prompt versions with their line changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			history := store.History()
			pairs := make([]diff.Pair, len(history))
			for i, v := range history {
				p, err := store.Pair(v.Number)
				if err != nil {
					return err
				}
				pairs[i] = diff.Pair{Before: p.Old, After: p.New}
			}

			diffs, err := diff.ComputeBatch(cmd.Context(), a.engine(), pairs, 0)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tCREATED\tHASH\tCHANGES\tMETADATA")
			for i, v := range history {
				s := diffs[i].Stats()
				fmt.Fprintf(tw, "%d\t%s\t%s\t+%d -%d\t%s\n",
					v.Number, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Hash.Short(), s.Added, s.Removed, formatMetadata(v.Metadata))
			}
			return tw.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var (
		version int
		opts    renderOptions
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the diff that produced a version (default: current)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			p, err := store.Pair(version)
			if err != nil {
				return err
			}

			d, err := a.engine().Compute(p.Old, p.New)
			if err != nil {
				return err
			}

			opts.from = fmt.Sprintf("version %d", max(p.Version-1, 1))
			opts.to = fmt.Sprintf("version %d", p.Version)
			return a.render(cmd.OutOrStdout(), d, opts)
		},
	}
	cmd.Flags().IntVar(&version, "version", 0, "version number")
	opts.register(cmd)
	return cmd
}

func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --meta %q, expected key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

func formatMetadata(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, " ")
}
