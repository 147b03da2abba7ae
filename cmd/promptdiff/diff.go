package main

import (
	"github.com/spf13/cobra"
)

func newDiffCmd(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two prompt files (use - for stdin)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := readInput(args[0])
			if err != nil {
				return err
			}
			after, err := readInput(args[1])
			if err != nil {
				return err
			}

			d, err := a.engine().Compute(before, after)
			if err != nil {
				return err
			}
			a.logger.Debug("diff computed", "old", args[0], "new", args[1], "hunks", len(d.Hunks))

			opts.from, opts.to = args[0], args[1]
			return a.render(cmd.OutOrStdout(), d, opts)
		},
	}
	opts.register(cmd)
	return cmd
}
