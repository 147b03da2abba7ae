package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codimo/promptdiff/internal/config"
	"github.com/codimo/promptdiff/internal/diff"
	"github.com/codimo/promptdiff/internal/prompts"
)

// app carries the settings shared by every command.
type app struct {
	configPath string
	storeDir   string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "promptdiff",
		Short:        "Compare prompt versions line by line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./"+config.DefaultPath+" if present)")
	root.PersistentFlags().StringVar(&a.storeDir, "store", "", "prompt store directory")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newDiffCmd(a),
		newInitCmd(a),
		newSetCmd(a),
		newGetCmd(a),
		newHistoryCmd(a),
		newShowCmd(a),
		newServeCmd(a),
		newRemoteCmd(a),
	)
	return root
}

func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storeDir != "" {
		cfg.Store.Dir = a.storeDir
	}
	if a.logLevel != "" {
		if _, err := config.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = a.logLevel
	}

	a.cfg = cfg
	a.logger = cfg.Log.NewLogger(logOut)
	return nil
}

func (a *app) engine() diff.Engine {
	return diff.NewEngine(a.cfg.Diff.MaxLines)
}

func (a *app) openStore() (*prompts.Store, error) {
	s, err := prompts.Open(a.cfg.Store.Dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w (run 'promptdiff init' first)", a.cfg.Store.Dir, err)
	}
	return s, nil
}

// renderOptions selects how a diff is printed.
type renderOptions struct {
	split       bool
	unifiedDiff bool
	stat        bool
	width       int
	context     int
	color       string
	from, to    string
}

func (o *renderOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.split, "split", false, "side-by-side view")
	cmd.Flags().BoolVar(&o.unifiedDiff, "unified-diff", false, "print a classic unified diff with @@ headers")
	cmd.Flags().BoolVar(&o.stat, "stat", false, "print line counts after the diff")
	cmd.Flags().IntVar(&o.width, "width", 0, "column width of the split view")
	cmd.Flags().IntVar(&o.context, "context", -1, "context lines for --unified-diff")
	cmd.Flags().StringVar(&o.color, "color", "auto", "colorize output: auto, always or never")
}

func (o *renderOptions) colored() (bool, error) {
	switch strings.ToLower(o.color) {
	case "auto":
		return !color.NoColor, nil
	case "always":
		return true, nil
	case "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color %q, must be one of: auto, always, never", o.color)
	}
}

func (a *app) render(w io.Writer, d *diff.Diff, o renderOptions) error {
	colored, err := o.colored()
	if err != nil {
		return err
	}
	width := o.width
	if width <= 0 {
		width = a.cfg.Diff.Width
	}
	context := o.context
	if context < 0 {
		context = a.cfg.Diff.Context
	}

	switch {
	case o.unifiedDiff:
		_, err = io.WriteString(w, d.UnifiedDiff(o.from, o.to, context))
	case o.split:
		err = diff.WriteSplit(w, d.Split(), width, colored)
	default:
		err = d.WriteUnified(w, colored)
	}
	if err != nil {
		return err
	}

	if o.stat {
		s := d.Stats()
		_, err = fmt.Fprintf(w, "%d additions(+), %d deletions(-), %d unchanged\n", s.Added, s.Removed, s.Unchanged)
	}
	return err
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
