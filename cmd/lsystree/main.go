package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smasonuk/lsystree"
	"github.com/smasonuk/lsystree/viewer"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	config  string
	steps   int
	rules   []string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "lsystree",
		Short:        "Grow and view L-system plants",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			lsystree.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.config, "config", "c", "", "plant config file (.toml, .yaml or .yml)")
	flags.IntVarP(&opts.steps, "steps", "n", -1, "growth steps, overriding the config")
	flags.StringArrayVarP(&opts.rules, "rule", "r", nil, "rule X=replacement applied over the config, repeatable")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newGrowCmd(opts), newPartsCmd(opts), newViewCmd(opts))
	return root
}

func (o *options) load() (*lsystree.Config, *lsystree.LSystem, error) {
	cfg := lsystree.DefaultConfig()
	if o.config != "" {
		var err error
		if cfg, err = lsystree.LoadConfig(o.config); err != nil {
			return nil, nil, err
		}
	}
	if o.steps >= 0 {
		cfg.Steps = o.steps
	}
	sys, err := lsystree.NewLSystemFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(o.rules) == 0 {
		return cfg, sys, nil
	}
	for _, s := range o.rules {
		sym, repl, err := lsystree.ParseRule(s)
		if err != nil {
			return nil, nil, err
		}
		sys.SetRule(sym, repl)
	}
	if _, err := sys.Regrow(); err != nil {
		return nil, nil, err
	}
	return cfg, sys, nil
}

func newGrowCmd(opts *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "Print the generation strings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sys, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !all {
				_, err := fmt.Fprintln(out, sys.Current())
				return err
			}
			for i, s := range sys.States() {
				if _, err := fmt.Fprintf(out, "%d\t%s\n", i, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "print every generation from the axiom")
	return cmd
}

func newPartsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parts",
		Short: "Build the plant and list its placed parts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, sys, err := opts.load()
			if err != nil {
				return err
			}
			frag, err := sys.Build()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NODE\tSYMBOL\tKIND\tLEVEL\tX\tY\tZ\tLENGTH\tWIDTH\tCOLOR")
			for _, n := range frag.Nodes() {
				p := n.Part
				pos := p.Position()
				fmt.Fprintf(tw, "%s\t%c\t%s\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.4f\t%s\n",
					n.Key, n.Symbol, p.Kind(), n.Level, pos[0], pos[1], pos[2],
					p.Length(), p.Width(), lsystree.FormatColor(p.Color()))
			}
			return tw.Flush()
		},
	}
}

func newViewCmd(opts *options) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open an interactive viewer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, sys, err := opts.load()
			if err != nil {
				return err
			}
			g, err := viewer.NewGame(sys, viewer.OptionsFromConfig(cfg.View))
			if err != nil {
				return err
			}
			if watch {
				if opts.config == "" {
					return fmt.Errorf("--watch needs --config")
				}
				w, err := viewer.Watch(opts.config)
				if err != nil {
					return err
				}
				defer w.Close()
				g.Watch(w, cfg)
			}
			return viewer.Run(g)
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the config file when it changes")
	return cmd
}
