package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arborfs/flushnode/config"
	"github.com/arborfs/flushnode/flushengine"
	"github.com/arborfs/flushnode/flushpolicy"
	"github.com/arborfs/flushnode/tlsstats"
)

var (
	decideConfigPath string
	decideOnce       bool
)

var orderTypeColors = map[flushpolicy.OrderType]*color.Color{
	flushpolicy.OrderUrgent:    color.New(color.FgHiRed, color.Bold),
	flushpolicy.OrderMaxAge:    color.New(color.FgYellow),
	flushpolicy.OrderDiskBloat: color.New(color.FgMagenta),
	flushpolicy.OrderMemory:    color.New(color.FgCyan),
	flushpolicy.OrderNone:      color.New(color.FgWhite),
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Run one flush engine tick and print the resulting decision",
	Run: func(cmd *cobra.Command, args []string) {
		if !decideOnce {
			bailf("decide currently only supports --once")
		}
		if decideConfigPath == "" {
			bailf("--config is required")
		}

		nc, err := config.Load(decideConfigPath)
		checkErr(err)

		strategy, err := flushpolicy.NewPolicy(nc.Policy.ToPolicy())
		checkErr(err)

		registry := tlsstats.NewRegistry()
		handlers := buildDemoNode(registry)
		engine := flushengine.NewEngine(strategy, registry, handlers,
			flushengine.WithWorkerLimit(nc.WorkerLimit))

		decision, err := engine.RunOnce(context.Background())
		checkErr(err)

		printDecision(decision)
	},
}

func init() {
	rootCmd.AddCommand(decideCmd)
	decideCmd.Flags().StringVarP(&decideConfigPath, "config", "c", "", "path to flushnoded YAML config (required)")
	decideCmd.Flags().BoolVar(&decideOnce, "once", false, "run a single engine tick and exit")
}

func printDecision(d flushengine.Decision) {
	c, ok := orderTypeColors[d.OrderType]
	if !ok {
		c = color.New(color.FgWhite)
	}
	c.Printf("%s", d.OrderType.String())
	fmt.Printf(" — %d candidates, %d selected, %d failed, %s elapsed\n",
		d.Candidate, len(d.Selected), len(d.Failed), d.Elapsed)

	for i, fc := range d.Selected {
		fmt.Printf("  %2d. %-24s handler=%s\n", i+1, fc.Target.Name, fc.Handler.Name)
	}
	for _, f := range d.Failed {
		color.New(color.FgRed).Printf("  failed: %s/%s: %v\n", f.Handler, f.Target, f.Err)
	}
}
