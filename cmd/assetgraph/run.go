package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"assetgraph/client"
	"assetgraph/internal/change"
	"assetgraph/internal/graph"
	"assetgraph/internal/loader"
	"assetgraph/internal/node"
	"assetgraph/internal/target"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Refresh the index and re-evaluate stale loaders",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")

			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			batch, report, err := p.Sync(cmd.Context(), printSink(verbose))
			if err != nil {
				return fmt.Errorf("running loaders: %w", err)
			}

			fmt.Printf("%d changes, %d of %d targets loaded\n", batch.Len(), report.Revisited(), len(report.Results))
			printResults(p, report)
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d loader targets failed", len(failed))
			}
			return nil
		},
	}
	runCmd.Flags().BoolP("verbose", "v", false, "Print every published asset")
	return runCmd
}

func newWatchCmd() *cobra.Command {
	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-evaluate loaders whenever the asset tree changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			_, report, err := p.Sync(ctx, printSink(verbose))
			if err != nil {
				return fmt.Errorf("initial run: %w", err)
			}
			printResults(p, report)

			w, err := p.NewWatcher(ctx)
			if err != nil {
				return err
			}
			fmt.Println("Watching", p.Config.Project.AssetsDir, "for changes (Ctrl+C to stop)")

			return w.Run(ctx, printSink(verbose), func(batch change.Batch, report *graph.Report) {
				if report.Revisited() == 0 {
					return
				}
				fmt.Printf("\n%d changes\n", batch.Len())
				printResults(p, report)
			})
		},
	}
	watchCmd.Flags().BoolP("verbose", "v", false, "Print every published asset")
	return watchCmd
}

func newStatusCmd() *cobra.Command {
	var statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show what every loader last published",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
				return remoteStatus(cmd.Context(), remote)
			}

			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			indexed, err := p.Index.Len()
			if err != nil {
				return err
			}
			recs, err := p.Runner.List()
			if err != nil {
				return err
			}

			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()

			fmt.Printf("Project: %s\n", p.Config.Project.Root)
			fmt.Printf("Indexed: %d paths\n\n", indexed)
			if len(recs) == 0 {
				fmt.Println("No loaders found")
				return nil
			}

			for _, rec := range recs {
				l := p.Runner.Loader(rec)
				fmt.Printf("%s  %s\n", shortID(rec.Data.ID), rec.Data.Name)
				for _, t := range rec.Settings.Targets() {
					out, err := p.Runner.Output(rec.Data.ID, t)
					if err != nil {
						return err
					}
					var state string
					switch {
					case loader.ValidateLoadPath(l.LoadPathFor(t), l.FullLoadPath(t)).Missing:
						state = red("missing")
					case out == nil:
						state = yellow("not loaded")
					default:
						state = green(fmt.Sprintf("%d assets", len(out[node.DefaultOutput])))
					}
					fmt.Printf("  %-10s %-40s %s\n", t, l.LoadPath(t), state)
				}
			}
			return nil
		},
	}
	statusCmd.Flags().String("remote", "", "Ask a running daemon instead (e.g. http://127.0.0.1:8420)")
	return statusCmd
}

func remoteStatus(ctx context.Context, baseURL string) error {
	c := client.New(baseURL)
	views, err := c.ListLoaders(ctx)
	if err != nil {
		return fmt.Errorf("querying daemon: %w", err)
	}
	if len(views) == 0 {
		fmt.Println("No loaders found")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, v := range views {
		fmt.Printf("%s  %s\n", shortID(v.ID), v.Name)
		for _, tv := range v.Targets {
			state := yellow("not loaded")
			if tv.Published {
				state = green(fmt.Sprintf("%d assets", tv.Assets))
			}
			fmt.Printf("  %-10s %-40s %s\n", tv.Target, tv.LoadPath, state)
		}
	}
	return nil
}

// printSink prints published assets when verbose is set.
func printSink(verbose bool) graph.Sink {
	if !verbose {
		return nil
	}
	return func(rec *graph.Record, t target.Target, conn *node.Connection, out node.Groups) {
		dest := "unconnected"
		if conn != nil {
			dest = conn.ToNode
		}
		fmt.Printf("%s [%s] -> %s\n", rec.Data.Name, t, dest)
		for _, ref := range out[node.DefaultOutput] {
			fmt.Printf("    %s\n", ref.ImportFrom)
		}
	}
}
