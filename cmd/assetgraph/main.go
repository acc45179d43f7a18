// cmd/assetgraph/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	apperrors "assetgraph/internal/errors"
	"assetgraph/internal/graph"
	"assetgraph/internal/loader"
	"assetgraph/internal/logging"
	"assetgraph/internal/project"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	rootDir  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "assetgraph",
	Short: "Assetgraph loads asset directories into a build graph",
	Long: `Assetgraph binds directories of a game project to loader nodes, follows
them across renames and re-scans them only when something below them changed.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize an assetgraph project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.Initialize(rootDir); err != nil {
				return fmt.Errorf("initializing project: %w", err)
			}
			fmt.Println("Initialized assetgraph project in", rootDir)
			return nil
		},
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(newLoaderCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newStatusCmd())
}

// openProject loads the configuration under --root and opens the project.
func openProject() (*project.Project, error) {
	cfg, err := project.Load(rootDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := logging.NewDevelopment(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	p, err := project.Open(cfg, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening project: %w", err)
	}
	return p, nil
}

// resolveID accepts a full loader ID or a unique prefix of one.
func resolveID(p *project.Project, ref string) (string, error) {
	recs, err := p.Runner.List()
	if err != nil {
		return "", err
	}
	var matches []*graph.Record
	for _, rec := range recs {
		if rec.Data.ID == ref {
			return ref, nil
		}
		if strings.HasPrefix(rec.Data.ID, ref) || rec.Data.Name == ref {
			matches = append(matches, rec)
		}
	}
	switch len(matches) {
	case 0:
		return "", apperrors.NotFound(fmt.Sprintf("loader not found: %s", ref))
	case 1:
		return matches[0].Data.ID, nil
	default:
		return "", apperrors.ValidationError(fmt.Sprintf("ambiguous loader reference: %s", ref), nil)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// printResults writes one line per evaluated target and the directories a
// broken loader could point at instead.
func printResults(p *project.Project, report *graph.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	blue := color.New(color.FgBlue).SprintFunc()

	for _, res := range report.Results {
		label := fmt.Sprintf("%s  %s [%s]", shortID(res.NodeID), res.NodeName, res.Target)
		if res.Repair.Kind != loader.RepairNone {
			fmt.Printf("%s %s: %s -> %s\n", blue("repaired"), label, res.Repair.From, res.Repair.To)
		}
		switch {
		case res.Err != nil:
			fmt.Printf("%s %s: %s\n", red("failed"), label, res.Error)
			printSuggestions(p, res)
		case res.Revisited:
			fmt.Printf("%s %s: %d assets\n", green("loaded"), label, res.Assets)
		default:
			fmt.Printf("%s %s\n", yellow("unchanged"), label)
		}
		if res.Warning != "" {
			fmt.Printf("  %s %s\n", yellow("warning:"), res.Warning)
		}
	}
}

func printSuggestions(p *project.Project, res graph.Result) {
	if !apperrors.IsType(res.Err, apperrors.ErrorTypeMissingDirectory) {
		return
	}
	rec, err := p.Runner.Get(res.NodeID)
	if err != nil {
		return
	}
	dirs := p.Runner.Loader(rec).SuggestDirectories(res.Target)
	if len(dirs) == 0 {
		return
	}
	fmt.Println("  Available Directories:")
	for _, d := range dirs {
		fmt.Println("   ", d)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
