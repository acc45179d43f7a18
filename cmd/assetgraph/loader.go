package main

import (
	"fmt"
	"time"

	"assetgraph/internal/node"
	"assetgraph/internal/target"

	"github.com/spf13/cobra"
)

func newLoaderCmd() *cobra.Command {
	var loaderCmd = &cobra.Command{
		Use:   "loader",
		Short: "Manage loader nodes",
		Long:  `Create and configure loader nodes, which publish the assets of one directory per build target.`,
	}

	var addCmd = &cobra.Command{
		Use:   "add <name> <path>",
		Short: "Add a loader reading the given directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			if _, err := p.Index.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refreshing index: %w", err)
			}
			rec, err := p.Runner.AddLoader(args[0], args[1])
			if err != nil {
				return fmt.Errorf("adding loader: %w", err)
			}
			fmt.Printf("Created loader %s (%s)\n", rec.Data.Name, shortID(rec.Data.ID))
			return nil
		},
	}

	var importLegacyCmd = &cobra.Command{
		Use:   "import-legacy <name> <legacy-path>",
		Short: "Create a loader from a single legacy load path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			if _, err := p.Index.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refreshing index: %w", err)
			}
			rec, err := p.Runner.ImportLegacy(args[0], args[1])
			if err != nil {
				return fmt.Errorf("importing loader: %w", err)
			}
			fmt.Printf("Imported loader %s (%s)\n", rec.Data.Name, shortID(rec.Data.ID))
			return nil
		},
	}

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "List all loaders",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			recs, err := p.Runner.List()
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("No loaders found")
				return nil
			}

			fmt.Println("\nLoaders:")
			for _, rec := range recs {
				l := p.Runner.Loader(rec)
				fmt.Printf("%s  %s  %s  %s\n",
					shortID(rec.Data.ID),
					rec.UpdatedAt.Format(time.RFC3339),
					rec.Data.Name,
					l.LoadPath(target.Default),
				)
			}
			return nil
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show <loader>",
		Short: "Show a loader's configuration per target",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			id, err := resolveID(p, args[0])
			if err != nil {
				return err
			}
			rec, err := p.Runner.Get(id)
			if err != nil {
				return err
			}

			l := p.Runner.Loader(rec)
			fmt.Printf("Loader:  %s\n", rec.Data.Name)
			fmt.Printf("ID:      %s\n", rec.Data.ID)
			fmt.Printf("Created: %s\n", rec.CreatedAt.Format(time.RFC3339))
			fmt.Println("\nTargets:")
			for _, t := range rec.Settings.Targets() {
				out, err := p.Runner.Output(rec.Data.ID, t)
				if err != nil {
					return err
				}
				state := "not loaded"
				if out != nil {
					state = fmt.Sprintf("%d assets", len(out[node.DefaultOutput]))
				}
				fmt.Printf("  %-10s %-40s %s  (%s)\n", t, l.LoadPath(t), shortID(rec.Settings.IDs.Get(t)), state)
			}
			for _, c := range rec.Connections {
				fmt.Printf("\nConnected to %s %s\n", c.ToNode, c.ToPoint)
			}
			return nil
		},
	}

	var setPathCmd = &cobra.Command{
		Use:   "set-path <loader> <path>",
		Short: "Set the load path for a target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _ := cmd.Flags().GetString("target")

			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			id, err := resolveID(p, args[0])
			if err != nil {
				return err
			}
			rec, err := p.Runner.SetLoadPath(id, target.Target(t), args[1])
			if err != nil {
				return err
			}
			fmt.Printf("%s [%s] now loads %s\n", rec.Data.Name, target.Target(t), p.Runner.Loader(rec).LoadPath(target.Target(t)))
			return nil
		},
	}

	var unsetPathCmd = &cobra.Command{
		Use:   "unset-path <loader>",
		Short: "Remove a target override so it follows the default path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, _ := cmd.Flags().GetString("target")
			if t == "" {
				return fmt.Errorf("--target is required")
			}

			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			id, err := resolveID(p, args[0])
			if err != nil {
				return err
			}
			rec, err := p.Runner.UnsetLoadPath(id, target.Target(t))
			if err != nil {
				return err
			}
			fmt.Printf("%s [%s] follows the default path\n", rec.Data.Name, t)
			return nil
		},
	}

	var cloneCmd = &cobra.Command{
		Use:   "clone <loader>",
		Short: "Copy a loader and its per-target configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")

			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			id, err := resolveID(p, args[0])
			if err != nil {
				return err
			}
			rec, err := p.Runner.Clone(id, name)
			if err != nil {
				return err
			}
			fmt.Printf("Created loader %s (%s)\n", rec.Data.Name, shortID(rec.Data.ID))
			return nil
		},
	}

	var connectCmd = &cobra.Command{
		Use:   "connect <loader> <node> [point]",
		Short: "Connect a loader's output to a downstream node",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			id, err := resolveID(p, args[0])
			if err != nil {
				return err
			}
			var point string
			if len(args) == 3 {
				point = args[2]
			}
			if _, err := p.Runner.Connect(id, args[1], point); err != nil {
				return err
			}
			fmt.Println("Connection added")
			return nil
		},
	}

	var removeCmd = &cobra.Command{
		Use:   "remove <loader>",
		Short: "Remove a loader and its published output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProject()
			if err != nil {
				return err
			}
			defer p.Close()

			id, err := resolveID(p, args[0])
			if err != nil {
				return err
			}
			if err := p.Runner.Delete(id); err != nil {
				return err
			}
			fmt.Println("Loader removed")
			return nil
		},
	}

	setPathCmd.Flags().StringP("target", "t", "", "Build target (empty for the default)")
	unsetPathCmd.Flags().StringP("target", "t", "", "Build target")
	cloneCmd.Flags().StringP("name", "n", "", "Name of the copy")

	loaderCmd.AddCommand(addCmd, importLegacyCmd, listCmd, showCmd, setPathCmd, unsetPathCmd, cloneCmd, connectCmd, removeCmd)
	return loaderCmd
}
