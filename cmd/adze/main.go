// Command adze evaluates Adze Lisp scripts into solid models and works
// with saved project files.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/adze/pkg/engine"
	"github.com/chazu/adze/pkg/feature"
	"github.com/chazu/adze/pkg/history"
	"github.com/chazu/adze/pkg/project"
	"github.com/chazu/adze/pkg/tessellate"
)

var verbose bool

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	root := &cobra.Command{
		Use:           "adze",
		Short:         "Adze is a script-driven parametric solid modeler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newEvalCmd())
	root.AddCommand(newReplayCmd())
	root.AddCommand(newInfoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newEvalCmd() *cobra.Command {
	var meshOut string
	var projectOut string

	cmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a script and print the resulting scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			eng := engine.NewEngine(newLogger())
			hist, evalErrs, err := eng.Evaluate(string(source))
			if err != nil {
				return err
			}
			if len(evalErrs) > 0 {
				for _, e := range evalErrs {
					fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
				}
				return fmt.Errorf("%d evaluation error(s)", len(evalErrs))
			}

			printHistory(cmd, hist)
			printScene(cmd, hist)

			if meshOut != "" {
				if err := writeMeshes(meshOut, hist); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote meshes to %s\n", meshOut)
			}
			if projectOut != "" {
				data, err := project.Save(project.Snapshot(hist))
				if err != nil {
					return err
				}
				if err := os.WriteFile(projectOut, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote project to %s\n", projectOut)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&meshOut, "mesh", "", "write render meshes as JSON to this path")
	cmd.Flags().StringVar(&projectOut, "save", "", "write the feature history as a project file")
	return cmd
}

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <project>",
		Short: "Load a project file and recompute its feature history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			p, err := project.Load(data, feature.Default())
			if err != nil {
				return err
			}
			hist, err := project.Replay(p, feature.Default(), newLogger())
			if err != nil {
				return err
			}

			printHistory(cmd, hist)
			printScene(cmd, hist)

			for _, entry := range hist.Entries() {
				if entry.Status == history.StatusFailed {
					return fmt.Errorf("feature %q failed: %v", entry.Feature.ID(), entry.Err)
				}
			}
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "List registered feature types and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := feature.Default()
			for _, typeName := range reg.Types() {
				ctor, err := reg.Get(typeName)
				if err != nil {
					return err
				}
				f := ctor("_")
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", typeName)
				for _, spec := range f.Schema() {
					fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %-20s", spec.Name, spec.Type)
					if spec.Default != nil {
						fmt.Fprintf(cmd.OutOrStdout(), " default=%v", spec.Default)
					}
					if len(spec.Options) > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), " options=%v", spec.Options)
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}
			return nil
		},
	}
}

func printHistory(cmd *cobra.Command, hist *history.Engine) {
	for _, entry := range hist.Entries() {
		line := fmt.Sprintf("%-10s %-16s %s", entry.Status, entry.Feature.Type(), entry.Feature.ID())
		if entry.Err != nil {
			line += "  " + entry.Err.Error()
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
}

func printScene(cmd *cobra.Command, hist *history.Engine) {
	for _, a := range hist.Scene().Artifacts() {
		if s, ok := a.AsSolid(); ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %d triangles  volume %.3f\n",
				a.Name(), s.TriangleCount(), s.Volume())
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s)\n", a.Name(), a.Kind())
	}
}

func writeMeshes(path string, hist *history.Engine) error {
	meshes := tessellate.Scene(hist.Scene())
	data, err := json.MarshalIndent(meshes, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
