// Package cli wires the branch engine's operations into a cobra command
// tree. The production caller is an in-process API layer; this surface
// exists for scripting and debugging, and every command can emit its
// result struct as JSON.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RevREB/auto-claude/internal/config"
	"github.com/RevREB/auto-claude/internal/git"
	"github.com/RevREB/auto-claude/internal/output"
)

type rootOptions struct {
	configPath string
	projectDir string
	jsonOut    bool

	cfg   *config.Config
	splog *output.Splog
}

// runner builds a command runner honoring the configured git timeout.
func (opts *rootOptions) runner(dir string) *git.CommandRunner {
	r := git.NewCommandRunner(dir)
	if opts.cfg.CommandTimeout > 0 {
		r.Timeout = opts.cfg.CommandTimeout
	}
	return r
}

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "autoclaude",
		Short: "Manage the hierarchical branching model for automated task execution",
		Long: `autoclaude manages a hierarchical git branching model
(main -> release/{version} -> dev -> feature/{task} -> feature/{task}/{subtask})
used to coordinate automated, task-scoped code changes across isolated clones.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg

			splog, err := output.NewSplogWithFile(cfg.LogFile)
			if err != nil {
				return err
			}
			opts.splog = splog
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVarP(&opts.projectDir, "dir", "C", ".", "project directory")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "emit results as JSON")

	rootCmd.AddCommand(newDetectCmd(opts))
	rootCmd.AddCommand(newMigrateCmd(opts))
	rootCmd.AddCommand(newPreviewCmd(opts))
	rootCmd.AddCommand(newMergeCmd(opts))
	rootCmd.AddCommand(newReleaseCmd(opts))
	rootCmd.AddCommand(newCloneCmd(opts))
	rootCmd.AddCommand(newValidateCmd(opts))

	return rootCmd
}

// printJSON renders any result struct as indented JSON on stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
