package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RevREB/auto-claude/internal/branch"
)

// newMigrateCmd creates the migrate command
func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Convert the repository to the hierarchical branch model",
		Long: `Convert a flat or legacy-worktree repository to the hierarchical model.

Creates main and dev as needed and renames auto-claude/* branches into the
feature/ namespace. Migration never rebases existing feature work; branches
that are not based on dev are reported as warnings instead. Safe to re-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrator := branch.NewMigrator(opts.projectDir)
			migrator.Runner = opts.runner(opts.projectDir)
			result := migrator.Migrate(cmd.Context(), dryRun)

			if opts.jsonOut {
				return printJSON(result)
			}

			splog := opts.splog
			for _, created := range result.BranchesCreated {
				splog.Info("created %s", splog.Branch(created))
			}
			for _, renamed := range result.BranchesRenamed {
				splog.Info("renamed %s -> %s", splog.Branch(renamed.Old), splog.Branch(renamed.New))
			}
			for _, warning := range result.Warnings {
				splog.Warn("%s", warning)
			}
			for _, errMsg := range result.Errors {
				splog.Error("%s", errMsg)
			}
			if !result.Success {
				return fmt.Errorf("migration failed")
			}
			if dryRun {
				splog.Info("dry run; no changes made")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what migration would do without changing anything")

	return cmd
}
