package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RevREB/auto-claude/internal/merge"
)

func newEngine(opts *rootOptions) *merge.Engine {
	eng := merge.NewEngine(opts.projectDir)
	eng.Runner = opts.runner(opts.projectDir)
	eng.Remote = opts.cfg.Remote
	return eng
}

// newPreviewCmd creates the preview command
func newPreviewCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <source> [target]",
		Short: "Preview a merge without touching the working tree",
		Long: `Preview what merging source into target would do: commits ahead, diff
stats and conflicts. The preview uses merge-base and tree-level probing
only, so it is safe to run while a task is executing in the repository.

When target is omitted it is derived from the hierarchy (subtask -> feature,
feature -> dev, release -> main).`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := newEngine(opts)
			source := args[0]
			target, err := resolveTarget(eng, args)
			if err != nil {
				return err
			}

			preview, err := eng.Preview(cmd.Context(), source, target)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(preview)
			}

			splog := opts.splog
			splog.Info("%s -> %s", splog.Branch(source), splog.Branch(target))
			splog.Info("commits ahead: %d", preview.CommitsAhead)
			splog.Info("files changed: %d (+%d -%d)", preview.FilesChanged, preview.Additions, preview.Deletions)
			if preview.CanMerge {
				splog.Info("no conflicts detected")
			} else {
				splog.Warn("%d conflicting file(s):", len(preview.Conflicts))
				for _, c := range preview.Conflicts {
					splog.Warn("  %s (%s)", c.File, c.Type)
				}
			}
			return nil
		},
	}

	return cmd
}

// newMergeCmd creates the merge command
func newMergeCmd(opts *rootOptions) *cobra.Command {
	var (
		noCommit bool
		message  string
	)

	cmd := &cobra.Command{
		Use:   "merge <source> [target]",
		Short: "Merge a branch into its hierarchy target",
		Long: `Merge source into target with --no-ff. On conflict the merge is aborted,
the target branch is left untouched, and the conflicting files are listed.

When target is omitted it is derived from the hierarchy. Merging dev has
no implicit target; cut a release with 'autoclaude release create' instead.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng := newEngine(opts)
			source := args[0]
			target, err := resolveTarget(eng, args)
			if err != nil {
				return err
			}

			result, err := eng.Merge(cmd.Context(), merge.Options{
				Source:   source,
				Target:   target,
				NoCommit: noCommit,
				Message:  message,
			})
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(result)
			}

			splog := opts.splog
			if result.HadConflicts {
				splog.Warn("%s", result.Message)
				for _, c := range result.Conflicts {
					splog.Warn("  %s (%s)", c.File, c.Type)
				}
				return fmt.Errorf("merge aborted due to conflicts")
			}
			if !result.Success {
				return fmt.Errorf("%s", result.Message)
			}
			splog.Info("%s", result.Message)
			if result.CommitSHA != "" {
				splog.Info("commit: %s", result.CommitSHA)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCommit, "no-commit", false, "stage the merge without committing")
	cmd.Flags().StringVarP(&message, "message", "m", "", "merge commit message")

	return cmd
}

func resolveTarget(eng *merge.Engine, args []string) (string, error) {
	if len(args) > 1 {
		return args[1], nil
	}
	target := eng.TargetFor(args[0])
	if target == "" {
		return "", fmt.Errorf("no hierarchy merge target for %s; specify the target explicitly", args[0])
	}
	return target, nil
}
