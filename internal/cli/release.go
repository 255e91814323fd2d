package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/RevREB/auto-claude/internal/release"
	"github.com/RevREB/auto-claude/internal/version"
)

// newReleaseCmd creates the release command group
func newReleaseCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Create, promote and abandon release branches",
	}

	cmd.AddCommand(newReleaseCreateCmd(opts))
	cmd.AddCommand(newReleasePromoteCmd(opts))
	cmd.AddCommand(newReleaseAbandonCmd(opts))
	cmd.AddCommand(newReleaseNextCmd(opts))

	return cmd
}

func newManager(opts *rootOptions) *release.Manager {
	mgr := release.NewManager(opts.projectDir)
	mgr.Runner = opts.runner(opts.projectDir)
	mgr.Remote = opts.cfg.Remote
	return mgr
}

// loadTasks reads a JSON array of task metadata from a file.
func loadTasks(path string) ([]version.Task, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks file: %w", err)
	}
	var tasks []version.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse tasks file: %w", err)
	}
	return tasks, nil
}

func reportReleaseResult(opts *rootOptions, result *release.Result) error {
	if opts.jsonOut {
		return printJSON(result)
	}
	splog := opts.splog
	for _, warning := range result.Warnings {
		splog.Warn("%s", warning)
	}
	if len(result.Conflicts) > 0 {
		for _, c := range result.Conflicts {
			splog.Warn("conflict: %s (%s)", c.File, c.Type)
		}
	}
	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}
	splog.Info("%s", result.Message)
	return nil
}

func newReleaseCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		tasksFile  string
		notesFile  string
		fromBranch string
	)

	cmd := &cobra.Command{
		Use:   "create <version>",
		Short: "Cut a release branch from dev",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(tasksFile)
			if err != nil {
				return err
			}
			notes := ""
			if notesFile != "" {
				data, err := os.ReadFile(notesFile)
				if err != nil {
					return fmt.Errorf("failed to read notes file: %w", err)
				}
				notes = string(data)
			}

			result, err := newManager(opts).Create(cmd.Context(), release.CreateOptions{
				Version:    args[0],
				Tasks:      tasks,
				Notes:      notes,
				FromBranch: fromBranch,
			})
			if err != nil {
				return err
			}
			return reportReleaseResult(opts, result)
		},
	}

	cmd.Flags().StringVar(&tasksFile, "tasks", "", "JSON file with task metadata for release notes")
	cmd.Flags().StringVar(&notesFile, "notes", "", "file with hand-written release notes")
	cmd.Flags().StringVar(&fromBranch, "from", "", "source branch (default dev)")

	return cmd
}

func newReleasePromoteCmd(opts *rootOptions) *cobra.Command {
	var (
		noTag       bool
		noBackMerge bool
	)

	cmd := &cobra.Command{
		Use:   "promote <version>",
		Short: "Merge a release branch into main and tag it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newManager(opts).Promote(cmd.Context(), release.PromoteOptions{
				Version:   args[0],
				CreateTag: !noTag,
				BackMerge: !noBackMerge,
			})
			if err != nil {
				return err
			}
			return reportReleaseResult(opts, result)
		},
	}

	cmd.Flags().BoolVar(&noTag, "no-tag", false, "skip creating the v-tag")
	cmd.Flags().BoolVar(&noBackMerge, "no-back-merge", false, "skip back-merging the release into dev")

	return cmd
}

func newReleaseAbandonCmd(opts *rootOptions) *cobra.Command {
	var keepBranch bool

	cmd := &cobra.Command{
		Use:   "abandon <version>",
		Short: "Abandon a release candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newManager(opts).Abandon(cmd.Context(), args[0], !keepBranch)
			if err != nil {
				return err
			}
			return reportReleaseResult(opts, result)
		},
	}

	cmd.Flags().BoolVar(&keepBranch, "keep-branch", false, "keep the release branch around")

	return cmd
}

func newReleaseNextCmd(opts *rootOptions) *cobra.Command {
	var tasksFile string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Compute the next version from a task batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := loadTasks(tasksFile)
			if err != nil {
				return err
			}

			bump, err := newManager(opts).NextVersion(cmd.Context(), tasks)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(bump)
			}

			splog := opts.splog
			splog.Info("current: %s", bump.Current)
			splog.Info("next:    %s (%s bump)", bump.Next, bump.BumpType)
			for _, b := range bump.BreakingChanges {
				splog.Warn("breaking: %s", b)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tasksFile, "tasks", "", "JSON file with task metadata")

	return cmd
}
