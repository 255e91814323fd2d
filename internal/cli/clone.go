package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RevREB/auto-claude/internal/clone"
)

// newCloneCmd creates the clone command group
func newCloneCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Manage per-task isolated repository clones",
	}

	cmd.AddCommand(newCloneCreateCmd(opts))
	cmd.AddCommand(newClonePushCmd(opts))
	cmd.AddCommand(newCloneCleanupCmd(opts))
	cmd.AddCommand(newCloneSweepCmd(opts))

	return cmd
}

func newCloneManager(opts *rootOptions) *clone.Manager {
	mgr := clone.NewManager(opts.projectDir, opts.cfg.CloneBaseDir)
	mgr.Log = opts.splog
	mgr.CommandTimeout = opts.cfg.CommandTimeout
	return mgr
}

func newCloneCreateCmd(opts *rootOptions) *cobra.Command {
	var (
		branchName string
		baseBranch string
	)

	cmd := &cobra.Command{
		Use:   "create <task-id>",
		Short: "Create an isolated clone for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			if branchName == "" {
				branchName = "feature/" + taskID
			}

			clonePath, err := newCloneManager(opts).Create(cmd.Context(), taskID, branchName, baseBranch)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(map[string]string{"task_id": taskID, "clone_path": clonePath, "branch": branchName})
			}
			opts.splog.Info("%s", clonePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&branchName, "branch", "", "branch to work on (default feature/<task-id>)")
	cmd.Flags().StringVar(&baseBranch, "base", "main", "branch to clone from")

	return cmd
}

func newClonePushCmd(opts *rootOptions) *cobra.Command {
	var (
		force   bool
		cleanup bool
	)

	cmd := &cobra.Command{
		Use:   "push <task-id>",
		Short: "Push a task clone's branch to the remote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := newCloneManager(opts)
			var ok bool
			if cleanup {
				ok = mgr.PushAndCleanup(cmd.Context(), args[0], force)
			} else {
				ok = mgr.Push(cmd.Context(), args[0], force)
			}
			if !ok {
				return fmt.Errorf("push failed for task %s", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "force push")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "delete the clone after a successful push")

	return cmd
}

func newCloneCleanupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup <task-id>",
		Short: "Delete a task's clone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := newCloneManager(opts).Cleanup(args[0])
			if err != nil {
				return err
			}
			if removed {
				opts.splog.Info("clone for task %s removed", args[0])
			}
			return nil
		},
	}
}

func newCloneSweepCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove clones older than the configured maximum age",
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := newCloneManager(opts).SweepOrphans(opts.cfg.CloneMaxAge)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(map[string]interface{}{"removed": removed})
			}
			for _, path := range removed {
				opts.splog.Info("removed %s", path)
			}
			opts.splog.Info("%d orphaned clone(s) removed", len(removed))
			return nil
		},
	}
}
