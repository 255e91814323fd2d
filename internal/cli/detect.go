package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/RevREB/auto-claude/internal/branch"
)

// newDetectCmd creates the detect command
func newDetectCmd(opts *rootOptions) *cobra.Command {
	var showHierarchy bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect which branch topology the repository uses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showHierarchy {
				h, err := branch.DetectHierarchy(opts.projectDir)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(h)
				}
				printHierarchy(opts, h)
				return nil
			}

			status, err := branch.Detect(opts.projectDir)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(status)
			}

			splog := opts.splog
			styled := func(name string) string {
				if name == status.CurrentBranch {
					return splog.CurrentBranch(name)
				}
				return splog.Branch(name)
			}
			splog.Info("model: %s", status.Model)
			if status.MainBranch != "" {
				splog.Info("main:  %s", styled(status.MainBranch))
			}
			if status.DevBranch != "" {
				splog.Info("dev:   %s", styled(status.DevBranch))
			}
			for _, b := range status.ReleaseBranches {
				splog.Info("release: %s", styled(b))
			}
			for _, b := range status.FeatureBranches {
				splog.Info("feature: %s", styled(b))
			}
			for _, b := range status.LegacyBranches {
				splog.Info("legacy:  %s", styled(b))
			}
			for _, issue := range status.Issues {
				splog.Warn("%s", issue)
			}
			if status.Model != branch.ModelHierarchical && status.CanMigrate {
				splog.Newline()
				splog.Tip("run 'autoclaude migrate' to convert to the hierarchical model")
				for _, step := range status.MigrationSteps {
					splog.Info("  - %s", step)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHierarchy, "hierarchy", false, "show the branch hierarchy tree")

	return cmd
}

func printHierarchy(opts *rootOptions, h *branch.Hierarchy) {
	splog := opts.splog
	if h.Main != "" {
		splog.Info("%s", splog.Branch(h.Main))
	}
	for _, rel := range h.Releases {
		splog.Info("├── %s", splog.Branch(rel))
	}
	if h.Dev != "" {
		splog.Info("└── %s", splog.Branch(h.Dev))
	}

	features := make([]string, 0, len(h.Features))
	for name := range h.Features {
		features = append(features, name)
	}
	sort.Strings(features)
	for _, name := range features {
		splog.Info("    ├── %s", splog.Branch(name))
		for _, sub := range h.Features[name] {
			splog.Info("    │   └── %s", splog.Branch(sub))
		}
	}
}

// newValidateCmd creates the validate command
func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <branch-name>",
		Short: "Check a branch name against the hierarchical grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			valid, reason := branch.ValidateName(args[0])
			if opts.jsonOut {
				return printJSON(map[string]interface{}{
					"name":   args[0],
					"valid":  valid,
					"reason": reason,
				})
			}
			if valid {
				opts.splog.Info("%s is a valid branch name", args[0])
				if target := branch.MergeTarget(args[0]); target != "" {
					opts.splog.Info("merge target: %s", opts.splog.Branch(target))
				}
				return nil
			}
			return fmt.Errorf("%s", reason)
		},
	}
}
