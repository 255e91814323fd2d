package git

import (
	"context"
	"fmt"
)

// TagExists reports whether a tag with the given name exists locally.
func TagExists(ctx context.Context, r Runner, tagName string) (bool, error) {
	res, err := r.Run(ctx, "rev-parse", "--verify", "--quiet", "refs/tags/"+tagName)
	if err != nil {
		return false, err
	}
	return res.Ok(), nil
}

// CreateAnnotatedTag creates an annotated tag at the given revision.
func CreateAnnotatedTag(ctx context.Context, r Runner, tagName, message, rev string) error {
	args := []string{"tag", "-a", tagName, "-m", message}
	if rev != "" {
		args = append(args, rev)
	}
	if _, err := r.RunStrict(ctx, args...); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tagName, err)
	}
	return nil
}

// PushTag pushes a single tag to the remote.
func PushTag(ctx context.Context, r Runner, remote, tagName string) error {
	if _, err := r.RunStrict(ctx, "push", remote, tagName); err != nil {
		return fmt.Errorf("failed to push tag %s: %w", tagName, err)
	}
	return nil
}

// VersionTags lists all local tags matching v*.
func VersionTags(ctx context.Context, r Runner) ([]string, error) {
	return RunLines(ctx, r, "tag", "--list", "v*")
}
