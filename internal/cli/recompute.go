package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	recomputeUser    string
	recomputeAll     bool
	recomputeTimeout time.Duration
)

func init() {
	recomputeCmd.Flags().StringVar(&recomputeUser, "user", "", "user id to recompute")
	recomputeCmd.Flags().BoolVar(&recomputeAll, "all", false, "recompute every user with recorded activity")
	recomputeCmd.Flags().DurationVar(&recomputeTimeout, "timeout", 30*time.Second, "per-user time limit")
	recomputeCmd.MarkFlagsMutuallyExclusive("user", "all")
	recomputeCmd.MarkFlagsOneRequired("user", "all")
	rootCmd.AddCommand(recomputeCmd)
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute every badge domain for one user or all users",
	RunE:  runRecompute,
}

// recomputer is the slice of BadgeService the command drives.
type recomputer interface {
	RecomputeAllBadges(ctx context.Context, userID uuid.UUID) error
}

func runRecompute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	var users []uuid.UUID
	if recomputeAll {
		users, err = e.store.ListActiveUserIDs(ctx)
		if err != nil {
			return err
		}
	} else {
		id, err := uuid.Parse(recomputeUser)
		if err != nil {
			return fmt.Errorf("--user must be a valid UUID: %w", err)
		}
		users = []uuid.UUID{id}
	}

	return recomputeUsers(ctx, cmd.OutOrStdout(), e.badges, users, recomputeTimeout)
}

// recomputeUsers keeps going past failing users and reports them at the end.
func recomputeUsers(ctx context.Context, out io.Writer, svc recomputer, users []uuid.UUID, timeout time.Duration) error {
	var failed int
	for _, id := range users {
		userCtx, cancel := context.WithTimeout(ctx, timeout)
		err := svc.RecomputeAllBadges(userCtx, id)
		cancel()

		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL  %s: %v\n", id, err)
			continue
		}
		fmt.Fprintf(out, "ok    %s\n", id)
	}

	fmt.Fprintf(out, "%d users, %d failed\n", len(users), failed)
	if failed > 0 {
		return errors.New("some recomputes failed")
	}
	return nil
}
