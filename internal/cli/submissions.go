package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/submission/sqlstore"
)

// NewSubmissionsCommand creates the submissions command group.
func NewSubmissionsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submissions",
		Short: "Inspect submissions in the configured store",
	}
	cmd.AddCommand(newSubmissionsListCommand(rootOpts))
	cmd.AddCommand(newSubmissionsShowCommand(rootOpts))
	return cmd
}

func newSubmissionsListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		formID string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored submissions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, func(ctx context.Context, store *sqlstore.Store) error {
				subs, err := store.List(ctx, formID, limit)
				if err != nil {
					return WrapExitError(ExitCommandError, "list submissions", err)
				}
				if subs == nil {
					subs = []submission.Submission{}
				}
				formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return formatter.Emit("ok", subs, func(w io.Writer) error {
					if len(subs) == 0 {
						_, err := fmt.Fprintln(w, "no submissions")
						return err
					}
					for _, sub := range subs {
						if _, err := fmt.Fprintf(w, "%s  %s  %s  %d answers\n",
							sub.ID, sub.FormID, sub.SubmittedAt.Format(time.RFC3339), len(sub.Answers)); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&formID, "form", "", "only submissions of this form id")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of submissions (0 for all)")
	return cmd
}

func newSubmissionsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, func(ctx context.Context, store *sqlstore.Store) error {
				sub, err := store.Get(ctx, args[0])
				if err != nil {
					return WrapExitError(ExitFailure, "show submission", err)
				}
				formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return formatter.Emit("ok", sub, func(w io.Writer) error {
					if _, err := fmt.Fprintf(w, "id: %s\nform: %s\nsubmitted: %s\n",
						sub.ID, sub.FormID, sub.SubmittedAt.Format(time.RFC3339)); err != nil {
						return err
					}
					for _, key := range sub.Answers.Keys() {
						if _, err := fmt.Fprintf(w, "  %s: %v\n", key, sub.Answers[key]); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
}

func withStore(cmd *cobra.Command, rootOpts *RootOptions, fn func(context.Context, *sqlstore.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := rootOpts.logger()
	store, err := sqlstore.Open(ctx, append(rootOpts.Config.StoreOptions(), sqlstore.WithLogger(logger))...)
	if err != nil {
		return WrapExitError(ExitCommandError, "open submission store", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("close submission store", "error", err)
		}
	}()
	return fn(ctx, store)
}
