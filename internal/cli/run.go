package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/submission/sqlstore"
)

type runOptions struct {
	output   string
	noSubmit bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <form>",
		Short: "Fill in a form in the terminal",
		Long: `Fill in a form step by step in the terminal. Navigation, validation and
submission follow the form document; the submission goes to the configured
webhook or store unless --no-submit is given. The collected answers are
written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForm(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.output, "output", string(tui.OutputFormatJSON), "answers format (json|pretty)")
	cmd.Flags().BoolVar(&opts.noSubmit, "no-submit", false, "discard the submission instead of delivering it")
	return cmd
}

func runForm(cmd *cobra.Command, rootOpts *RootOptions, opts *runOptions, path string) error {
	form, _, err := loadForm(path)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := rootOpts.logger()

	submitter, closeFn, err := buildSubmitter(ctx, rootOpts, form, opts.noSubmit)
	if err != nil {
		return err
	}
	defer closeFn()

	driver := rootOpts.Driver
	if driver == nil {
		driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
	}
	renderer, err := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(tui.OutputFormat(opts.output)),
		tui.WithSessionOptions(
			session.WithSubmitter(submitter),
			session.WithLogger(logger),
			session.WithTiming(rootOpts.Config.Timing),
		),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "configure renderer", err)
	}

	out, err := renderer.Render(ctx, form)
	switch {
	case errors.Is(err, tui.ErrAborted):
		return NewExitError(ExitFailure, "aborted")
	case errors.Is(err, tui.ErrSubmitFailed):
		return WrapExitError(ExitFailure, "submit form", err)
	case err != nil:
		return WrapExitError(ExitCommandError, "run form", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// buildSubmitter picks the sink for the form's submission config. The store
// is opened only for forms that submit to it.
func buildSubmitter(ctx context.Context, rootOpts *RootOptions, form model.Form, discard bool) (submission.Submitter, func(), error) {
	noop := func() {}
	if discard {
		return submission.Discard, noop, nil
	}
	logger := rootOpts.logger()

	var store submission.Submitter
	closeFn := noop
	if form.Submission.Type == model.SubmissionStore {
		opened, err := sqlstore.Open(ctx, append(rootOpts.Config.StoreOptions(), sqlstore.WithLogger(logger))...)
		if err != nil {
			return nil, noop, WrapExitError(ExitCommandError, "open submission store", err)
		}
		store = opened
		closeFn = func() {
			if err := opened.Close(); err != nil {
				logger.Warn("close submission store", "error", err)
			}
		}
	}

	submitter, err := submission.FromConfig(form.Submission, store, submission.WithWebhookLogger(logger))
	if err != nil {
		closeFn()
		return nil, noop, WrapExitError(ExitCommandError, fmt.Sprintf("form %s submission", form.ID), err)
	}
	return submitter, closeFn, nil
}
