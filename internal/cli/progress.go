package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/progress"
)

// ProgressReport lists the progress shown on each step.
type ProgressReport struct {
	Form  string         `json:"form"`
	Mode  string         `json:"mode"`
	Steps []StepProgress `json:"steps"`
}

// StepProgress is the percentage displayed while a step is viewed.
type StepProgress struct {
	Step    string  `json:"step"`
	Percent float64 `json:"percent"`
}

type progressOptions struct {
	step    string
	answers string
	sets    []string
}

// NewProgressCommand creates the progress command.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &progressOptions{}
	cmd := &cobra.Command{
		Use:   "progress <form>",
		Short: "Report the progress percentage of each step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgress(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.step, "step", "", "report only this step")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "answers file for question_based progress")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "answer assignment key=value (repeatable)")
	return cmd
}

func runProgress(cmd *cobra.Command, rootOpts *RootOptions, opts *progressOptions, path string) error {
	form, _, err := loadForm(path)
	if err != nil {
		return err
	}
	answers, err := loadAnswers(opts.answers, opts.sets)
	if err != nil {
		return err
	}

	mode := form.Progress.Mode
	if mode == "" {
		mode = model.ProgressLinear
	}
	report := ProgressReport{Form: form.ID, Mode: string(mode)}
	for i, step := range form.Steps {
		if opts.step != "" && step.ID != opts.step {
			continue
		}
		report.Steps = append(report.Steps, StepProgress{
			Step:    step.ID,
			Percent: progress.Compute(mode, i, form.Steps, answers, form.Progress),
		})
	}
	if opts.step != "" && len(report.Steps) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown step %q", opts.step))
	}

	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Emit("ok", report, func(w io.Writer) error {
		if _, err := fmt.Fprintf(w, "mode: %s\n", report.Mode); err != nil {
			return err
		}
		for i, sp := range report.Steps {
			if _, err := fmt.Fprintf(w, "%d. %s %.1f%%\n", i+1, sp.Step, sp.Percent); err != nil {
				return err
			}
		}
		return nil
	})
}
