package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/formdoc"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Issue codes added by the lint command for answer checks.
const (
	CodeAnswer       = "answer"
	CodeAnswerSchema = "answer-schema"
)

// LintReport is the lint result for one document.
type LintReport struct {
	File   string         `json:"file"`
	Valid  bool           `json:"valid"`
	Issues formdoc.Issues `json:"issues,omitempty"`
}

type lintOptions struct {
	answers string
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &lintOptions{}
	cmd := &cobra.Command{
		Use:   "lint <form>...",
		Short: "Check form documents for schema and structural problems",
		Long: `Check form documents against the form schema and for structural problems
such as dangling navigation targets, duplicate answer keys and invalid
patterns. With --answers, a single form's answers are validated as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, rootOpts, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.answers, "answers", "", "answers file (JSON or YAML) to validate against the form")
	return cmd
}

func runLint(cmd *cobra.Command, rootOpts *RootOptions, opts *lintOptions, paths []string) error {
	if opts.answers != "" && len(paths) != 1 {
		return NewExitError(ExitCommandError, "--answers needs exactly one form")
	}
	logger := rootOpts.logger()

	reports := make([]LintReport, 0, len(paths))
	failed := false
	for _, path := range paths {
		report, err := lintFile(path, opts.answers)
		if err != nil {
			return err
		}
		logger.Debug("form linted", "file", path, "issues", len(report.Issues))
		if !report.Valid {
			failed = true
		}
		reports = append(reports, report)
	}

	status := "ok"
	if failed {
		status = "error"
	}
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	if err := formatter.Emit(status, reports, func(w io.Writer) error {
		return writeLintText(w, reports)
	}); err != nil {
		return err
	}
	if failed {
		return NewExitError(ExitFailure, "lint failed")
	}
	return nil
}

func lintFile(path, answersPath string) (LintReport, error) {
	form, data, err := loadForm(path)
	if err != nil && data == nil {
		return LintReport{}, err
	}

	report := LintReport{File: path}
	schemaIssues, serr := formdoc.LintSchema(data, path)
	if serr != nil {
		return LintReport{}, WrapExitError(ExitCommandError, "lint schema", serr)
	}
	report.Issues = append(report.Issues, schemaIssues...)
	if err != nil {
		report.Issues = append(report.Issues, formdoc.Issue{
			Severity: formdoc.SeverityError,
			Code:     formdoc.CodeNoSteps,
			Message:  err.Error(),
		})
		report.Valid = false
		return report, nil
	}
	report.Issues = append(report.Issues, formdoc.Lint(form)...)

	if answersPath != "" {
		answers, err := loadAnswers(answersPath, nil)
		if err != nil {
			return LintReport{}, err
		}
		issues, err := answerIssues(form, answers)
		if err != nil {
			return LintReport{}, err
		}
		report.Issues = append(report.Issues, issues...)
	}

	report.Valid = !report.Issues.HasErrors()
	return report, nil
}

// answerIssues runs the step validator over every step and the answer schema
// over the whole map. A key reported by the validator is not repeated from
// the schema.
func answerIssues(form model.Form, answers model.Answers) (formdoc.Issues, error) {
	var issues formdoc.Issues
	reported := make(map[string]bool)

	byStep := validation.ValidateForm(form, answers)
	for _, step := range form.Steps {
		errs := byStep[step.ID]
		for _, key := range errs.Keys() {
			reported[key] = true
			issues = append(issues, formdoc.Issue{
				Severity: formdoc.SeverityError,
				Code:     CodeAnswer,
				Path:     "answers." + key,
				Message:  fmt.Sprintf("step %s: %s", step.ID, errs[key]),
			})
		}
	}

	schemaErrs, err := openapi.ValidateAnswers(form, answers)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "validate answers", err)
	}
	for _, key := range schemaErrs.Keys() {
		if reported[key] {
			continue
		}
		path := "answers"
		if key != "" {
			path += "." + key
		}
		issues = append(issues, formdoc.Issue{
			Severity: formdoc.SeverityError,
			Code:     CodeAnswerSchema,
			Path:     path,
			Message:  schemaErrs[key],
		})
	}
	return issues, nil
}

func writeLintText(w io.Writer, reports []LintReport) error {
	for _, report := range reports {
		if len(report.Issues) == 0 {
			if _, err := fmt.Fprintf(w, "%s: ok\n", report.File); err != nil {
				return err
			}
			continue
		}
		for _, issue := range report.Issues {
			if _, err := fmt.Fprintf(w, "%s: %s\n", report.File, issue); err != nil {
				return err
			}
		}
	}
	return nil
}
