package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/condition"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/navigation"
)

// NextResult describes where Continue leads from a step.
type NextResult struct {
	From   string        `json:"from"`
	Target string        `json:"target"`
	Via    string        `json:"via"`
	RuleID string        `json:"ruleId,omitempty"`
	Rules  []RuleOutcome `json:"rules,omitempty"`
}

// RuleOutcome explains one conditional navigation rule.
type RuleOutcome struct {
	ID       string         `json:"id"`
	Priority int            `json:"priority"`
	Matched  bool           `json:"matched"`
	Target   string         `json:"target"`
	Checks   []CheckOutcome `json:"checks"`
}

// CheckOutcome is the result of a single condition rule.
type CheckOutcome struct {
	QuestionID string `json:"questionId"`
	Operator   string `json:"operator"`
	Value      string `json:"value,omitempty"`
	Result     bool   `json:"result"`
}

type nextOptions struct {
	step    string
	answers string
	sets    []string
	explain bool
}

// NewNextCommand creates the next command.
func NewNextCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &nextOptions{}
	cmd := &cobra.Command{
		Use:   "next <form>",
		Short: "Show where Continue leads from a step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNext(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.step, "step", "", "step id to start from (default: first step)")
	cmd.Flags().StringVar(&opts.answers, "answers", "", "answers file (JSON or YAML)")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "answer assignment key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "list every navigation rule and its checks")
	return cmd
}

func runNext(cmd *cobra.Command, rootOpts *RootOptions, opts *nextOptions, path string) error {
	form, _, err := loadForm(path)
	if err != nil {
		return err
	}
	current, err := stepIndex(form, opts.step)
	if err != nil {
		return err
	}
	answers, err := loadAnswers(opts.answers, opts.sets)
	if err != nil {
		return err
	}

	result := resolveNext(form, current, answers, opts.explain)
	rootOpts.logger().Debug("next resolved", "form", form.ID, "from", result.From, "target", result.Target)

	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Emit("ok", result, func(w io.Writer) error {
		return writeNextText(w, result)
	})
}

func resolveNext(form model.Form, current int, answers model.Answers, explain bool) NextResult {
	step := form.Steps[current]
	target := navigation.ResolveNext(current, form.Steps, answers)

	result := NextResult{
		From:   step.ID,
		Target: targetName(form, target),
		RuleID: target.RuleID,
	}
	switch {
	case target.RuleID != "":
		result.Via = "rule"
	case !target.IsSubmit() && step.DefaultNextStep != "" && form.StepIndex(step.DefaultNextStep) == target.Index:
		result.Via = "defaultNextStep"
	default:
		result.Via = "sequence"
	}

	if explain {
		for _, rule := range navigation.SortedRules(step) {
			outcome := RuleOutcome{
				ID:       rule.ID,
				Priority: rule.Priority,
				Matched:  condition.Evaluate(rule.Condition, answers),
				Target:   ruleTargetName(rule.Target),
			}
			for _, check := range rule.Condition.Rules {
				outcome.Checks = append(outcome.Checks, CheckOutcome{
					QuestionID: check.QuestionID,
					Operator:   string(check.Operator),
					Value:      condition.ToString(check.Value),
					Result:     condition.EvaluateRule(check, answers),
				})
			}
			result.Rules = append(result.Rules, outcome)
		}
	}
	return result
}

func targetName(form model.Form, target navigation.Target) string {
	if target.IsSubmit() {
		return "submit"
	}
	if target.Index >= 0 && target.Index < len(form.Steps) {
		return form.Steps[target.Index].ID
	}
	return target.String()
}

func ruleTargetName(target model.NavigationTarget) string {
	switch target.Type {
	case model.TargetSpecific:
		return target.StepID
	case model.TargetURL:
		return "url " + target.URL
	default:
		return string(target.Type)
	}
}

func writeNextText(w io.Writer, result NextResult) error {
	target := result.Target
	switch result.Via {
	case "rule":
		target += " (rule " + result.RuleID + ")"
	case "defaultNextStep":
		target += " (defaultNextStep)"
	}
	if _, err := fmt.Fprintf(w, "from: %s\ntarget: %s\n", result.From, target); err != nil {
		return err
	}
	if len(result.Rules) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "rules:"); err != nil {
		return err
	}
	for _, rule := range result.Rules {
		if _, err := fmt.Fprintf(w, "  %s priority=%d matched=%t target=%s\n",
			rule.ID, rule.Priority, rule.Matched, rule.Target); err != nil {
			return err
		}
		for _, check := range rule.Checks {
			line := fmt.Sprintf("    %s %s", check.QuestionID, check.Operator)
			if check.Value != "" {
				line += " " + check.Value
			}
			if _, err := fmt.Fprintf(w, "%s -> %t\n", line, check.Result); err != nil {
				return err
			}
		}
	}
	return nil
}
