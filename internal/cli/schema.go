package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/formdoc"
	"github.com/goliatone/go-formflow/pkg/openapi"
)

type schemaOptions struct {
	basePath    string
	version     string
	answersOnly bool
	cue         bool
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &schemaOptions{}
	cmd := &cobra.Command{
		Use:   "schema [form]",
		Short: "Export a form's answer schema as OpenAPI",
		Long: `Export the answers a form can produce as an OpenAPI 3 document with a
single submission operation. With --answers-only only the JSON schema of the
answer object is written. With --cue the CUE definition used by lint is
written instead and no form is needed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cue {
				_, err := fmt.Fprint(cmd.OutOrStdout(), formdoc.Schema())
				return err
			}
			if len(args) != 1 {
				return NewExitError(ExitCommandError, "schema needs a form")
			}
			return runSchema(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.basePath, "base-path", "", "path prefix of the submission operation (default /forms)")
	cmd.Flags().StringVar(&opts.version, "api-version", "", "info.version of the document (default 1.0.0)")
	cmd.Flags().BoolVar(&opts.answersOnly, "answers-only", false, "write only the answer schema")
	cmd.Flags().BoolVar(&opts.cue, "cue", false, "write the CUE form definition")
	return cmd
}

func runSchema(cmd *cobra.Command, rootOpts *RootOptions, opts *schemaOptions, path string) error {
	form, _, err := loadForm(path)
	if err != nil {
		return err
	}

	var doc any
	if opts.answersOnly {
		doc = openapi.AnswerSchema(form)
	} else {
		doc = openapi.Document(form, openapi.DocumentOptions{Version: opts.version, BasePath: opts.basePath})
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return WrapExitError(ExitCommandError, "encode schema", err)
	}
	rootOpts.logger().Debug("schema exported", "form", form.ID, "bytes", len(payload))
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
	return err
}
