package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtoporowski/stovokor/internal/config"
	"github.com/mtoporowski/stovokor/internal/xmldoc"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Conf     string
	Override string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a rule configuration without converting anything",
		Long: `Validate loads the configuration, resolves predefined-rule references,
probes every generator expression and compiles every path selector. It
reports the first problem found, or a summary of the loaded rules.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Conf, "conf", "c", "", "rule configuration file (required)")
	cmd.Flags().StringVar(&opts.Override, "override", "", "inline YAML/JSON overriding configuration entries")
	cobra.CheckErr(cmd.MarkFlagRequired("conf"))

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	cfg, err := config.Load(opts.Conf, opts.Override)
	if err != nil {
		return err
	}
	if err := xmldoc.ValidateSelectors(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ configuration valid: %d predefined rule(s), %d path rule(s)\n",
		len(cfg.Predefs), len(cfg.Paths))
	return nil
}
