package cli

import (
	"github.com/spf13/cobra"

	"github.com/mtoporowski/stovokor/internal/config"
	"github.com/mtoporowski/stovokor/internal/engine"
	"github.com/mtoporowski/stovokor/internal/xmldoc"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	Input    string
	Output   string
	Conf     string
	Override string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert an XML file or a directory of XML files",
		Long: `Convert obfuscates the input according to the rule configuration and
writes the result next to the input unless an output is given. A directory
input converts every regular file inside it, skipping earlier ".out.xml"
outputs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "input XML file or directory (required)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file or directory (default: derived from input)")
	cmd.Flags().StringVarP(&opts.Conf, "conf", "c", "", "rule configuration file (required)")
	cmd.Flags().StringVar(&opts.Override, "override", "", "inline YAML/JSON overriding configuration entries")
	cobra.CheckErr(cmd.MarkFlagRequired("input"))
	cobra.CheckErr(cmd.MarkFlagRequired("conf"))

	return cmd
}

func runConvert(cmd *cobra.Command, opts *ConvertOptions) error {
	cfg, err := config.Load(opts.Conf, opts.Override)
	if err != nil {
		return err
	}
	if err := xmldoc.ValidateSelectors(cfg); err != nil {
		return err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	return xmldoc.ConvertPath(cmd.Context(), opts.Input, opts.Output, cfg, eng)
}
