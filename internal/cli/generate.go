package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtoporowski/stovokor/internal/gen"
)

// NewGenerateCommand creates the generate command. Flag parsing is disabled
// so generator arguments like "-l 8" reach the generator untouched.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <generator> [args...]",
		Short: "Run a single generator expression and print the value",
		Long: fmt.Sprintf(`Generate evaluates one generator expression and prints the produced
value, which is useful for trying out rules before putting them in a
configuration file.

Known generators: %s.`, strings.Join(gen.Names(), ", ")),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args)
		},
	}
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h") {
		return cmd.Help()
	}
	if len(args) == 0 {
		return fmt.Errorf("expected a generator expression, e.g. %q", "alphanum -l 8")
	}

	value, err := gen.Generate(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}
