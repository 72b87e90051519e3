package cmd

import (
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-apfs/pkg/app"
	"github.com/deploymenttheory/go-apfs/pkg/app/discover"
)

var discoverVariant string

var discoverCmd = &cobra.Command{
	Use:   "discover [container-file]",
	Short: "Identify a container's variant, format, and model",
	Long: `Decode just enough of a container file's header to report its variant,
format byte, device model, and family, without walking any dives.

Examples:
  # Identify a container, guessing variant from the extension
  divelog discover dive-log.can

  # Identify an Analyst-variant export explicitly
  divelog discover export.bin --variant ana`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDiscover(args[0])
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverVariant, "variant", "", "container variant: can, wan, or ana (guessed from extension if omitted)")
}

func runDiscover(containerPath string) error {
	ctx := app.NewContext()
	ctx.OutputFormat = GetOutputFormat()
	ctx.Verbose = GetVerbose()
	ctx.Quiet = GetQuiet()

	request := &discover.Request{
		FilePath: containerPath,
		Variant:  discoverVariant,
	}

	response, err := discover.Handle(ctx, request)
	if err != nil {
		return err
	}

	return discover.FormatOutput(response, ctx.OutputFormat)
}
