package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-apfs/internal/index"
	"github.com/deploymenttheory/go-apfs/internal/services"
	"github.com/deploymenttheory/go-apfs/internal/types"
	"github.com/deploymenttheory/go-apfs/pkg/app/discover"
)

var (
	listVariant string
	listIndex   bool
)

var listCmd = &cobra.Command{
	Use:   "list [container-file]",
	Short: "List the dives recorded in a container",
	Long: `List every dive decoded from a CAN/WAN/ANA container file.

Examples:
  # List dives in a container, guessing variant from the extension
  divelog list dive-log.can

  # List dives in an Analyst-variant container, recording to the index
  divelog list export.ana --variant ana --index`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listVariant, "variant", "", "container variant: can, wan, or ana (guessed from extension if omitted)")
	listCmd.Flags().BoolVar(&listIndex, "index", false, "record decoded dives into the local dive index")
}

func runList(containerPath string) error {
	req := &discover.Request{FilePath: containerPath, Variant: listVariant}
	if err := req.Validate(); err != nil {
		return err
	}

	variant, err := variantFromFlagOrPath(listVariant, containerPath)
	if err != nil {
		return err
	}

	image, digest, err := decodeWithCache(containerPath, variant)
	if err != nil {
		return err
	}

	var idx *index.Index
	if listIndex {
		idx, err = index.Open(GetConfig().IndexDBPath)
		if err != nil {
			return fmt.Errorf("opening dive index: %w", err)
		}
		defer idx.Close()
	}

	svc := services.NewDecodeService()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "DIVE\tNUMBER\tSTART\tMAX DEPTH (ft)\tBOTTOM TIME (s)\n")

	return svc.ForEachDive(image, func(diveIndex int, log *types.Logbook, _ []byte, isTail bool) error {
		if isTail {
			return nil
		}
		start := types.BrokenDownFromEpoch(log.StartEpoch)
		fmt.Fprintf(w, "%d\t%d\t%04d-%02d-%02d %02d:%02d\t%.1f\t%d\n",
			diveIndex, log.DiveNumber, start.Year, start.Month, start.Day, start.Hour, start.Minute,
			log.MaxDepthFt, log.BottomTimeSec)

		if idx != nil {
			if err := idx.Record(digest, diveIndex, image.Descriptor.Family, log); err != nil {
				return fmt.Errorf("recording dive %d to index: %w", diveIndex, err)
			}
		}
		return nil
	})
}
