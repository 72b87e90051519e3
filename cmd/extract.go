package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-apfs/internal/services"
	"github.com/deploymenttheory/go-apfs/internal/types"
)

var (
	extractVariant string
	extractDive    int
	extractOutDir  string
)

var extractCmd = &cobra.Command{
	Use:   "extract [container-file]",
	Short: "Decode one dive's logbook and profile samples to a directory",
	Long: `Fully decode a single dive's logbook and sample stream, writing a
plaintext summary and the raw sample bytes to the output directory.

Examples:
  # Extract dive 3 from a container to ./out
  divelog extract dive-log.can --dive 3 --out ./out`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractVariant, "variant", "", "container variant: can, wan, or ana (guessed from extension if omitted)")
	extractCmd.Flags().IntVar(&extractDive, "dive", -1, "dive index to extract (0-based, as reported by list)")
	extractCmd.Flags().StringVar(&extractOutDir, "out", "", "output directory (required)")
	extractCmd.MarkFlagRequired("dive")
	extractCmd.MarkFlagRequired("out")
}

func runExtract(containerPath string) error {
	if extractDive < 0 {
		return fmt.Errorf("--dive is required and must be >= 0")
	}
	if extractOutDir == "" {
		return fmt.Errorf("--out is required")
	}

	variant, err := variantFromFlagOrPath(extractVariant, containerPath)
	if err != nil {
		return err
	}

	image, _, err := decodeWithCache(containerPath, variant)
	if err != nil {
		return err
	}

	var (
		targetLog     *types.Logbook
		targetSamples []byte
		found         bool
	)

	svc := services.NewDecodeService()
	err = svc.ForEachDive(image, func(diveIndex int, log *types.Logbook, sampleBytes []byte, isTail bool) error {
		if isTail || diveIndex != extractDive {
			return nil
		}
		targetLog = log
		targetSamples = append([]byte(nil), sampleBytes...)
		found = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("decoding dives: %w", err)
	}
	if !found {
		return fmt.Errorf("dive %d not found in %s", extractDive, containerPath)
	}

	if err := os.MkdirAll(extractOutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	sessionID := uuid.NewString()

	if err := writeRaw(extractOutDir, sessionID, targetSamples); err != nil {
		return err
	}
	return writeSummary(extractOutDir, sessionID, image.Descriptor.Family, targetLog, targetSamples, svc)
}

func writeRaw(outDir, sessionID string, samples []byte) error {
	tmp := filepath.Join(outDir, "."+sessionID+".raw.tmp")
	if err := os.WriteFile(tmp, samples, 0o644); err != nil {
		return fmt.Errorf("writing raw sample stream: %w", err)
	}
	final := filepath.Join(outDir, fmt.Sprintf("dive-%d-samples.raw", extractDive))
	return os.Rename(tmp, final)
}

func writeSummary(outDir, sessionID string, family types.Family, log *types.Logbook, samples []byte, svc *services.DecodeService) error {
	tmp := filepath.Join(outDir, "."+sessionID+".summary.tmp")
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "dive_number: %d\n", log.DiveNumber)
	fmt.Fprintf(w, "family: %s\n", family.String())
	fmt.Fprintf(w, "start_epoch: %d\n", log.StartEpoch)
	fmt.Fprintf(w, "max_depth_ft: %.1f\n", log.MaxDepthFt)
	fmt.Fprintf(w, "avg_depth_ft: %.1f\n", log.AvgDepthFt)
	fmt.Fprintf(w, "bottom_time_s: %d\n", log.BottomTimeSec)
	fmt.Fprintf(w, "min_temp_f: %.1f\n", log.MinTempF)
	fmt.Fprintln(w, "samples:")

	err = svc.ParseSamples(family, log, samples, func(timeSec int, s types.Sample) error {
		if s.Kind == types.SampleEndOfStream {
			return nil
		}
		fmt.Fprintf(w, "  t=%d %s=%.2f\n", timeSec, s.Kind.String(), s.Value)
		return nil
	})
	if err != nil {
		w.Flush()
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("parsing samples: %w", err)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing summary: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing summary: %w", err)
	}

	final := filepath.Join(outDir, fmt.Sprintf("dive-%d-summary.txt", extractDive))
	return os.Rename(tmp, final)
}
