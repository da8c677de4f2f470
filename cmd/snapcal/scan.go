package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vbonduro/snapcal/internal/config"
	"github.com/vbonduro/snapcal/internal/domain"
	"github.com/vbonduro/snapcal/internal/logging"
	"github.com/vbonduro/snapcal/internal/scan"
	"github.com/vbonduro/snapcal/internal/vision"
)

func newScanCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "scan <photo>",
		Short: "Scan a photo once and print the nutrition breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer cleanup()

			scanner, err := newScanner(cfg, nil, logger)
			if err != nil {
				return err
			}
			return runScan(cmd.Context(), scanner, args[0], asJSON, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func runScan(ctx context.Context, runner scan.Runner, path string, asJSON bool, out, progress io.Writer) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}
	if !vision.IsJPEG(image) {
		return fmt.Errorf("%s is not a JPEG image", path)
	}

	session := scan.NewSession(runner, func(st scan.State) {
		if st.IsLoading() {
			fmt.Fprintln(progress, "scanning...")
		}
	})

	result, err := session.Scan(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		return errors.New(session.Snapshot().Error)
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return printResult(out, result)
}

func printResult(out io.Writer, result *domain.ScanResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "food\tgrams\tkcal\tprotein\tcarbs\tfat\t")
	for _, it := range result.Items {
		fmt.Fprintf(tw, "%s\t%.0f\t%.1f\t%.1f\t%.1f\t%.1f\t\n", it.Name, it.EstimatedGrams, it.Calories, it.Protein, it.Carbs, it.Fat)
	}
	fmt.Fprintf(tw, "total\t\t%.1f\t%.1f\t%.1f\t%.1f\t\n", result.TotalCalories, result.TotalProtein, result.TotalCarbs, result.TotalFat)
	return tw.Flush()
}
