// Command corrector corrects German postal addresses from the command line
// using the same configuration and backends as the HTTP service.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kruegge82/adressCorrector/app/bootstrap"
	"github.com/kruegge82/adressCorrector/app/controllers"
	"github.com/kruegge82/adressCorrector/app/models"
	"github.com/kruegge82/adressCorrector/app/services"
	"github.com/kruegge82/adressCorrector/internal/reference"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "corrector",
		Short: "German postal address corrector",
		Long: `Corrector validates and repairs German postal addresses against
reference data of cities, streets and districts.

Examples:
  corrector correct --street "Pielstr. 12" --plz 33100 --city Paderbon
  corrector correct "Pielstraße 12, 33100 Paderborn"
  corrector batch --in addresses.ndjson --out corrected.ndjson
  corrector seed --file reference.yaml`,
		Version:       controllers.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to app config (default config/app.yaml)")

	rootCmd.AddCommand(correctCmd(&configFile))
	rootCmd.AddCommand(batchCmd(&configFile))
	rootCmd.AddCommand(seedCmd(&configFile))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openApp builds the service graph. The CLI logs to stderr at warn level so
// that stdout only carries results.
func openApp(ctx context.Context, configFile string) (*bootstrap.App, error) {
	settings := bootstrap.LoadConfig(configFile)

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("cannot initialize logger: %w", err)
	}
	return bootstrap.New(ctx, settings, logger)
}

func correctCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct [raw address]",
		Short: "Correct a single address",
		Long: `Correct one address given as separate fields or as one free-form line.

Example:
  corrector correct --street Pielstr. --number 12 --plz 33100 --city Paderbon
  corrector correct "Pielstraße 12, 33100 Paderborn"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := models.AddressFields{}
			fields.Street, _ = cmd.Flags().GetString("street")
			fields.StreetNumber, _ = cmd.Flags().GetString("number")
			fields.PostalCode, _ = cmd.Flags().GetString("plz")
			fields.City, _ = cmd.Flags().GetString("city")
			fields.Company, _ = cmd.Flags().GetString("company")
			fields.AddressAddition, _ = cmd.Flags().GetString("addition")

			if len(args) == 0 && fields == (models.AddressFields{}) {
				return fmt.Errorf("either a raw address or at least one field flag is required")
			}

			app, err := openApp(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer app.Close()

			var result *models.CorrectionResult
			if len(args) == 1 {
				result, _, err = app.Corrections.CorrectRaw(cmd.Context(), args[0])
			} else {
				result, _, err = app.Corrections.Correct(cmd.Context(), fields)
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().String("street", "", "Street, optionally with house number")
	cmd.Flags().String("number", "", "House number")
	cmd.Flags().String("plz", "", "Postal code")
	cmd.Flags().String("city", "", "City")
	cmd.Flags().String("company", "", "Company or recipient")
	cmd.Flags().String("addition", "", "Address addition")
	return cmd
}

func batchCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Correct addresses from an NDJSON file",
		Long: `Read one JSON address per line and write one corrected result per line.
Input lines are either field objects ({"street": ..., "postal_code": ...})
or JSON strings holding a free-form address.

Example:
  corrector batch --in addresses.ndjson --out corrected.ndjson
  cat addresses.ndjson | corrector batch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, _ := cmd.Flags().GetString("in")
			outPath, _ := cmd.Flags().GetString("out")

			in := io.Reader(os.Stdin)
			if inPath != "" && inPath != "-" {
				f, err := os.Open(inPath)
				if err != nil {
					return fmt.Errorf("failed to open input: %w", err)
				}
				defer f.Close()
				in = f
			}

			out := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			app, err := openApp(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer app.Close()

			stats, err := runBatch(cmd.Context(), app, in, out)
			fmt.Fprintf(cmd.ErrOrStderr(), "processed %d lines, %d failed\n", stats.processed, stats.failed)
			return err
		},
	}

	cmd.Flags().String("in", "", "Input NDJSON file (default stdin)")
	cmd.Flags().String("out", "", "Output NDJSON file (default stdout)")
	return cmd
}

type batchStats struct {
	processed int
	failed    int
}

type batchError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// runBatch streams line by line so the input size is not bounded by the
// batch limit of the HTTP API. Lines that fail are reported in place.
func runBatch(ctx context.Context, app *bootstrap.App, in io.Reader, out io.Writer) (batchStats, error) {
	var stats batchStats
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	w := bufio.NewWriter(out)
	defer w.Flush()
	enc := json.NewEncoder(w)

	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		stats.processed++

		result, err := correctLine(ctx, app, text)
		if err != nil {
			stats.failed++
			if err := enc.Encode(batchError{Line: line, Error: err.Error()}); err != nil {
				return stats, err
			}
			continue
		}
		if err := enc.Encode(result); err != nil {
			return stats, err
		}
	}
	return stats, scanner.Err()
}

func correctLine(ctx context.Context, app *bootstrap.App, text string) (*models.CorrectionResult, error) {
	if strings.HasPrefix(text, `"`) {
		var raw string
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON string: %w", err)
		}
		result, _, err := app.Corrections.CorrectRaw(ctx, raw)
		return result, err
	}

	var fields models.AddressFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	result, _, err := app.Corrections.Correct(ctx, fields)
	return result, err
}

func seedCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data into the configured backend",
		Long: `Validate a YAML or JSON reference dataset, store it in the configured
reference backend (mongo or postgres) and rebuild the Meilisearch city index.

Example:
  corrector seed --file reference.yaml
  corrector seed --file reference.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			if file == "" {
				return fmt.Errorf("--file flag is required")
			}

			data, err := reference.LoadFile(file)
			if err != nil {
				return err
			}

			validation := services.ValidateDataset(data)
			for _, w := range validation.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			for _, e := range validation.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", e)
			}
			if !validation.Passed {
				return fmt.Errorf("reference data is invalid (%d errors)", len(validation.Errors))
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "valid: %d cities, %d streets, %d districts\n",
					len(data.Cities), len(data.Streets), len(data.Districts))
				return nil
			}

			app, err := openApp(cmd.Context(), *configFile)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Settings.ReferenceBackend == "memory" || app.Settings.ReferenceBackend == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: memory reference backend does not persist; only the city index is updated")
			}

			result, err := app.Admin.SeedReference(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d cities, %d streets, %d districts (indexed: %t) in %dms\n",
				result.Cities, result.Streets, result.Districts, result.Indexed, result.ProcessingTimeMs)
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "Reference dataset (YAML or JSON)")
	cmd.Flags().Bool("dry-run", false, "Only validate the dataset")
	return cmd
}
