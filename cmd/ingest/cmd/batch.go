package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talkingphoto-ai/ingest/internal/pipeline"
)

// batchExtensions are the file suffixes picked up when scanning a directory.
var batchExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif", ".webp", ".heic", ".heif",
}

// batchCmd processes every supported photo in a directory concurrently.
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process all photos in a directory",
	Long: `Scan a directory for supported photo files and run the ingestion
pipeline over them with a bounded worker pool.

Examples:
  ingest batch ./uploads
  ingest batch ./uploads --workers 8 --format json
  ingest batch ./uploads --output ./normalized`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		workers := cfg.Batch.Workers
		if cmd.Flags().Changed("workers") {
			workers, _ = cmd.Flags().GetInt("workers")
		}
		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		if format != outputFormatText && format != outputFormatJSON {
			return fmt.Errorf("invalid output format: %s (must be text or json)", format)
		}
		outputDir := cfg.Output.Dir
		if cmd.Flags().Changed("output") {
			outputDir, _ = cmd.Flags().GetString("output")
		}

		paths, err := scanDirectory(args[0])
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no supported photo files found in %s", args[0])
		}

		pl, err := pipeline.NewBuilder().
			WithConfig(cfg.Pipeline).
			WithModelsDir(cfg.ModelsDir).
			Build()
		if err != nil {
			return fmt.Errorf("building pipeline: %w", err)
		}

		blobs := make([]pipeline.UploadedBlob, 0, len(paths))
		reports := make([]fileReport, len(paths))
		readable := make([]int, 0, len(paths))
		for i, path := range paths {
			data, rerr := os.ReadFile(path) //nolint:gosec // G304: scanning a user-provided directory
			if rerr != nil {
				reports[i] = fileReport{
					File:      path,
					Error:     rerr.Error(),
					ErrorType: string(pipeline.KindProcessingFailure),
				}
				continue
			}
			blobs = append(blobs, pipeline.UploadedBlob{
				Data:     data,
				Filename: filepath.Base(path),
				Size:     int64(len(data)),
			})
			readable = append(readable, i)
		}

		results := pl.ProcessAll(cmd.Context(), blobs, workers)
		for j, br := range results {
			idx := readable[j]
			reports[idx] = batchReport(pl, paths[idx], br, outputDir)
		}

		if err := printReports(cmd, reports, format); err != nil {
			return err
		}

		succeeded := 0
		for _, r := range reports {
			if r.Success {
				succeeded++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "processed %d/%d file(s) successfully\n", succeeded, len(reports))
		if succeeded == 0 {
			return errors.New("all files failed")
		}
		return nil
	},
}

// scanDirectory lists supported photo files directly under dir, sorted.
func scanDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, supported := range batchExtensions {
			if ext == supported {
				paths = append(paths, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	return paths, nil
}

// batchReport converts one batch result into a file report, writing the
// normalized output when requested.
func batchReport(pl *pipeline.Pipeline, path string, br pipeline.BatchResult, outputDir string) fileReport {
	report := fileReport{File: path}
	if br.Err != nil {
		var perr *pipeline.Error
		if errors.As(br.Err, &perr) {
			report.Error = perr.Message
			report.ErrorType = string(perr.Kind)
			report.Tips = pipeline.TroubleshootingTips(perr.Kind)
		} else {
			report.Error = br.Err.Error()
			report.ErrorType = string(pipeline.KindProcessingFailure)
		}
		return report
	}

	d := br.Result.Diagnostics
	report.Success = true
	report.Width = d.Width
	report.Height = d.Height
	report.Format = d.Format
	report.OriginalSizeMB = d.OriginalSizeMB
	report.FinalSizeMB = d.FinalSizeMB
	report.FaceDetected = d.Face.FaceDetected
	report.FaceCount = d.Face.FaceCount
	report.FaceConfidence = d.Face.Confidence

	if outputDir != "" {
		outPath, err := writeNormalized(br.Result, path, outputDir, pl.Config().JPEGQuality)
		if err != nil {
			report.Success = false
			report.Error = err.Error()
			report.ErrorType = string(pipeline.KindProcessingFailure)
			return report
		}
		report.Output = outPath
	}
	return report
}

func init() {
	batchCmd.Flags().Int("workers", 0, "number of parallel workers (0 = number of CPUs)")
	batchCmd.Flags().String("format", "text", "output format (text, json)")
	batchCmd.Flags().String("output", "", "directory to write normalized JPEGs")
	rootCmd.AddCommand(batchCmd)
}
