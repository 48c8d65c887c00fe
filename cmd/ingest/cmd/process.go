package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/talkingphoto-ai/ingest/internal/pipeline"
)

const (
	outputFormatJSON = "json"
	outputFormatText = "text"
)

// fileReport is the JSON output for one processed file.
type fileReport struct {
	File           string   `json:"file"`
	Success        bool     `json:"success"`
	Width          int      `json:"width,omitempty"`
	Height         int      `json:"height,omitempty"`
	Format         string   `json:"format,omitempty"`
	OriginalSizeMB float64  `json:"original_size_mb,omitempty"`
	FinalSizeMB    float64  `json:"final_size_mb,omitempty"`
	FaceDetected   bool     `json:"face_detected,omitempty"`
	FaceCount      int      `json:"face_count,omitempty"`
	FaceConfidence float64  `json:"face_confidence,omitempty"`
	Output         string   `json:"output,omitempty"`
	Error          string   `json:"error,omitempty"`
	ErrorType      string   `json:"error_type,omitempty"`
	Tips           []string `json:"tips,omitempty"`
}

// processCmd validates and normalizes individual photo files.
var processCmd = &cobra.Command{
	Use:   "process <files...>",
	Short: "Validate and normalize photo files",
	Long: `Run the ingestion pipeline on one or more photo files.

Supported formats: JPEG, PNG, GIF, BMP, TIFF, WebP, HEIC/HEIF

Examples:
  ingest process photo.jpg
  ingest process *.heic --format json
  ingest process photo.png --output ./normalized`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
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

		pl, err := pipeline.NewBuilder().
			WithConfig(cfg.Pipeline).
			WithModelsDir(cfg.ModelsDir).
			Build()
		if err != nil {
			return fmt.Errorf("building pipeline: %w", err)
		}

		reports := make([]fileReport, 0, len(args))
		failed := 0
		for _, path := range args {
			report := processFile(pl, path, outputDir)
			if !report.Success {
				failed++
			}
			reports = append(reports, report)
		}

		if err := printReports(cmd, reports, format); err != nil {
			return err
		}
		if failed == len(args) {
			return fmt.Errorf("all %d file(s) failed", failed)
		}
		return nil
	},
}

// processFile runs one file through the pipeline and optionally writes the
// normalized JPEG.
func processFile(pl *pipeline.Pipeline, path, outputDir string) fileReport {
	report := fileReport{File: path}

	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided input path is expected
	if err != nil {
		report.Error = err.Error()
		report.ErrorType = string(pipeline.KindProcessingFailure)
		report.Tips = pipeline.TroubleshootingTips(pipeline.KindProcessingFailure)
		return report
	}

	res, err := pl.Process(pipeline.UploadedBlob{
		Data:     data,
		Filename: filepath.Base(path),
		Size:     int64(len(data)),
	})
	if err != nil {
		var perr *pipeline.Error
		if errors.As(err, &perr) {
			report.Error = perr.Message
			report.ErrorType = string(perr.Kind)
			report.Tips = pipeline.TroubleshootingTips(perr.Kind)
		} else {
			report.Error = err.Error()
			report.ErrorType = string(pipeline.KindProcessingFailure)
		}
		return report
	}

	d := res.Diagnostics
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
		outPath, err := writeNormalized(res, path, outputDir, pl.Config().JPEGQuality)
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

// writeNormalized saves the normalized image as JPEG into outputDir.
func writeNormalized(res *pipeline.Result, srcPath, outputDir string, quality int) (string, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	base := filepath.Base(srcPath)
	ext := filepath.Ext(base)
	outPath := filepath.Join(outputDir, strings.TrimSuffix(base, ext)+".jpg")
	if err := imaging.Save(res.Image, outPath, imaging.JPEGQuality(quality)); err != nil {
		return "", fmt.Errorf("saving normalized image: %w", err)
	}
	return outPath, nil
}

func printReports(cmd *cobra.Command, reports []fileReport, format string) error {
	out := cmd.OutOrStdout()
	if format == outputFormatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, r := range reports {
		if r.Success {
			fmt.Fprintf(out, "%s: ok %dx%d (%s, %.1fMB -> %.1fMB, faces: %d, confidence %.1f)\n",
				r.File, r.Width, r.Height, r.Format, r.OriginalSizeMB, r.FinalSizeMB, r.FaceCount, r.FaceConfidence)
			if r.Output != "" {
				fmt.Fprintf(out, "  wrote %s\n", r.Output)
			}
			continue
		}
		fmt.Fprintf(out, "%s: FAILED (%s): %s\n", r.File, r.ErrorType, r.Error)
		for _, tip := range r.Tips {
			fmt.Fprintf(out, "  - %s\n", tip)
		}
	}
	return nil
}

func init() {
	processCmd.Flags().String("format", "text", "output format (text, json)")
	processCmd.Flags().String("output", "", "directory to write normalized JPEGs")
	rootCmd.AddCommand(processCmd)
}
