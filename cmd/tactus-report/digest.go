package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tactus/internal/analysis/shared"
)

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a tactus JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "code",
				Usage: "Show recordings rejected with a specific error code (e.g., INSUFFICIENT_ONSETS)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("expected exactly one argument: path to report.jsonl")
			}

			return runDigest(cmd.Args().First(), cmd.String("code"))
		},
	}
}

func runDigest(reportPath, codeFilter string) error {
	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(os.Stdout, summarize(records))

	if codeFilter != "" {
		printCodeDetail(os.Stdout, records, codeFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

type digest struct {
	Total      int
	Failed     int
	Codes      map[string]int
	Steadiness map[string]int
	Tempos     []float64
	Variances  []float64
	Scores     []float64
	Improving  int
	Estimated  int // tempo from the envelope fallback
}

func summarize(records []digestRecord) *digest {
	dig := &digest{
		Total:      len(records),
		Codes:      map[string]int{},
		Steadiness: map[string]int{},
	}

	for _, rec := range records {
		if rec.Error != "" || rec.Analysis == nil {
			dig.Failed++

			code := rec.ErrorCode
			if code == "" {
				code = "OTHER"
			}

			dig.Codes[code]++

			continue
		}

		result := rec.Analysis.Record

		dig.Tempos = append(dig.Tempos, result.TempoBPM)
		dig.Variances = append(dig.Variances, result.Timing.TimingVarianceMs)
		dig.Scores = append(dig.Scores, result.Trends.ConsistencyScore)
		dig.Steadiness[steadiness(result.Timing.TimingVarianceMs)]++

		if result.Trends.TimingImproving {
			dig.Improving++
		}

		if rec.Analysis.TempoSource == "envelope" {
			dig.Estimated++
		}
	}

	return dig
}

func steadiness(sigmaMs float64) string {
	switch {
	case sigmaMs < 10:
		return "machine-tight"
	case sigmaMs < 25:
		return "good"
	case sigmaMs < 50:
		return "loose"
	default:
		return "unsteady"
	}
}

func printDigest(w io.Writer, dig *digest) {
	analyzed := dig.Total - dig.Failed

	fmt.Fprintln(w, "=== Tactus Report Digest ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total recordings:  %d\n", dig.Total)
	fmt.Fprintf(w, "Failed:            %d\n", dig.Failed)
	fmt.Fprintf(w, "Analyzed:          %d\n", analyzed)
	fmt.Fprintln(w)

	if len(dig.Codes) > 0 {
		fmt.Fprintln(w, "--- Failures By Code ---")

		codes := make([]string, 0, len(dig.Codes))
		for code := range dig.Codes {
			codes = append(codes, code)
		}

		slices.SortFunc(codes, func(a, b string) int {
			if dig.Codes[a] != dig.Codes[b] {
				return dig.Codes[b] - dig.Codes[a]
			}

			return strings.Compare(a, b)
		})

		for _, code := range codes {
			fmt.Fprintf(w, "  %-20s %d\n", code, dig.Codes[code])
		}

		fmt.Fprintln(w)
	}

	if analyzed == 0 {
		return
	}

	fmt.Fprintln(w, "--- Steadiness ---")

	for _, label := range []string{"machine-tight", "good", "loose", "unsteady"} {
		fmt.Fprintf(w, "  %-14s %d\n", label+":", dig.Steadiness[label])
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Tempo ---")
	fmt.Fprintf(w, "  min: %.1f  median: %.1f  max: %.1f BPM\n",
		floats.Min(dig.Tempos), shared.Median(dig.Tempos), floats.Max(dig.Tempos))

	if dig.Estimated > 0 {
		fmt.Fprintf(w, "  estimated from envelope: %d\n", dig.Estimated)
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Timing ---")
	fmt.Fprintf(w, "  mean variance: %.1f ms  median: %.1f ms\n", stat.Mean(dig.Variances, nil), shared.Median(dig.Variances))
	fmt.Fprintf(w, "  improving:     %d of %d\n", dig.Improving, analyzed)
	fmt.Fprintf(w, "  mean consistency score: %.2f\n", stat.Mean(dig.Scores, nil))
}

func printCodeDetail(w io.Writer, records []digestRecord, code string) {
	fmt.Fprintln(w)

	var files []string

	for _, rec := range records {
		if rec.ErrorCode != code {
			continue
		}

		file := rec.File
		if file == "" {
			file = "(redacted)"
		}

		files = append(files, fmt.Sprintf("  %s\n    %s", file, rec.Error))
	}

	if len(files) == 0 {
		fmt.Fprintf(w, "No recordings rejected with %s\n", code)

		return
	}

	fmt.Fprintf(w, "=== %s: %d recordings ===\n\n", code, len(files))

	for _, line := range files {
		fmt.Fprintln(w, line)
	}
}
