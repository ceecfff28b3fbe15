package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"pulseboard/internal/ingest"
	"pulseboard/internal/scoring"
	"pulseboard/internal/server"
	"pulseboard/internal/visuals"

	"github.com/spf13/cobra"
)

var (
	scoreInput  string
	scoreOutput string
	scoreFormat string
	scoreCharts bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a snapshot CSV and print the results",
	Long: `Reads a weekly snapshot table, scores every project-week and prints a
per-project summary table, the full JSON document, or Mermaid trend charts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := scoreInput
		if path == "" {
			path = cfg.SnapshotPath
		}

		snapshots, err := ingest.LoadCSV(path)
		if err != nil {
			return err
		}

		results := scoring.Score(snapshots, cfg.Thresholds)

		out := os.Stdout
		if scoreOutput != "" {
			f, err := os.Create(scoreOutput)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		switch scoreFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(server.BuildPayload(results)); err != nil {
				return fmt.Errorf("encoding results: %w", err)
			}
		case "table":
			printSummaryTable(out, results)
		default:
			return fmt.Errorf("unknown format %q (want table or json)", scoreFormat)
		}

		if scoreCharts || cfg.EnableMermaidCharts {
			printCharts(out, results)
		}

		return nil
	},
}

func printSummaryTable(out *os.File, results map[string][]scoring.ScoreRecord) {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tWEEK\tHEALTH\tCONFIDENCE\tTREND\tTOP DETRACTOR")
	for _, id := range ids {
		records := results[id]
		if len(records) == 0 {
			continue
		}
		latest := records[len(records)-1]

		detractor := "-"
		if label, _, ok := scoring.TopDetractor(latest); ok {
			detractor = label
		}

		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%+.1f\t%s\n",
			latest.ProjectName,
			latest.WeekEnding.Format("2006-01-02"),
			latest.HealthScore,
			latest.ConfidenceScore,
			latest.TrendDelta,
			detractor,
		)
	}
	w.Flush()
}

func printCharts(out *os.File, results map[string][]scoring.ScoreRecord) {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		records := results[id]
		if len(records) == 0 {
			continue
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, visuals.GenerateTrendChart(records))
		fmt.Fprintln(out)
		fmt.Fprintln(out, visuals.GenerateContributionChart(records[len(records)-1]))
	}
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreInput, "input", "i", "", "snapshot CSV path (default: configured SNAPSHOT_PATH)")
	scoreCmd.Flags().StringVarP(&scoreOutput, "output", "o", "", "output file path (default: stdout)")
	scoreCmd.Flags().StringVarP(&scoreFormat, "format", "f", "table", "output format: table or json")
	scoreCmd.Flags().BoolVar(&scoreCharts, "charts", false, "append Mermaid trend and contribution charts")
	rootCmd.AddCommand(scoreCmd)
}
