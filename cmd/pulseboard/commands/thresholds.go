package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"pulseboard/internal/scoring"

	"github.com/spf13/cobra"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Print the default scoring thresholds",
	Long: `Prints the documented default threshold map. Any of these keys can be
overridden via the thresholds YAML file or as query parameters on /api/data.`,
	Run: func(cmd *cobra.Command, args []string) {
		defaults := scoring.DefaultThresholds()

		keys := make([]string, 0, len(defaults))
		for k := range defaults {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "THRESHOLD\tDEFAULT")
		for _, k := range keys {
			fmt.Fprintf(w, "%s\t%g\n", k, defaults[k])
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(thresholdsCmd)
}
