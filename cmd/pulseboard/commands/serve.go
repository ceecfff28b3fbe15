package commands

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"pulseboard/internal/server"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveOpen bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API over HTTP",
	Long: `Starts the HTTP server exposing the scored snapshot table:

  GET /api/data        summaries (latest week per project) and full series;
                       query parameters act as threshold overrides
  GET /api/thresholds  the documented default threshold map
  GET /health          liveness probe`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveOpen {
			url := fmt.Sprintf("http://localhost%s/api/data", ensurePort(cfg.ListenAddr))
			if err := browser.OpenURL(url); err != nil {
				log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
			}
		}

		return server.New(cfg).Start(ctx)
	},
}

// ensurePort normalizes a listen address like ":5050" or "0.0.0.0:5050" to
// the ":port" suffix usable in a localhost URL.
func ensurePort(addr string) string {
	if idx := strings.LastIndex(addr, ":"); idx >= 0 {
		return addr[idx:]
	}
	return ":" + addr
}

func init() {
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the data endpoint in a browser")
	rootCmd.AddCommand(serveCmd)
}
