// Copyright 2025 The JSON Schema Go Project Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dacolabs/jsonforms-go/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an editing session over HTTP",
	Long: `Start an HTTP server around one editing session.

The server provides:
- GET /api/v1/state, /api/v1/schema and /api/v1/uischema
- POST /api/v1/actions to apply an editing action
- a WebSocket state stream at /api/v1/stream
- Prometheus metrics at /metrics

Without --schema the session starts empty; clients load documents with a
SET_SCHEMAS action.`,
	Example: `
  formedit serve -s person.schema.json -u person.ui.json
  formedit serve -s person.schema.yaml --port 9090 --host 0.0.0.0`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, state, err := loadState(cmd.Context())
		if err != nil {
			return err
		}

		config := server.DefaultConfig()
		config.Host = viper.GetString("server.host")
		config.Port = viper.GetInt("server.port")
		config.EnableMetrics = viper.GetBool("server.metrics")
		config.EnableCORS = viper.GetBool("server.cors")

		session := server.NewSession(ed, state, server.NewMetrics(prometheus.DefaultRegisterer))
		srv, err := server.New(config, session)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, fmt.Sprintf("formedit server starting at http://%s", srv.Addr()))
		if !viper.GetBool("quiet") {
			fmt.Fprintf(out, "API: http://%s/api/v1/state\n", srv.Addr())
			if config.EnableMetrics {
				fmt.Fprintf(out, "Metrics: http://%s/metrics\n", srv.Addr())
			}
		}
		return srv.StartWithGracefulShutdown(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addDocumentFlags(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("host", "localhost", "server host")
	serveCmd.Flags().Bool("metrics", true, "enable Prometheus metrics endpoint")
	serveCmd.Flags().Bool("cors", true, "enable CORS headers")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.metrics", serveCmd.Flags().Lookup("metrics"))
	_ = viper.BindPFlag("server.cors", serveCmd.Flags().Lookup("cors"))
}
