package cli

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/rolo-app/rolo/internal/config"
	"github.com/rolo-app/rolo/internal/database"
	"github.com/rolo-app/rolo/internal/health"
)

// newDoctorCommand checks the things serve needs before it starts: the
// database and, when telemetry is enabled, the OTLP collector endpoint.
func newDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check database and telemetry connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("rolo doctor"))

			failed := false
			db, err := database.Open(cfg)
			if err != nil {
				failed = true
				fmt.Fprintf(out, "%s %v\n", labelStyle.Render("database"), err)
			} else {
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				result := health.NewDatabaseChecker(db).Check(ctx)
				cancel()
				if result.Healthy {
					fmt.Fprintf(out, "%s ok\n", labelStyle.Render("database"))
				} else {
					failed = true
					fmt.Fprintf(out, "%s %s\n", labelStyle.Render("database"), result.Error)
				}
			}

			telemetry := cfg.OTELMetricsEnabled || cfg.OTELTracesEnabled || cfg.OTELLogsEnabled
			if !telemetry {
				fmt.Fprintf(out, "%s disabled\n", labelStyle.Render("collector"))
			} else {
				conn, err := net.DialTimeout("tcp", cfg.OTELExporterOTLPEndpoint, 3*time.Second)
				if err != nil {
					failed = true
					fmt.Fprintf(out, "%s %v\n", labelStyle.Render("collector"), err)
				} else {
					conn.Close()
					fmt.Fprintf(out, "%s ok\n", labelStyle.Render("collector"))
				}
			}

			if failed {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		},
	}
}
