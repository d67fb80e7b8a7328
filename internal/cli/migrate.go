package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rolo-app/rolo/internal/config"
	"github.com/rolo-app/rolo/internal/database"
	"github.com/rolo-app/rolo/internal/legacy"
)

func newMigrateCommand() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations, optionally importing a legacy data.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), titleStyle.Render("schema up to date"))

			if dataDir == "" {
				return nil
			}

			doc, err := legacy.Load(filepath.Join(dataDir, "data.json"))
			if err != nil {
				return err
			}
			summary, err := legacy.NewImporter(db).Import(doc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("legacy import complete"))
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("users"), summary.Users)
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("sessions"), summary.Sessions)
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("contacts"), summary.Contacts)
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("interactions"), summary.Interactions)
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("associations"), summary.Associations)
			if summary.Skipped > 0 {
				fmt.Fprintln(out, warnStyle.Render(fmt.Sprintf("skipped %d invalid rows", summary.Skipped)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory containing a legacy data.json to import")
	return cmd
}
