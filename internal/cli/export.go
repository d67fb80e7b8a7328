package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rolo-app/rolo/internal/config"
	"github.com/rolo-app/rolo/internal/database"
	"github.com/rolo-app/rolo/internal/repository"
	"github.com/rolo-app/rolo/internal/service"
)

func newExportCommand() *cobra.Command {
	var username, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's contacts and interactions to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Open(cfg)
			if err != nil {
				return err
			}

			userRepo := repository.NewUserRepository(db)
			contactRepo := repository.NewContactRepository(db)
			interactionRepo := repository.NewInteractionRepository(db)
			contacts := service.NewContactService(contactRepo)
			interactions := service.NewInteractionService(interactionRepo, contactRepo, contacts)
			exports := service.NewExportService(contacts, interactions)

			user, err := userRepo.FindByUsername(username)
			if err != nil {
				if errors.Is(err, repository.ErrUserNotFound) {
					return fmt.Errorf("no user named %q", username)
				}
				return err
			}

			doc, err := exports.Build(user)
			if err != nil {
				return err
			}
			raw, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = exports.Filename()
			}
			if err := os.WriteFile(outPath, raw, 0o600); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, titleStyle.Render("export written"))
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("file"), outPath)
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("contacts"), len(doc.Contacts))
			fmt.Fprintf(out, "%s %d\n", labelStyle.Render("interactions"), len(doc.Interactions))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username to export")
	cmd.Flags().StringVar(&outPath, "out", "", "output path (defaults to a dated filename)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
