// Package cli defines the rolo command tree.
package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Width(14)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rolo",
		Short:         "Personal contact and interaction tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newExportCommand())
	root.AddCommand(newDoctorCommand())
	return root
}
