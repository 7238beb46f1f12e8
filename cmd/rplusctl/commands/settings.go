package commands

import (
	"github.com/spf13/cobra"
)

// Settings command (parent command for settings operations)
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage user settings",
	Long: `List, read and change the settings stored by the daemon.

Values are parsed as true/false, numbers, or strings. Setting a value to
null resets it to its default.`,
}

var settingsLsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List all settings",
	Example: `  rplusctl settings ls
  rplusctl settings ls -v`,
	Args: cobra.NoArgs,
}

var settingsGetCmd = &cobra.Command{
	Use:     "get KEY",
	Short:   "Show one setting",
	Example: `  rplusctl settings get navcounter`,
	Args:    cobra.ExactArgs(1),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Example: `  rplusctl settings set navigation-robux-live true
  rplusctl settings set navigation-counter-abbreviation 10000
  rplusctl settings set show-devex-rate null`,
	Args: cobra.ExactArgs(2),
}

// GetSettingsCommands returns settings subcommands for handler assignment
func GetSettingsCommands() (*cobra.Command, *cobra.Command, *cobra.Command) {
	return settingsLsCmd, settingsGetCmd, settingsSetCmd
}
