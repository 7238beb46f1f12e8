// Package main provides the entry point for the rplus CLI (rplusctl).
package main

import (
	"os"

	"github.com/rplus-dev/rplus/cmd/rplusctl/commands"
	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/cmd/rplusctl/handlers"
)

func init() {
	rootCmd := commands.RootCmd

	rootCmd.Version = config.Version
	rootCmd.PersistentPreRunE = config.ValidateGlobalFlags

	commands.SetupCommands()
	commands.SetupGlobalFlags(rootCmd, &config.Global.APIAddr, &config.Global.LogLevel,
		&config.Global.Timeout, &config.Global.Verbose, &config.Global.Output, config.DefaultAPIAddr,
		config.DefaultTimeout)
	commands.SetupInfoFlags(&config.About.Tab)
	commands.SetupNavFlags(&config.Nav.Watch, &config.Nav.Refresh)
	commands.SetupTransactionsFlags(&config.Transactions.File, &config.Transactions.Top)

	setupCommandHandlers()
}

// setupCommandHandlers assigns RunE functions to commands
func setupCommandHandlers() {
	infoCmd, aboutCmd, tasksCmd := commands.GetInfoCommands()
	infoCmd.RunE = handlers.HandleInfo
	aboutCmd.RunE = handlers.HandleAbout
	tasksCmd.RunE = handlers.HandleTasks

	presenceGetCmd, presenceMetricsCmd := commands.GetPresenceCommands()
	presenceGetCmd.RunE = handlers.HandlePresenceGet
	presenceMetricsCmd.RunE = handlers.HandlePresenceMetrics

	commands.GetNavCommand().RunE = handlers.HandleNav

	settingsLsCmd, settingsGetCmd, settingsSetCmd := commands.GetSettingsCommands()
	settingsLsCmd.RunE = handlers.HandleSettingsList
	settingsGetCmd.RunE = handlers.HandleSettingsGet
	settingsSetCmd.RunE = handlers.HandleSettingsSet

	commands.GetSalesCommand().RunE = handlers.HandleSales
	commands.GetTransactionsCommands().RunE = handlers.HandleTransactionsSummarize
}

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
