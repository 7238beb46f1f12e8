package handlers

import (
	"github.com/rplus-dev/rplus/cmd/rplusctl/client"
	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/cmd/rplusctl/display"
	"github.com/rplus-dev/rplus/cmd/rplusctl/utils"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/spf13/cobra"
)

// HandleInfo shows the daemon's health and version.
func HandleInfo(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	logging.Info("Fetching daemon information from API server: %s", config.Global.APIAddr)

	apiClient := client.CreateAPIClient()
	health, err := apiClient.GetHealth()
	if err != nil {
		return explain(err)
	}
	about, err := apiClient.GetAbout("")
	if err != nil {
		return explain(err)
	}

	display.DisplayInfo(*health, *about)
	logging.Success("Daemon v%s is %s", health.Version, health.Status)
	return nil
}

// HandleAbout shows the about page tabs.
func HandleAbout(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	about, err := client.CreateAPIClient().GetAbout(config.About.Tab)
	if err != nil {
		return explain(err)
	}

	display.DisplayAbout(*about)
	return nil
}

// HandleTasks lists the daemon's periodic tasks.
func HandleTasks(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	tasks, err := client.CreateAPIClient().GetTasks()
	if err != nil {
		return explain(err)
	}

	display.DisplayTasks(tasks)
	logging.Success("Successfully retrieved %d tasks", len(tasks))
	return nil
}
