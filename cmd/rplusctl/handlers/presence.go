package handlers

import (
	"github.com/rplus-dev/rplus/cmd/rplusctl/client"
	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/cmd/rplusctl/display"
	"github.com/rplus-dev/rplus/cmd/rplusctl/utils"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/spf13/cobra"
)

// HandlePresenceGet looks up the presence of the users given as arguments.
// All of them go to the daemon in one request and share a batch there.
func HandlePresenceGet(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	userIDs, err := utils.ParseUserIDs(args)
	if err != nil {
		return err
	}

	logging.Info("Looking up presence of %d users via %s", len(userIDs), config.Global.APIAddr)

	results, err := client.CreateAPIClient().GetPresences(userIDs)
	if err != nil {
		return explain(err)
	}

	display.DisplayPresences(userIDs, results)
	logging.Success("Resolved presence of %d users", len(results))
	return nil
}

// HandlePresenceMetrics shows the coalescer counters.
func HandlePresenceMetrics(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	metrics, err := client.CreateAPIClient().GetPresenceMetrics()
	if err != nil {
		return explain(err)
	}

	display.DisplayPresenceMetrics(*metrics)
	return nil
}
