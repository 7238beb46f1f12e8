package handlers

import (
	"net/http"

	"github.com/rplus-dev/rplus/cmd/rplusctl/client"
	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/cmd/rplusctl/display"
	"github.com/rplus-dev/rplus/cmd/rplusctl/utils"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/navigation"
	"github.com/spf13/cobra"
)

// HandleNav shows the navbar counters, optionally refetching them first or
// redrawing them until interrupted.
func HandleNav(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	apiClient := client.CreateAPIClient()

	fetchAndDisplay := func() error {
		var (
			state *navigation.State
			err   error
		)
		if config.Nav.Refresh {
			state, err = apiClient.RefreshNavigation()
			if client.IsStatus(err, http.StatusConflict) {
				logging.Error("The daemon has no signed-in user; set RPLUS_AUTH_COOKIE before starting rplusd")
			}
		} else {
			state, err = apiClient.GetNavigation()
		}
		if err != nil {
			return explain(err)
		}

		display.DisplayNavigation(*state)
		return nil
	}

	return utils.RunWithWatch(fetchAndDisplay, config.Nav.Watch, utils.WatchInterval)
}
