package handlers

import (
	"fmt"
	"strconv"

	"github.com/rplus-dev/rplus/cmd/rplusctl/client"
	"github.com/rplus-dev/rplus/cmd/rplusctl/display"
	"github.com/rplus-dev/rplus/cmd/rplusctl/utils"
	"github.com/spf13/cobra"
)

// HandleSales shows the sales stat of the asset given as argument.
func HandleSales(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	assetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || assetID <= 0 {
		return fmt.Errorf("invalid asset ID '%s': must be a positive integer", args[0])
	}

	resp, err := client.CreateAPIClient().GetAssetSales(assetID)
	if err != nil {
		return explain(err)
	}

	display.DisplaySales(*resp)
	return nil
}
