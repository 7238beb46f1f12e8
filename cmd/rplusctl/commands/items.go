package commands

import (
	"github.com/spf13/cobra"
)

// Sales command (item sales stat)
var salesCmd = &cobra.Command{
	Use:   "sales ASSET_ID",
	Short: "Show the sales count of an item you created",
	Long: `Show the sales count of an item, as shown on its item page.

Only items created by the signed-in user that are not limited get a
sales stat, and only while the itemSalesCounter setting is on.`,
	Example: `  rplusctl sales 1818`,
	Args:    cobra.ExactArgs(1),
}

// GetSalesCommand returns the sales command for handler assignment
func GetSalesCommand() *cobra.Command {
	return salesCmd
}
