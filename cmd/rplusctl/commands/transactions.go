package commands

import (
	"github.com/spf13/cobra"
)

// Transactions command (parent command for transaction analytics)
var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Analyze sales transactions",
}

var transactionsSummarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Group a transactions export by item",
	Long: `Group a transactions export by item, split into sales and resales,
with the busiest items first.

The file is a JSON array of transactions or {"transactions": [...]}.`,
	Example: `  rplusctl transactions summarize --file=sales.json
  cat sales.json | rplusctl transactions summarize --file=- --top=10`,
	Args: cobra.NoArgs,
}

// SetupTransactionsFlags configures flags for the transactions commands
func SetupTransactionsFlags(filePtr *string, topPtr *int) {
	transactionsSummarizeCmd.Flags().StringVarP(filePtr, "file", "f", "", "Transactions JSON file, - for stdin")
	transactionsSummarizeCmd.Flags().IntVar(topPtr, "top", 0, "Show only the N busiest items (0 = all)")
	transactionsSummarizeCmd.MarkFlagRequired("file")
}

// GetTransactionsCommands returns transactions subcommands for handler assignment
func GetTransactionsCommands() *cobra.Command {
	return transactionsSummarizeCmd
}
