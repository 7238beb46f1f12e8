package handlers

import (
	"fmt"
	"io"
	"os"

	"github.com/rplus-dev/rplus/cmd/rplusctl/client"
	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/cmd/rplusctl/display"
	"github.com/rplus-dev/rplus/cmd/rplusctl/utils"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/transactions"
	"github.com/spf13/cobra"
)

// HandleTransactionsSummarize reads a transactions export and shows the
// per-item breakdown computed by the daemon.
func HandleTransactionsSummarize(cmd *cobra.Command, args []string) error {
	utils.SetupLogging()

	list, err := readTransactions(config.Transactions.File, cmd.InOrStdin())
	if err != nil {
		return err
	}
	logging.Info("Summarizing %d transactions", len(list))

	summary, err := client.CreateAPIClient().SummarizeTransactions(list)
	if err != nil {
		return explain(err)
	}

	display.DisplayTransactionSummary(*summary, config.Transactions.Top)
	logging.Success("Grouped %d transactions into %d items", summary.Transactions, len(summary.Items))
	return nil
}

// readTransactions decodes path, or stdin when path is "-". Decoding
// locally catches a malformed file before it reaches the daemon.
func readTransactions(path string, stdin io.Reader) ([]transactions.Transaction, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open transactions file: %w", err)
		}
		defer f.Close()
		r = f
	}

	list, err := transactions.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions from %s: %w", path, err)
	}
	return list, nil
}
