package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/transactions"
)

// SummarizeTransactions groups posted transactions by item.
//
// POST /api/v1/transactions/items
//
// The body is a JSON array of transactions or {"transactions": [...]}.
func SummarizeTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := transactions.Decode(c.Request.Body)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		summary, err := transactions.Summarize(list)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid transactions", err)
			return
		}

		logging.Debug("Transactions: Summarized %d transactions into %d items",
			summary.Transactions, len(summary.Items))
		success(c, summary)
	}
}
