// Package transactions groups a creator's sale transactions by item and
// splits first-hand sales from resales.
package transactions

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/rplus-dev/rplus/internal/validate"
)

// Transaction is one sale as exported by the site's transaction history.
type Transaction struct {
	ItemType     string `json:"item_type" validate:"required"`
	ItemID       int64  `json:"item_id" validate:"gt=0"`
	ItemName     string `json:"item_name"`
	UniverseID   int64  `json:"universe_id,omitempty"`
	GrossRevenue int64  `json:"gross_revenue" validate:"gte=0"`
	NetRevenue   int64  `json:"net_revenue"`
}

// Key identifies the item a transaction belongs to.
func (t Transaction) Key() string {
	return t.ItemType + ":" + strconv.FormatInt(t.ItemID, 10)
}

// IsResale guesses whether the creator only got the 10% resale share of the
// sale. For gross revenue above 10 one Robux is allowed for the fee rounding
// up. Free items are never resales.
func IsResale(t Transaction) bool {
	if t.GrossRevenue == 0 {
		return false
	}

	net := t.NetRevenue
	if t.GrossRevenue > 10 {
		net--
	}
	return float64(net) <= float64(t.GrossRevenue)*0.1
}

// Item aggregates every transaction of one item.
type Item struct {
	ID                 int64         `json:"id"`
	Name               string        `json:"name"`
	Type               string        `json:"type"`
	Revenue            int64         `json:"revenue"`
	Link               string        `json:"link,omitempty"`
	SaleTransactions   []Transaction `json:"sale_transactions"`
	ResaleTransactions []Transaction `json:"resale_transactions"`
}

// TransactionCount is the number of sales and resales of the item.
func (i *Item) TransactionCount() int {
	return len(i.SaleTransactions) + len(i.ResaleTransactions)
}

// Aggregate groups transactions by item, summing net revenue, and sorts the
// items by transaction count, busiest first. Items with equal counts keep
// the order they first appeared in.
func Aggregate(transactions []Transaction) []Item {
	index := make(map[string]int)
	var items []Item

	for _, t := range transactions {
		i, ok := index[t.Key()]
		if !ok {
			i = len(items)
			index[t.Key()] = i
			items = append(items, Item{
				ID:                 t.ItemID,
				Name:               t.ItemName,
				Type:               t.ItemType,
				Link:               ItemLink(t),
				SaleTransactions:   []Transaction{},
				ResaleTransactions: []Transaction{},
			})
		}

		item := &items[i]
		item.Revenue += t.NetRevenue
		if IsResale(t) {
			item.ResaleTransactions = append(item.ResaleTransactions, t)
		} else {
			item.SaleTransactions = append(item.SaleTransactions, t)
		}
	}

	sort.SliceStable(items, func(a, b int) bool {
		return items[a].TransactionCount() > items[b].TransactionCount()
	})
	return items
}

// Summary is the aggregate view over a set of transactions.
type Summary struct {
	Items        []Item `json:"items"`
	Transactions int    `json:"transactions"`
	Sales        int    `json:"sales"`
	Resales      int    `json:"resales"`
	Revenue      int64  `json:"revenue"`
}

// Summarize validates transactions and aggregates them.
func Summarize(transactions []Transaction) (*Summary, error) {
	for i := range transactions {
		if err := validate.Struct(&transactions[i]); err != nil {
			return nil, fmt.Errorf("invalid transaction %d: %w", i, err)
		}
	}

	summary := &Summary{
		Items:        Aggregate(transactions),
		Transactions: len(transactions),
	}
	for _, item := range summary.Items {
		summary.Sales += len(item.SaleTransactions)
		summary.Resales += len(item.ResaleTransactions)
		summary.Revenue += item.Revenue
	}
	return summary, nil
}

// Decode reads transactions as a JSON array or as an object with a
// "transactions" array.
func Decode(r io.Reader) ([]Transaction, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	var list []Transaction
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var wrapped struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return wrapped.Transactions, nil
}
