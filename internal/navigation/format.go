// Package navigation keeps the navigation bar counters of the signed-in user
// up to date: the Robux balance in abbreviated, full and DevEx forms, and the
// pending friend-request count.
//
// REFRESH LOOPS:
//   - Live (250ms): refetches the balance when navigation-robux-live is on,
//     and fills in the DevEx estimate as soon as show-devex-rate asks for it
//   - Counters (500ms): refetches balance and friend requests while the
//     navcounter toggle is on, otherwise re-renders what is already known
//
// Both loops run on an internal/scheduler Scheduler so tests can drive them
// with a fake clock.
package navigation

import (
	"math"

	"github.com/dustin/go-humanize"
)

// DevexRate is the USD paid out per Robux through the Developer Exchange.
const DevexRate = 0.0035

// DefaultAbbreviationThreshold is used when the abbreviation setting is
// unset or not positive.
const DefaultAbbreviationThreshold = 1000

var units = []struct {
	value  int64
	suffix string
}{
	{1_000, "K"},
	{1_000_000, "M"},
	{1_000_000_000, "B"},
	{1_000_000_000_000, "T"},
}

// FormatRobux renders count for the navigation bar. Counts below threshold
// are shown in full with thousands separators; larger counts use the biggest
// unit not exceeding them, floored, with a trailing "+" (12,345 -> "12K+").
func FormatRobux(count int64, threshold float64) string {
	if threshold <= 0 {
		threshold = DefaultAbbreviationThreshold
	}
	if float64(count) < threshold {
		return humanize.Comma(count)
	}

	for i := len(units) - 1; i >= 0; i-- {
		if count >= units[i].value {
			return humanize.Comma(count/units[i].value) + units[i].suffix + "+"
		}
	}
	// Threshold below the smallest unit
	return humanize.Comma(count)
}

// FormatBalance renders the full balance, e.g. "1,234 Robux".
func FormatBalance(count int64) string {
	return humanize.Comma(count) + " Robux"
}

// FormatDevex renders the DevEx value of count rounded to cents, e.g.
// "$4.32 USD". Trailing zeros are dropped ("$3.5 USD").
func FormatDevex(count int64) string {
	usd := math.Round(float64(count)*DevexRate*100) / 100
	return "$" + humanize.CommafWithDigits(usd, 2) + " USD"
}
