// Package display provides output formatting and display functions for rplusctl.
//
// Every function honors the global --output flag: "table" renders aligned
// columns through text/tabwriter with humanized numbers, "json" writes the
// daemon's data indented so it can be piped into other tools.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rplus-dev/rplus/cmd/rplusctl/client"
	"github.com/rplus-dev/rplus/cmd/rplusctl/config"
	"github.com/rplus-dev/rplus/cmd/rplusctl/utils"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/navigation"
	"github.com/rplus-dev/rplus/internal/presence"
	"github.com/rplus-dev/rplus/internal/scheduler"
	"github.com/rplus-dev/rplus/internal/settings"
	"github.com/rplus-dev/rplus/internal/transactions"
)

// Out is where all command output goes. Tests replace it with a buffer.
var Out io.Writer = os.Stdout

func jsonOutput() bool {
	return config.Global.Output == "json"
}

func printJSON(v any) {
	encoder := json.NewEncoder(Out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Fprintln(Out, "Error encoding JSON output")
	}
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
}

// DisplayInfo shows the daemon's health, version and about tabs.
func DisplayInfo(health client.Health, about client.About) {
	if jsonOutput() {
		printJSON(map[string]any{"health": health, "about": about})
		return
	}

	fmt.Fprintf(Out, "Daemon:   %s v%s\n", about.Name, health.Version)
	fmt.Fprintf(Out, "Status:   %s\n", health.Status)
	fmt.Fprintf(Out, "Uptime:   %s\n", health.Uptime)
	fmt.Fprintf(Out, "API:      %s\n", config.Global.APIAddr)

	if config.Global.Verbose {
		labels := make([]string, len(about.Tabs))
		for i, tab := range about.Tabs {
			labels[i] = tab.Label
		}
		fmt.Fprintf(Out, "Tabs:     %s\n", strings.Join(labels, ", "))
	}
}

// DisplayAbout shows the about page tabs with the selected one marked.
func DisplayAbout(about client.About) {
	if jsonOutput() {
		printJSON(about)
		return
	}

	fmt.Fprintf(Out, "%s v%s\n\n", about.Name, about.Version)
	w := newTable()
	defer w.Flush()

	fmt.Fprintln(w, "TAB\tPATH")
	for _, tab := range about.Tabs {
		label := tab.Label
		if tab.Path == about.Selected.Path {
			label += "*"
		}
		path := tab.Path
		if path == "" {
			path = "/"
		}
		fmt.Fprintf(w, "%s\t%s\n", label, path)
	}
}

// DisplayPresences shows one row per requested user, in request order.
func DisplayPresences(userIDs []int64, results map[int64]presence.UserPresence) {
	if jsonOutput() {
		printJSON(results)
		return
	}

	w := newTable()
	defer w.Flush()

	fmt.Fprintln(w, "USER ID\tPRESENCE\tLOCATION\tPLACE ID")
	for _, id := range userIDs {
		result, ok := results[id]
		if !ok {
			fmt.Fprintf(w, "%d\t-\t-\t-\n", id)
			continue
		}

		location, placeID := "-", "-"
		if result.Location != nil {
			location = result.Location.Name
			placeID = fmt.Sprintf("%d", result.Location.ID)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", id, result.Type, location, placeID)
	}
}

// DisplayPresenceMetrics shows the coalescer counters and limits.
func DisplayPresenceMetrics(m client.PresenceMetrics) {
	if jsonOutput() {
		printJSON(m)
		return
	}

	w := newTable()
	defer w.Flush()

	fmt.Fprintf(w, "Batch size:\t%d users\n", m.Config.MaxSize)
	fmt.Fprintf(w, "Minimum delay:\t%s\n", m.Config.MinimumDelay)
	fmt.Fprintf(w, "Parallelism:\t%d\n", m.Config.LevelOfParallelism)
	fmt.Fprintf(w, "Queued:\t%d\n", m.Metrics.Queued)
	fmt.Fprintf(w, "In flight:\t%d\n", m.Metrics.InFlight)
	fmt.Fprintf(w, "Batches:\t%s (%s failed)\n",
		humanize.Comma(m.Metrics.DispatchedBatches), humanize.Comma(m.Metrics.FailedBatches))
	fmt.Fprintf(w, "Lookups:\t%s resolved, %s rejected\n",
		humanize.Comma(m.Metrics.ResolvedItems), humanize.Comma(m.Metrics.RejectedItems))
}

// DisplayNavigation shows the navbar counters as the browser would render them.
func DisplayNavigation(state navigation.State) {
	if jsonOutput() {
		printJSON(state)
		return
	}

	w := newTable()
	defer w.Flush()

	if !state.Loaded {
		fmt.Fprintln(w, "Robux:\tnot loaded yet")
	} else {
		fmt.Fprintf(w, "Robux:\t%s\t(%s)\n", state.RobuxText, state.BalanceText)
		if state.DevexVisible && state.DevexText != "" {
			fmt.Fprintf(w, "DevEx:\t%s\n", state.DevexText)
		}
	}
	fmt.Fprintf(w, "Friend requests:\t%s\n", humanize.Comma(state.FriendRequests))
	if !state.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated:\t%s\n", humanize.Time(state.UpdatedAt))
	}
}

// DisplaySettings lists every setting; defaults are marked unless verbose
// output asks for the descriptions.
func DisplaySettings(entries []settings.Entry) {
	if jsonOutput() {
		printJSON(entries)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(Out, "No settings found")
		return
	}

	w := newTable()
	defer w.Flush()

	if config.Global.Verbose {
		fmt.Fprintln(w, "KEY\tVALUE\tKIND\tDEFAULT\tDESCRIPTION")
	} else {
		fmt.Fprintln(w, "KEY\tVALUE\tKIND")
	}

	for _, entry := range entries {
		value := formatValue(entry.Value)
		if entry.IsDefault {
			value += " (default)"
		}
		kind := string(entry.Kind)
		if kind == "" {
			kind = "-"
		}

		if config.Global.Verbose {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				entry.Key, value, kind, formatValue(entry.Default), entry.Description)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Key, value, kind)
		}
	}
}

// DisplaySetting shows a single key and value.
func DisplaySetting(change settings.Change) {
	if jsonOutput() {
		printJSON(change)
		return
	}
	fmt.Fprintf(Out, "%s = %s\n", change.Key, formatValue(change.Value))
}

// DisplaySales shows the sales stat of an asset, or why there is none.
func DisplaySales(resp client.SalesResponse) {
	if jsonOutput() {
		printJSON(resp)
		return
	}
	if resp.Stat == nil {
		fmt.Fprintf(Out, "No sales stat for asset %d (not your item, limited, or the counter is off)\n", resp.AssetID)
		return
	}
	fmt.Fprintf(Out, "Asset %d\n%s: %s\n", resp.AssetID, resp.Stat.Label, resp.Stat.Value)
}

// DisplayTransactionSummary shows the per-item breakdown, busiest first.
// top limits the rows shown; 0 shows every item.
func DisplayTransactionSummary(summary transactions.Summary, top int) {
	items := summary.Items
	if top > 0 && len(items) > top {
		items = items[:top]
	}

	if jsonOutput() {
		summary.Items = items
		printJSON(summary)
		return
	}

	fmt.Fprintf(Out, "%s transactions (%s sales, %s resales), %s Robux net revenue\n\n",
		humanize.Comma(int64(summary.Transactions)), humanize.Comma(int64(summary.Sales)),
		humanize.Comma(int64(summary.Resales)), humanize.Comma(summary.Revenue))

	if len(items) == 0 {
		fmt.Fprintln(Out, "No items")
		return
	}

	w := newTable()
	defer w.Flush()

	if config.Global.Verbose {
		fmt.Fprintln(w, "ITEM\tTYPE\tSALES\tRESALES\tREVENUE\tLINK")
	} else {
		fmt.Fprintln(w, "ITEM\tTYPE\tSALES\tRESALES\tREVENUE")
	}
	for _, item := range items {
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
			item.Name, item.Type,
			humanize.Comma(int64(len(item.SaleTransactions))),
			humanize.Comma(int64(len(item.ResaleTransactions))),
			humanize.Comma(item.Revenue))
		if config.Global.Verbose {
			row += "\t" + item.Link
		}
		fmt.Fprintln(w, row)
	}
}

// DisplayTasks shows the daemon's periodic tasks sorted by name.
func DisplayTasks(tasks []scheduler.TaskStats) {
	if jsonOutput() {
		printJSON(tasks)
		return
	}
	if len(tasks) == 0 {
		fmt.Fprintln(Out, "No tasks running")
		return
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })

	w := newTable()
	defer w.Flush()

	fmt.Fprintln(w, "TASK\tEVERY\tRUNS\tFAILURES\tLAST ERROR")
	for _, task := range tasks {
		lastError := task.LastError
		if lastError == "" {
			lastError = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			task.Name, formatInterval(task.Interval),
			humanize.Comma(task.Runs), humanize.Comma(task.Failures), lastError)
	}
}

func formatInterval(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}
	return utils.FormatDuration(d)
}

func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case float64:
		return humanize.CommafWithDigits(value, 2)
	default:
		return fmt.Sprintf("%v", value)
	}
}
