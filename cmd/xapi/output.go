package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
)

var weekdays = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// render prints v as JSON, or rows as a table under header.
func render(v any, header []string, rows [][]string) error {
	if globalFlags.Output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if len(rows) == 0 {
		pterm.Info.Println("no records")
		return nil
	}
	data := append(pterm.TableData{header}, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// renderRecord prints one record as a two-column table.
func renderRecord(v any, pairs [][]string) error {
	if globalFlags.Output == "json" {
		return render(v, nil, nil)
	}
	return pterm.DefaultTable.WithData(pairs).Render()
}

// -----------------------------------------------------------------------------

func msTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05.000")
}

// msOfDay formats a trading-hours bound, milliseconds after midnight CET.
func msOfDay(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func weekday(day int) string {
	if day < 1 || day >= len(weekdays) {
		return strconv.Itoa(day)
	}
	return weekdays[day]
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optNum(f *float64) string {
	if f == nil {
		return "-"
	}
	return num(*f)
}
