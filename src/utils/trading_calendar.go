package utils

import (
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// xtbSuffixMIC maps the country suffix of XTB stock and ETF symbols
// ("AAPL.US_9", "VOW.DE", "PKN.PL") to the MIC of the listing exchange.
var xtbSuffixMIC = map[string]string{
	"US": "xnys",
	"UK": "xlon",
	"DE": "xfra",
	"FR": "xpar",
	"NL": "xams",
	"BE": "xbru",
	"IT": "xmil",
	"ES": "xmad",
	"PT": "xlis",
	"SE": "xsto",
	"DK": "xcse",
	"FI": "xhel",
	"NO": "xosl",
	"CH": "xswx",
	"AT": "xwbo",
	"PL": "xwar",
	"CZ": "xpra",
}

// TradingCalendar wraps the exchange calendar of one symbol. A nil Calendar
// means the instrument trades around the clock on weekdays (FX, indices,
// commodities, crypto CFDs) and the server's own trading hours apply.
type TradingCalendar struct {
	MIC      string
	Calendar *calendar.Calendar
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// ExchangeMIC returns the MIC for an XTB symbol, or "" for instruments
// without a listing exchange.
func ExchangeMIC(symbol string) string {
	_, suffix, ok := strings.Cut(symbol, ".")
	if !ok {
		return ""
	}
	// "US_9", "US_4" are fractional and leveraged variants of the same listing.
	suffix, _, _ = strings.Cut(suffix, "_")
	return xtbSuffixMIC[strings.ToUpper(suffix)]
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string) *TradingCalendar {
	mic := ExchangeMIC(symbol)
	if mic == "" {
		return &TradingCalendar{Timezone: time.UTC}
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		// Exchange unknown to the calendar library; let the server decide.
		return &TradingCalendar{MIC: mic, Timezone: time.UTC}
	}
	return &TradingCalendar{MIC: mic, Calendar: cal, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Calendar == nil {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute. Symbols
// without an exchange calendar are always reported open.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Calendar == nil {
		return true
	}
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}
	return tc.Calendar.IsOpen(t)
}
