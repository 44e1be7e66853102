package utils

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = loadIST()

func loadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// Cash segment session, as offsets from IST midnight.
const (
	sessionOpen  = 9*time.Hour + 15*time.Minute
	sessionClose = 15*time.Hour + 30*time.Minute
)

// SessionBounds returns the NSE cash session open and close on t's IST date.
func SessionBounds(t time.Time) (open, close time.Time) {
	d := t.In(IST)
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, IST)
	return midnight.Add(sessionOpen), midnight.Add(sessionClose)
}

// Holiday returns the name of the NSE trading holiday on t's IST date.
func Holiday(t time.Time) (string, bool) {
	name, ok := nseHolidays[t.In(IST).Format(time.DateOnly)]
	return name, ok
}

// IsTradingDay reports whether t's IST date is a weekday that is not an
// NSE holiday.
func IsTradingDay(t time.Time) bool {
	t = t.In(IST)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	_, holiday := Holiday(t)
	return !holiday
}

// IsMarketOpenAt reports whether the cash session is live at t, both
// bounds inclusive.
func IsMarketOpenAt(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	open, close := SessionBounds(t)
	return !t.Before(open) && !t.After(close)
}

// nseHolidays lists exchange holidays by IST date. Refresh yearly from the
// NSE holiday circular.
var nseHolidays = map[string]string{
	"2026-01-26": "Republic Day",
	"2026-02-17": "Mahashivratri",
	"2026-03-10": "Holi",
	"2026-03-30": "Id-ul-Fitr (Ramadan)",
	"2026-04-02": "Ram Navami",
	"2026-04-03": "Good Friday",
	"2026-04-14": "Dr. Ambedkar Jayanti",
	"2026-05-01": "Maharashtra Day",
	"2026-05-25": "Buddha Purnima",
	"2026-06-05": "Id-ul-Zuha (Bakri Id)",
	"2026-07-06": "Muharram",
	"2026-08-15": "Independence Day",
	"2026-08-18": "Parsi New Year",
	"2026-09-04": "Milad-un-Nabi",
	"2026-10-02": "Mahatma Gandhi Jayanti",
	"2026-10-20": "Dussehra",
	"2026-11-09": "Diwali (Laxmi Pujan)",
	"2026-11-10": "Diwali (Balipratipada)",
	"2026-11-30": "Guru Nanak Jayanti",
	"2026-12-25": "Christmas",
}

// MarketStatus returns the current market status string.
func MarketStatus() string {
	return MarketStatusAt(NowIST())
}

// MarketStatusAt returns PRE-MARKET, OPEN or CLOSED, with the reason
// appended on weekends and holidays.
func MarketStatusAt(t time.Time) string {
	t = t.In(IST)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if name, ok := Holiday(t); ok {
		return "CLOSED (" + name + ")"
	}

	open, close := SessionBounds(t)
	switch {
	case t.Before(open):
		return "PRE-MARKET"
	case !t.After(close):
		return "OPEN"
	}
	return "CLOSED"
}
