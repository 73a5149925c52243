// Package report builds the plain-text monthly overtime report that is
// emailed to the supervisor.
package report

import (
	"fmt"
	"strings"
	"time"

	"nadgodziny/internal/core"
)

// Polish month names in the genitive case, as used after "za".
var monthNamesGenitive = [13]string{
	"",
	"stycznia",
	"lutego",
	"marca",
	"kwietnia",
	"maja",
	"czerwca",
	"lipca",
	"sierpnia",
	"września",
	"października",
	"listopada",
	"grudnia",
}

// Report is a rendered monthly report ready to send.
type Report struct {
	Recipient  string  `json:"recipient"`
	Subject    string  `json:"subject"`
	Body       string  `json:"body"`
	TotalHours float64 `json:"totalHours"`
	Entries    int     `json:"entries"`
}

// MonthName returns the Polish genitive month name for 1..12.
func MonthName(month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return monthNamesGenitive[month]
}

// Monthly renders the report for the given profile, entry list and
// month. Entries outside the month are filtered out; the detail lines
// are chronological.
func Monthly(u core.User, entries []core.Overtime, year int, month time.Month) Report {
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	monthly := core.SortChronological(core.FilterByMonth(core.FilterByOwner(entries, u), anchor))
	total := core.SumHours(monthly)

	monthLabel := fmt.Sprintf("%s %d", MonthName(month), year)

	var b strings.Builder
	fmt.Fprintf(&b, "Raport nadgodzin za %s\n", monthLabel)
	fmt.Fprintf(&b, "Pracownik: %s\n", u.Name)
	fmt.Fprintf(&b, "Dział: %s\n", u.Department)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Łączna liczba nadgodzin: %.1f\n", total)
	b.WriteString("\n")
	b.WriteString("Szczegółowe zestawienie:\n")
	b.WriteString("\n")

	for _, e := range monthly {
		fmt.Fprintf(&b, "%s: %.1f godzin", formatEntryDate(e.Date), e.Hours)
		if e.Description != "" {
			fmt.Fprintf(&b, " - %s", e.Description)
		}
		b.WriteString("\n")
	}

	return Report{
		Recipient:  u.SupervisorEmail,
		Subject:    fmt.Sprintf("Raport nadgodzin za %s", monthLabel),
		Body:       b.String(),
		TotalHours: total,
		Entries:    len(monthly),
	}
}

// formatEntryDate renders a date line like "5 marca 2024, 18:30".
func formatEntryDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d, %02d:%02d",
		t.Day(), MonthName(t.Month()), t.Year(), t.Hour(), t.Minute())
}
