package command

import (
	"fmt"
	"io"
	"strings"

	"github.com/Alwanly/heroku-ranger/internal/models"
	"github.com/Alwanly/heroku-ranger/internal/ranger/usecase"
)

var (
	rule       = strings.Repeat("-", 42)
	ruleTop    = strings.Repeat("-", 45)
	ruleBottom = strings.Repeat("-", 47)
)

// upOrDown describes the latest check result of a dependency.
func upOrDown(d models.Dependency) string {
	switch {
	case !d.Checked():
		return "=> not checked yet"
	case *d.LatestResponseCode == 200:
		return "is UP"
	default:
		return fmt.Sprintf("is DOWN with status code %d", *d.LatestResponseCode)
	}
}

func renderStatus(w io.Writer, report *usecase.StatusReport) {
	if !report.Found {
		renderNoDomains(w)
		return
	}

	fmt.Fprintln(w, "\nRanger Status")
	fmt.Fprintln(w, rule)
	for _, d := range report.Dependencies {
		fmt.Fprintf(w, "%s %s\n", d.URL, upOrDown(d))
	}

	renderWatchers(w, report.Watchers)
}

func renderDomains(w io.Writer, deps []models.Dependency) {
	fmt.Fprintln(w, "\nDomains Being Monitored")
	fmt.Fprintln(w, rule)
	for _, d := range deps {
		fmt.Fprintln(w, d.URL)
	}
	fmt.Fprintln(w)
}

func renderNoDomains(w io.Writer) {
	fmt.Fprintln(w, "\n"+ruleTop)
	fmt.Fprintln(w, "No domains are being monitored for this app.")
	fmt.Fprintln(w, ruleBottom)
	fmt.Fprintln(w, "\nMonitor a domain like this:")
	fmt.Fprint(w, "\n  heroku ranger:domains add http://yourapp.heroku.com\n\n")
}

func renderWatchers(w io.Writer, watchers []models.Watcher) {
	fmt.Fprintln(w, "\nApp Watchers")
	fmt.Fprintln(w, rule)
	for _, watcher := range watchers {
		fmt.Fprintln(w, watcher.Email)
	}
	fmt.Fprintln(w)
}
