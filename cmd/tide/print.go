package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Builtbyjb/tide/pkg/lib/control"
)

const banner = `
     __   _      __
    / /_ (_)____/ /___
   / __// // __  // _ \
  / /_ / // /_/ //  __/
  \__//_/ \__,_/ \___/  v%s

 Press Ctrl + C to exit`

var bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)

func printBanner(w io.Writer, version string) {
	_, _ = fmt.Fprintf(w, "%s\n\n", bannerStyle.Render(fmt.Sprintf(banner, version)))
}

func printStatusTable(w io.Writer, statuses []control.ServiceStatus) {
	names := make([]string, len(statuses))
	serviceW := len("SERVICE")
	statusW := len("STATUS")
	for i, st := range statuses {
		names[i] = st.Service
		if names[i] == "" {
			names[i] = "tide"
		}
		serviceW = max(serviceW, len(names[i]))
		statusW = max(statusW, len(st.Status))
	}

	sep := fmt.Sprintf("+-%s-+-%s-+\n", strings.Repeat("-", serviceW), strings.Repeat("-", statusW))
	_, _ = fmt.Fprint(w, sep)
	_, _ = fmt.Fprintf(w, "| %s | %s |\n", pad("SERVICE", serviceW), pad("STATUS", statusW))
	_, _ = fmt.Fprint(w, sep)
	for i, st := range statuses {
		_, _ = fmt.Fprintf(w, "| %s | %s |\n", pad(names[i], serviceW), pad(st.Status, statusW))
	}
	_, _ = fmt.Fprint(w, sep)
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
