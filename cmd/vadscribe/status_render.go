package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"vadscribe/internal/runstore"
	"vadscribe/internal/services"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 26
	statusIndent     = "  "
)

var kindStyles = map[statusKind]struct{ tag, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

var titleCaser = cases.Title(language.English)

func paint(kind statusKind, s string, colorize bool) string {
	if !colorize {
		return s
	}
	return kindStyles[kind].color + s + ansiReset
}

// renderStatusLine formats "  Label:   [TAG] message" with the label padded
// to a fixed column.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + kindStyles[kind].tag + "]"
	if message != "" {
		status += " " + message
	}
	return paint(kind, fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status), colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	return []string{paint(statusInfo, line, colorize), paint(statusInfo, rule, colorize)}
}

func runKind(status runstore.Status) (statusKind, bool) {
	switch status {
	case runstore.StatusCompleted, runstore.StatusOK:
		return statusOK, true
	case runstore.StatusFailed:
		return statusError, true
	case runstore.StatusSkipped, runstore.StatusRunning:
		return statusWarn, true
	}
	return statusInfo, false
}

// runStatusLabel renders a ledger status for tables, e.g. "Completed".
func runStatusLabel(status runstore.Status, colorize bool) string {
	label := titleCaser.String(string(status))
	kind, known := runKind(status)
	return paint(kind, label, colorize && known)
}

// errStatus maps a per-file error to the label shown in result tables.
func errStatus(err error, colorize bool) string {
	if err == nil {
		return runStatusLabel(runstore.StatusOK, colorize)
	}
	return runStatusLabel(services.FailureStatus(err), colorize)
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
