package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"cinemind/internal/api"
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
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatus(status api.StatusResponse, colorize bool) []string {
	lines := renderSectionHeader("Daemon", colorize)
	if status.Running {
		msg := fmt.Sprintf("pid %d", status.PID)
		if !status.StartedAt.IsZero() {
			msg += ", since " + status.StartedAt.Local().Format("2006-01-02 15:04:05")
		}
		lines = append(lines, renderStatusLine("Running", statusOK, msg, colorize))
		lines = append(lines, renderStatusLine("Sessions", statusInfo, fmt.Sprint(status.Sessions), colorize))
	} else {
		lines = append(lines, renderStatusLine("Running", statusInfo, "not running", colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Catalog", colorize)...)
	lines = append(lines, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
	if status.Movies > 0 {
		lines = append(lines, renderStatusLine("Movies", statusOK, fmt.Sprint(status.Movies), colorize))
	} else {
		lines = append(lines, renderStatusLine("Movies", statusError, "none imported (run 'cinemind import')", colorize))
	}
	if status.SelfExclusion != "" {
		lines = append(lines, renderStatusLine("Self exclusion", statusInfo, status.SelfExclusion, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Metadata", colorize)...)
	if status.MetadataEnabled {
		lines = append(lines, renderStatusLine("OMDb", statusOK, "enabled", colorize))
	} else {
		lines = append(lines, renderStatusLine("OMDb", statusWarn, "disabled (placeholders only)", colorize))
	}
	if status.BreakerState != "" {
		kind := statusOK
		if status.BreakerState != "closed" {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine("Breaker", kind, status.BreakerState, colorize))
	}
	lines = append(lines, renderStatusLine("Cached details", statusInfo, fmt.Sprint(status.CachedDetails), colorize))

	if len(status.Checks) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Checks", colorize)...)
		for _, check := range status.Checks {
			kind := statusOK
			if !check.Passed {
				kind = statusError
			}
			lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
		}
	}
	return lines
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
