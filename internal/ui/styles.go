// Package ui holds the shared presentation layer: color tokens, the
// banner, summary tables, and the clean-progress TUI. Nothing in here is
// consulted by the core packages; they push events, ui renders them.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// ─── Color tokens ────────────────────────────────────────────────────────────

var (
	ColorPrimary = lipgloss.Color("#00E5FF") // cyan
	ColorAccent  = lipgloss.Color("#BD93F9") // purple
	ColorSuccess = lipgloss.Color("#50FA7B")
	ColorWarning = lipgloss.Color("#FFB86C")
	ColorError   = lipgloss.Color("#FF5555")
	ColorText    = lipgloss.Color("#F8F8F2")
	ColorTextDim = lipgloss.Color("#9A9AB0")
	ColorMuted   = lipgloss.Color("#6272A4")
)

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconDiamond = "◆"
	IconCheck   = "✓"
	IconCross   = "✗"
	IconArrow   = "→"
	IconWarn    = "⚠"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError)
	DimStyle     = lipgloss.NewStyle().Foreground(ColorTextDim)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	SizeStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// FormatSize renders bytes in binary units for display.
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// IsInteractive reports whether stdout is a terminal. Non-interactive
// runs never prompt; confirm-tier items are skipped instead.
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Success prints a success line.
func Success(format string, args ...any) {
	fmt.Println(SuccessStyle.Render("  " + IconCheck + " " + fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func Warn(format string, args ...any) {
	fmt.Println(WarningStyle.Render("  " + IconWarn + " " + fmt.Sprintf(format, args...)))
}

// Errorln prints an error line.
func Errorln(format string, args ...any) {
	fmt.Println(ErrorStyle.Render("  " + IconCross + " " + fmt.Sprintf(format, args...)))
}

// Info prints a muted informational line.
func Info(format string, args ...any) {
	fmt.Println(DimStyle.Render("  " + fmt.Sprintf(format, args...)))
}

// Divider prints a titled section divider.
func Divider(title string) {
	line := MutedStyle.Render("────")
	fmt.Printf("\n%s %s %s\n\n", line, TitleStyle.Render(title), line)
}
