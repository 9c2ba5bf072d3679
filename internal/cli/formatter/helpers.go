package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// HumanTimestamp renders t relative to now, such as "3 minutes ago". Zero
// times render as "never".
func HumanTimestamp(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if d := now.Sub(t); d >= 0 && d < 5*time.Second {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// HumanDate returns a short absolute date, or "--" for nil.
func HumanDate(t *time.Time) string {
	if t == nil {
		return "--"
	}
	return t.Format("Jan 2, 2006")
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// TruncateText shortens s to at most width terminal cells, ending in "…"
// when cut. Styled text keeps its escape sequences intact.
func TruncateText(s string, width int) string {
	if ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

// FormatMoney renders an amount with thousands separators and two decimals.
func FormatMoney(amount float64, currency string) string {
	s := humanize.CommafWithDigits(amount, 2)
	if !strings.Contains(s, ".") {
		s += ".00"
	} else if i := strings.Index(s, "."); len(s)-i == 2 {
		s += "0"
	}
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatCount renders n with a singular or plural noun.
func FormatCount(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", singular)
	}
	return fmt.Sprintf("%s %s", humanize.Comma(int64(n)), plural)
}

// FormatSize renders a byte count such as "1.2 kB".
func FormatSize(n int) string {
	return humanize.Bytes(uint64(max(n, 0)))
}
