package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/notexe/dailybell/internal/reminder"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Warm yellow
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Soft green
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	AccentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("147")) // Light purple

	BellStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("215")). // Orange
			Padding(0, 1)

	TableStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

// Colored reports whether styles are applied.
func (f *Formatter) Colored() bool {
	return f.colored
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

// FormatWarning renders a recoverable input problem, such as a rejected reminder.
func (f *Formatter) FormatWarning(msg string) string {
	return f.render(WarningStyle, "! ") + msg
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, "✓ ") + msg
}

// FormatReminders renders reminders as a numbered table. Row numbers are 1-based
// and match what the REPL accepts as a selection.
func (f *Formatter) FormatReminders(reminders []reminder.Reminder, now time.Time) string {
	if len(reminders) == 0 {
		return f.render(DimStyle, "No reminders set.")
	}

	descWidth := len("Description")
	for _, r := range reminders {
		if w := lipgloss.Width(r.Description); w > descWidth {
			descWidth = w
		}
	}
	if descWidth > 48 {
		descWidth = 48
	}

	header := fmt.Sprintf("%-3s  %-*s  %-16s  %-6s  %s", "#", descWidth, "Description", "Date & Time", "Repeat", "Due")
	lines := []string{f.render(HeaderStyle, header)}

	for i, r := range reminders {
		desc := truncate(r.Description, descWidth)
		pad := strings.Repeat(" ", descWidth-lipgloss.Width(desc))
		row := fmt.Sprintf("%-3d  %s%s  %-16s  %-6s  ", i+1, desc, pad, reminder.FormatTime(r.DueAt), r.Repeat)
		lines = append(lines, row+f.render(DimStyle, FormatRelative(r.DueAt, now)))
	}

	table := strings.Join(lines, "\n")
	if f.colored {
		return TableStyle.Render(table)
	}
	return table
}

// FormatFired renders the in-terminal bell for a fired reminder.
func (f *Formatter) FormatFired(ev reminder.Fired) string {
	title := "🔔 Reminder"
	body := ev.Description
	meta := "due " + reminder.FormatTime(ev.DueAt)
	if !ev.Next.IsZero() {
		meta += fmt.Sprintf(" · %s, next %s", strings.ToLower(string(ev.Repeat)), reminder.FormatTime(ev.Next))
	}

	if f.colored {
		content := HeaderStyle.Render(title) + "\n" + body + "\n" + DimStyle.Render(meta)
		return BellStyle.Render(content)
	}
	return fmt.Sprintf("%s: %s (%s)", title, body, meta)
}

// FormatRelative describes t relative to now, e.g. "in 2h 5m" or "overdue 3m".
func FormatRelative(t, now time.Time) string {
	d := t.Sub(now)
	if d < 0 {
		return "overdue " + formatDuration(-d)
	}
	return "in " + formatDuration(d)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	if d < time.Minute {
		return "<1m"
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func (f *Formatter) FormatWelcome(storePath string, count int) string {
	title := "DailyBell • reminders"
	storeLine := "Store: " + storePath
	countLine := fmt.Sprintf("%d reminder(s) loaded", count)
	helpLine := "Type /help for commands"

	if f.colored {
		content := strings.Join([]string{
			HeaderStyle.Render(title),
			DimStyle.Render("Store: ") + AccentStyle.Render(storePath),
			DimStyle.Render(countLine),
			"",
			DimStyle.Render(helpLine),
		}, "\n")
		return "\n" + TableStyle.Render(content) + "\n\n"
	}

	return strings.Join([]string{"", title, storeLine, countLine, helpLine, "", ""}, "\n")
}

const helpMarkdown = `# Commands

| Command | Description |
|---|---|
| ` + "`/add <YYYY-MM-DD> <HH:MM> [none\\|daily\\|weekly] <description>`" + ` | Set a reminder |
| ` + "`/list`" + ` | Show reminders |
| ` + "`/edit [#] <YYYY-MM-DD> <HH:MM> [repeat] <description>`" + ` | Change a reminder |
| ` + "`/delete [#]`" + ` | Delete a reminder |
| ` + "`/help`" + ` | Show this help |
| ` + "`/quit`" + ` | Exit |

Without ` + "`#`" + `, edit and delete open a picker over the current list.
Times are local, 24-hour. Reminders are checked once a minute.
`

const helpPlain = `
Commands:
  /add <YYYY-MM-DD> <HH:MM> [none|daily|weekly] <description>   Set a reminder
  /list                                                         Show reminders
  /edit [#] <YYYY-MM-DD> <HH:MM> [repeat] <description>          Change a reminder
  /delete [#]                                                   Delete a reminder
  /help                                                         Show this help
  /quit                                                         Exit

Without #, edit and delete open a picker over the current list.
`

func (f *Formatter) FormatHelp() string {
	if !f.colored {
		return helpPlain
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return helpPlain
	}

	rendered, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpPlain
	}
	return rendered
}

// FormatPrompt returns a styled input prompt
func (f *Formatter) FormatPrompt() string {
	if f.colored {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render("bell") +
			lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true).Render(" > ")
	}
	return "bell > "
}
