package tui

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "B O O K S H E L F" as a slow wave of lamplight.
// Deep umber (#3a2a1a) -> warm amber (#f0b45a).
func renderShimmerLogo(frame int) string {
	const text = "BOOKSHELF"
	n := len(text)

	var out strings.Builder
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.08 - x*3.0
		phase += math.Sin(t*0.021) * 1.5

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(58 + b*(240-58))
		g := clampByte(42 + b*(180-42))
		bl := clampByte(26 + b*(90-26))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))

		if i < n-1 {
			out.WriteString("  ")
		}
	}

	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles: paper and ink
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ece4d8")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8c0b4"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5a5448"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5a5448"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0a040"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0b45a")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d05050"))

	// Recommendation voice
	aiVoiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c")).
			Italic(true)

	aiLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6a6458"))

	commentTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a09888"))

	commentTimeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#5a5448"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e0a040")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3c3830"))

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1410")).
			Background(lipgloss.Color("#e0a040")).
			Bold(true).
			Padding(0, 2)

	// Category palette. A category keeps its color across runs.
	categoryPalette = []lipgloss.Color{
		lipgloss.Color("#e06060"),
		lipgloss.Color("#b080d0"),
		lipgloss.Color("#f0944a"),
		lipgloss.Color("#d4a844"),
		lipgloss.Color("#60a0e0"),
		lipgloss.Color("#c084e0"),
		lipgloss.Color("#3ecce4"),
	}
)

// CategoryStyle returns the style for a category name.
func CategoryStyle(name string) lipgloss.Style {
	if name == "" {
		return normalStyle
	}
	h := fnv.New32a()
	h.Write([]byte(name)) //nolint:errcheck // hash writes never fail
	return lipgloss.NewStyle().Foreground(categoryPalette[h.Sum32()%uint32(len(categoryPalette))])
}

// rankStars renders a 0-10 review rank as five stars.
func rankStars(rank *float64) string {
	if rank == nil {
		return metaStyle.Render("no rating")
	}
	full := int(math.Round(*rank / 2))
	full = max(0, min(full, 5))
	return goldStyle.Render(strings.Repeat("★", full)) +
		metaStyle.Render(strings.Repeat("☆", 5-full)) +
		metaStyle.Render(fmt.Sprintf(" %.1f", *rank))
}

// helpEntry renders a key-label pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins help entries into one bar line.
func helpBar(entries ...string) string {
	return " " + strings.Join(entries, "  ")
}

// helpView renders the help overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f0b45a")).
		Bold(true).
		Render("B O O K S H E L F")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	commands := []struct{ cmd, desc string }{
		{"bookshelf", "Open the catalog (interactive TUI)"},
		{"bookshelf login", "Log in"},
		{"bookshelf register", "Create an account"},
		{"bookshelf logout", "Clear your session"},
		{"bookshelf whoami", "Show the logged-in user"},
		{"bookshelf open <id>", "Open a book's comic or cover"},
		{"bookshelf version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"1 / 2 / 3", "Home, Books, My page"},
		{"l", "Log in (or log out when logged in)"},
		{"/", "Search the catalog"},
		{"enter", "Open the selected item"},
		{"esc", "Back"},
		{"q", "Quit"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", k.key)), descStyle.Render(k.desc))
	}
	return b.String()
}
