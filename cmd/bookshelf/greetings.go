package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var shelfGreetings = [...]string{
	"The shelf is open. Your reading list is not.",
	"Anyone can browse. Only readers leave marginalia.",
	"A bookmark with no name on it is just a strip of paper.",
	"The comments section is quiet. Suspiciously quiet.",
	"Somewhere on page 40 a plot twist is waiting for you.",
	"The recommender has opinions. It would like to share them with you.",
	"Every shelf has a gap exactly the size of your next book.",
	"You can look. Logging in lets you argue about it.",
}

func printHelp(out io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f0b45a")).
		Bold(true).
		Render("B O O K S H E L F")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"bookshelf", "Browse the catalog (interactive TUI)"},
		{"bookshelf login", "Log in"},
		{"bookshelf register", "Create an account"},
		{"bookshelf logout", "Clear your session"},
		{"bookshelf whoami", "Show the logged-in user"},
		{"bookshelf open <id>", "Open a book's cover (--comic for its comic)"},
		{"bookshelf version", "Show version"},
		{"bookshelf help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  Commands:\n", title)
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}

	env := []struct{ name, desc string }{
		{"BOOKSHELF_API_URL", "Backend base URL"},
		{"BOOKSHELF_SESSION_BACKEND", "file, redis or memory"},
		{"BOOKSHELF_HOME", "Session and log directory (default ~/.bookshelf)"},
		{"BOOKSHELF_LOG_LEVEL", "trace, debug, info, warn, error or off"},
		{"BOOKSHELF_METRICS_ADDR", "Serve Prometheus metrics on this address"},
	}
	fmt.Fprintf(out, "\n  Environment:\n")
	for _, e := range env {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", e.name)), descStyle.Render(e.desc))
	}
	fmt.Fprintln(out)
}

func printGreeting(out io.Writer) {
	msg := shelfGreetings[rand.IntN(len(shelfGreetings))]

	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f0b45a")).
		Bold(true).
		Render("BOOKSHELF")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(msg)

	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Render("Not logged in. To log in: bookshelf login")

	fmt.Fprintf(out, "\n%s\n\n%s\n\n%s\n\n", title, quote, hint)
}
