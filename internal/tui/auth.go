package tui

import (
	"context"
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/bookshelf/internal/nav"
	"github.com/naveenspark/bookshelf/pkg/client"
	"github.com/naveenspark/bookshelf/pkg/domain"
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
)

// authModel is the login and registration form.
type authModel struct {
	deps     Deps
	register bool
	focus    int
	username string
	email    string
	password string
	busy     bool
	errText  string
	frame    int
}

type authDoneMsg struct {
	err error
}

func newAuthModel(d Deps, register bool) authModel {
	return authModel{deps: d, register: register}
}

// fields returns the focus order for the current mode.
func (m authModel) fields() []int {
	if m.register {
		return []int{fieldUsername, fieldEmail, fieldPassword}
	}
	return []int{fieldUsername, fieldPassword}
}

func (m authModel) move(delta int) authModel {
	fs := m.fields()
	idx := 0
	for i, f := range fs {
		if f == m.focus {
			idx = i
		}
	}
	idx = (idx + delta + len(fs)) % len(fs)
	m.focus = fs[idx]
	return m
}

func (m authModel) edit(msg tea.KeyMsg) authModel {
	switch m.focus {
	case fieldUsername:
		m.username = editKey(m.username, msg)
	case fieldEmail:
		m.email = editKey(m.email, msg)
	case fieldPassword:
		m.password = editKey(m.password, msg)
	}
	return m
}

func (m authModel) submit() (authModel, tea.Cmd) {
	auth := m.deps.Auth
	if m.register {
		req := domain.RegisterRequest{
			Username: strings.TrimSpace(m.username),
			Email:    strings.TrimSpace(m.email),
			Password: m.password,
		}
		if err := domain.Validate(req); err != nil {
			m.errText = errorText(err)
			return m, nil
		}
		m.busy = true
		m.errText = ""
		return m, func() tea.Msg {
			_, err := auth.Register(context.Background(), req)
			return authDoneMsg{err: err}
		}
	}
	creds := domain.Credentials{Username: strings.TrimSpace(m.username), Password: m.password}
	if err := domain.Validate(creds); err != nil {
		m.errText = errorText(err)
		return m, nil
	}
	m.busy = true
	m.errText = ""
	return m, func() tea.Msg {
		_, err := auth.Login(context.Background(), creds)
		return authDoneMsg{err: err}
	}
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.password = ""
			m.errText = authErrorText(msg.err)
			return m, nil
		}
		return m, navigate(nav.To(nav.Home))

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, navigate(nav.To(nav.Home))
		case "tab", "down":
			m = m.move(1)
		case "shift+tab", "up":
			m = m.move(-1)
		case "enter":
			if m.focus != fieldPassword {
				m = m.move(1)
				return m, nil
			}
			return m.submit()
		case "ctrl+r":
			if m.register {
				return m, navigate(nav.To(nav.Login))
			}
			return m, navigate(nav.To(nav.Register))
		default:
			m = m.edit(msg)
		}
	}
	return m, nil
}

// authErrorText reads a rejected login as bad credentials rather than as an
// expired session.
func authErrorText(err error) string {
	if client.IsStatus(err, http.StatusUnauthorized) {
		return "wrong username or password"
	}
	return errorText(err)
}

func (m authModel) helpKeys() string {
	other := "register"
	if m.register {
		other = "log in"
	}
	return helpBar(helpEntry("tab", "next"), helpEntry("enter", "submit"), helpEntry("ctrl+r", other), helpEntry("esc", "cancel"))
}

func (m authModel) View() string {
	var b strings.Builder
	title := "LOG IN"
	if m.register {
		title = "CREATE ACCOUNT"
	}
	b.WriteString("\n " + sectionHeaderStyle.Render(title) + "\n\n")
	b.WriteString(renderField("username", m.username, "your username", m.focus == fieldUsername, false, m.frame) + "\n")
	if m.register {
		b.WriteString(renderField("email", m.email, "optional", m.focus == fieldEmail, false, m.frame) + "\n")
	}
	b.WriteString(renderField("password", m.password, "", m.focus == fieldPassword, true, m.frame) + "\n\n")

	switch {
	case m.busy:
		b.WriteString(" " + dimStyle.Render("checking...") + "\n")
	case m.errText != "":
		b.WriteString(" " + errStyle.Render(m.errText) + "\n")
	}
	return b.String()
}
