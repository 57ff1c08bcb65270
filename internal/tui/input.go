package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	case "space":
		key = " "
	}
	if utf8.RuneCountInString(key) == 1 {
		if utf8.RuneCountInString(text) >= maxInputLen {
			return text
		}
		return text + key
	}
	return text
}

// editKey applies a key message to text. Bracketed pastes are appended whole,
// clamped to maxInputLen runes.
func editKey(text string, msg tea.KeyMsg) string {
	if msg.Type == tea.KeyRunes && msg.Paste {
		room := maxInputLen - utf8.RuneCountInString(text)
		if room <= 0 {
			return text
		}
		pasted := msg.Runes
		if len(pasted) > room {
			pasted = pasted[:room]
		}
		return text + string(pasted)
	}
	return editRune(text, msg.String())
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderField renders a labelled form input. Masked fields show one bullet
// per rune. The cursor blinks on the focused field.
func renderField(label, value, placeholder string, focused, masked bool, animFrame int) string {
	shown := value
	if masked {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}

	prefix := "  "
	labelStyle := metaStyle
	if focused {
		prefix = accentStyle.Render("▸") + " "
		labelStyle = selectedStyle
	}
	line := prefix + labelStyle.Render(label+":") + " "

	if shown == "" && !focused {
		return line + inputPlaceholderStyle.Render(placeholder)
	}
	cursor := ""
	if focused {
		cursor = " "
		if (animFrame/4)%2 == 0 {
			cursor = accentStyle.Render("█")
		}
	}
	return line + normalStyle.Render(shown) + cursor
}
