package browser

import (
	"strings"
	"testing"
)

func TestOpenRejectsNonWebSchemes(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "ftp://example.com/x", "cover.jpg"} {
		t.Run(u, func(t *testing.T) {
			err := Open(u)
			if err == nil {
				t.Fatalf("Open(%q) succeeded, want error", u)
			}
			if !strings.Contains(err.Error(), "refusing") {
				t.Errorf("Open(%q) error = %v", u, err)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantPath string
		wantArg  string
	}{
		{"darwin", "open", "https://example.com/a.png"},
		{"linux", "xdg-open", "https://example.com/a.png"},
		{"windows", "rundll32", "url.dll,FileProtocolHandler"},
	}
	for _, tc := range tests {
		t.Run(tc.goos, func(t *testing.T) {
			cmd, err := command(tc.goos, "https://example.com/a.png")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(cmd.Path, tc.wantPath) && cmd.Args[0] != tc.wantPath {
				t.Errorf("command path = %q, want %q", cmd.Path, tc.wantPath)
			}
			if cmd.Args[1] != tc.wantArg {
				t.Errorf("command args = %v, want %q first", cmd.Args, tc.wantArg)
			}
			if cmd.Args[len(cmd.Args)-1] != "https://example.com/a.png" {
				t.Errorf("URL should be the last arg, got %v", cmd.Args)
			}
		})
	}

	if _, err := command("plan9", "https://example.com"); err == nil {
		t.Error("expected error for unsupported OS")
	}
}
