package shared

import (
	"errors"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()

	tc := []struct {
		goos string
		want string
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "cmd"},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			getRuntime = func() string { return tt.goos }
			cmd, err := browserCommand("https://www.youtube.com/watch?v=abc")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Args[0] != tt.want {
				t.Errorf("expected %s, got %s", tt.want, cmd.Args[0])
			}
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if _, err := browserCommand("https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}

func TestOpenBrowserRejectsNonHTTP(t *testing.T) {
	for _, target := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "/relative"} {
		if err := OpenBrowser(target); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("OpenBrowser(%q) = %v, want ErrInvalidArgument", target, err)
		}
	}
}
