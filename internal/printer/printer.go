// Package printer writes colored CLI feedback.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

func init() {
	// Color stays on when piped; NO_COLOR turns it off.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	faint  = color.New(color.Faint)
)

// Success prints a green line with a checkmark prefix.
func Success(w io.Writer, format string, a ...any) {
	msg := strings.TrimSuffix(fmt.Sprintf(format, a...), "\n")
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	_, _ = green.Fprintln(w, msg)
}

// Info prints a plain line.
func Info(w io.Writer, format string, a ...any) {
	_, _ = fmt.Fprintln(w, strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// Detail prints a dimmed secondary line, used for notification bodies.
func Detail(w io.Writer, format string, a ...any) {
	_, _ = faint.Fprintln(w, "  "+strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// Warning prints a yellow line with a warning prefix.
func Warning(w io.Writer, format string, a ...any) {
	msg := strings.TrimSuffix(fmt.Sprintf(format, a...), "\n")
	if !strings.HasPrefix(msg, "⚠") {
		msg = "⚠ " + msg
	}
	_, _ = yellow.Fprintln(w, msg)
}

// Step prints a cyan progress line.
func Step(w io.Writer, format string, a ...any) {
	_, _ = cyan.Fprintln(w, "→ "+strings.TrimSuffix(fmt.Sprintf(format, a...), "\n"))
}

// FieldErrors prints a red title followed by one line per field and returns
// an error carrying only the title, so cobra does not repeat the details.
func FieldErrors(w io.Writer, title string, fields map[string]string, order []string) error {
	_, _ = red.Fprintln(w, title)
	printed := make(map[string]struct{}, len(fields))
	for _, key := range order {
		msg, ok := fields[key]
		if !ok {
			continue
		}
		printed[key] = struct{}{}
		_, _ = fmt.Fprintf(w, "  %s: %s\n", key, msg)
	}
	for key, msg := range fields {
		if _, ok := printed[key]; ok {
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s: %s\n", key, msg)
	}
	return fmt.Errorf("%s", title)
}

// Error prints a red title, an explanation and numbered suggestions, and
// returns an error carrying only the title.
func Error(w io.Writer, title, explanation string, suggestions []string) error {
	_, _ = red.Fprintf(w, "%s\n", title)
	if explanation != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", explanation)
	}
	switch len(suggestions) {
	case 0:
	case 1:
		_, _ = fmt.Fprintf(w, "\n%s\n", suggestions[0])
	default:
		_, _ = fmt.Fprintf(w, "\nEither:\n")
		for i, suggestion := range suggestions {
			_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, suggestion)
		}
	}
	return fmt.Errorf("%s", title)
}
