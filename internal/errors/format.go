package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorEnabled = true
}

// color wraps text in ANSI color codes if colors are enabled.
func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

func red(text string) string    { return color(colorRed, text) }
func yellow(text string) string { return color(colorYellow, text) }
func cyan(text string) string   { return color(colorCyan, text) }
func white(text string) string  { return color(colorWhite, text) }
func gray(text string) string   { return color(colorGray, text) }
func bold(text string) string   { return color(colorBold, text) }

// Format returns a multi-line error message for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	// Header line
	b.WriteString("\n")
	label := red(bold("ERROR"))
	if e.Category == CategoryLoad {
		label = yellow(bold("WARN"))
	}
	b.WriteString(label)
	if e.Code != "" {
		b.WriteString(white(bold(" " + e.Code + ": ")))
	} else {
		b.WriteString(white(bold(": ")))
	}
	b.WriteString(white(e.Message))
	b.WriteString("\n\n")

	// Location
	if e.Location != nil {
		b.WriteString("  ")
		b.WriteString(cyan(e.Location.String()))
		b.WriteString("\n\n")

		// Context with line numbers and arrow
		if len(e.Context) > 0 {
			startLine := e.Location.Line - len(e.Context)/2
			for i, line := range e.Context {
				lineNum := startLine + i
				if lineNum == e.Location.Line {
					// Highlighted line with arrow
					b.WriteString("  ")
					b.WriteString(red("→ "))
					b.WriteString(fmt.Sprintf("%4d", lineNum))
					b.WriteString(gray(" │ "))
					b.WriteString(line)
					b.WriteString("\n")

					// Column indicator
					if e.Location.Column > 0 {
						b.WriteString("       ")
						b.WriteString(gray("│ "))
						b.WriteString(strings.Repeat(" ", e.Location.Column-1))
						b.WriteString(red("^"))
						b.WriteString("\n")
					}
				} else {
					// Normal line
					b.WriteString("    ")
					b.WriteString(fmt.Sprintf("%4d", lineNum))
					b.WriteString(gray(" │ "))
					b.WriteString(line)
					b.WriteString("\n")
				}
			}
			b.WriteString("\n")
		}
	}

	// Detail
	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Suggestion
	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}

	if e.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(gray("Cause: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n")
	}

	return b.String()
}

// Output styles accepted by Fprint.
const (
	StylePretty  = "pretty"
	StyleCompact = "compact"
	StyleJSON    = "json"
)

// ValidStyle reports whether style is one Fprint understands.
func ValidStyle(style string) bool {
	switch style {
	case StylePretty, StyleCompact, StyleJSON:
		return true
	}
	return false
}

// FormatCompact renders the error on one line, location first, for log
// scrapers and editors that jump to file:line.
func (e *Error) FormatCompact() string {
	s := e.Error()
	if e.Location == nil {
		return s
	}
	// Error() puts the location in parentheses after the message.
	s = strings.Replace(s, " ("+e.Location.String()+")", "", 1)
	return e.Location.String() + ": " + s
}

type jsonLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

type jsonReport struct {
	Code       string        `json:"code,omitempty"`
	Category   Category      `json:"category,omitempty"`
	Message    string        `json:"message"`
	Detail     string        `json:"detail,omitempty"`
	Location   *jsonLocation `json:"location,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Fatal      bool          `json:"fatal"`
	Cause      string        `json:"cause,omitempty"`
}

// FormatJSON renders the error as a single JSON object.
func (e *Error) FormatJSON() string {
	r := jsonReport{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		Fatal:      e.Fatal,
	}
	if e.Location != nil {
		r.Location = &jsonLocation{File: e.Location.File, Line: e.Location.Line, Column: e.Location.Column}
	}
	if e.Wrapped != nil {
		r.Cause = e.Wrapped.Error()
	}
	b, _ := json.Marshal(r)
	return string(b)
}

// Fprint writes err to w in the given style. Errors without a code are
// printed as a bare message; an unknown style falls back to pretty.
func Fprint(w io.Writer, err error, style string) {
	var ve *Error
	coded := stderrors.As(err, &ve)

	switch style {
	case StyleJSON:
		if coded {
			fmt.Fprintln(w, ve.FormatJSON())
			return
		}
		b, _ := json.Marshal(jsonReport{Message: err.Error()})
		fmt.Fprintln(w, string(b))
	case StyleCompact:
		if coded {
			fmt.Fprintln(w, ve.FormatCompact())
			return
		}
		fmt.Fprintln(w, err.Error())
	default:
		if coded {
			fmt.Fprint(w, ve.Format())
			return
		}
		fmt.Fprintf(w, "\n%s %s\n\n", red("ERROR:"), err.Error())
	}
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	words := strings.Fields(text)
	var current strings.Builder

	for _, word := range words {
		if current.Len()+len(word)+1 > width {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// PrintError prints a formatted error to stderr.
func PrintError(err error) {
	Fprint(os.Stderr, err, StylePretty)
}
