package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/i18n"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	// Emojis with colors
	MateEmoji    = "🧉"
	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
	RocketEmoji  = Accent.Sprint("🚀")
)

var activeSpinner *SmartSpinner
var suspendedSpinner *SmartSpinner

// SmartSpinner is a spinner with enhanced capabilities
type SmartSpinner struct {
	spinner *spinner.Spinner
}

// Start starts the spinner and registers it as the globally active spinner.
func (s *SmartSpinner) Start() {
	activeSpinner = s
	s.spinner.Start()
}

// Stop stops the spinner and clears the active spinner record.
func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
	if activeSpinner == s {
		activeSpinner = nil
	}
	if suspendedSpinner == s {
		suspendedSpinner = nil
	}
}

// SuspendActiveSpinner temporarily stops the active spinner without deleting its reference,
// allowing it to be resumed after user interaction.
func SuspendActiveSpinner() {
	if activeSpinner != nil {
		suspendedSpinner = activeSpinner
		activeSpinner.spinner.Stop()
		activeSpinner = nil
	}
}

// ResumeSuspendedSpinner resumes the previously suspended spinner.
func ResumeSuspendedSpinner() {
	if suspendedSpinner != nil {
		activeSpinner = suspendedSpinner
		activeSpinner.spinner.Start()
		suspendedSpinner = nil
	}
}

// UpdateMessage replaces the text shown next to the spinner.
func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + MateEmoji + " " + msg
}

// SpinnerBuilder allows building spinners with flexible configuration
type SpinnerBuilder struct {
	message string
	charset int
	color   string
	speed   time.Duration
	writer  io.Writer
}

// NewSpinner creates a new spinner builder
func NewSpinner() *SpinnerBuilder {
	return &SpinnerBuilder{
		charset: 14,
		color:   "cyan",
		speed:   100 * time.Millisecond,
		writer:  os.Stdout,
	}
}

// WithMessage sets the spinner message
func (b *SpinnerBuilder) WithMessage(msg string) *SpinnerBuilder {
	b.message = msg
	return b
}

func (b *SpinnerBuilder) WithWriter(w io.Writer) *SpinnerBuilder {
	b.writer = w
	return b
}

// Build constructs the SmartSpinner with the specified configuration
func (b *SpinnerBuilder) Build() *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[b.charset],
		b.speed,
		spinner.WithColor(b.color),
		spinner.WithSuffix(" "+MateEmoji+" "+b.message),
		spinner.WithWriter(b.writer),
	)
	return &SmartSpinner{spinner: s}
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

// PrintSectionBanner prints title between two separator lines.
func PrintSectionBanner(w io.Writer, title string) {
	separator := color.New(color.FgCyan).Sprint("━━━━━━━━━━━━━━━━━━━━━━━")
	_, _ = fmt.Fprintf(w, "\n%s\n", separator)
	_, _ = fmt.Fprintf(w, "%s %s\n", RocketEmoji, Accent.Sprint(title))
	_, _ = fmt.Fprintf(w, "%s\n\n", separator)
}

func PrintKeyValue(w io.Writer, key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(w, "   %s %s\n", keyColored, valueColored)
}

// detailKeys are the AppError context entries worth showing to the operator.
var detailKeys = map[string]bool{
	"sha":     true,
	"ref":     true,
	"file":    true,
	"path":    true,
	"pattern": true,
	"stderr":  true,
}

// HandleAppError handles an application error and displays it in a friendly way.
// If translations is nil, it will use English defaults.
func HandleAppError(w io.Writer, err error, translations ...*i18n.Translations) {
	if err == nil {
		return
	}

	var t *i18n.Translations
	if len(translations) > 0 && translations[0] != nil {
		t = translations[0]
	}

	var appErr *domainErrors.AppError
	if !errors.As(err, &appErr) {
		PrintError(w, err.Error())
		return
	}

	errorColor := color.New(color.FgRed, color.Bold)
	suggestionColor := color.New(color.FgCyan)

	_, _ = fmt.Fprintln(w)
	_, _ = errorColor.Fprintf(w, "❌ %s: %s\n", appErr.Type, appErr.Message)

	if appErr.Err != nil {
		_, _ = Dim.Fprintf(w, "   Details: %v\n", appErr.Err)
	}

	keys := make([]string, 0, len(appErr.Context))
	for k := range appErr.Context {
		if detailKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := fmt.Sprint(appErr.Context[k]); v != "" {
			PrintKeyValue(w, k, v)
		}
	}

	if appErr.Suggestion != "" {
		_, _ = fmt.Fprintln(w)
		tryPrefix := "💡 Try: "
		if t != nil {
			tryPrefix = t.GetMessage("ui_error.try_suggestion", 0, nil)
		}
		_, _ = suggestionColor.Fprint(w, tryPrefix)
		lines := strings.Split(appErr.Suggestion, "\n")
		for i, line := range lines {
			if i == 0 {
				_, _ = fmt.Fprintln(w, line)
			} else {
				_, _ = fmt.Fprintf(w, "       %s\n", line)
			}
		}
	}
	_, _ = fmt.Fprintln(w)
}
