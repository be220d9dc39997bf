package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeGit           ErrorType = "GIT"
	TypeVersion       ErrorType = "VERSION"
	TypeConflict      ErrorType = "CONFLICT"
	TypeCancelled     ErrorType = "CANCELLED"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if ref, ok := e.Context["ref"].(string); ok && ref != "" {
			msg += fmt.Sprintf(" [%s]", ref)
		}
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so
// values derived with WithError/WithContext still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Git errors
var (
	ErrGitCommand = NewAppError(TypeGit, "git command failed", nil)

	ErrGitNotFound = NewAppError(TypeGit, "git executable not found", nil).
			WithSuggestion("Install git and make sure it is on your PATH")

	ErrResolveRef = NewAppError(TypeGit, "Failed to resolve commit reference", nil).
			WithSuggestion("Fetch the upstream repository first: git -C <v8-dir> fetch origin")

	ErrGeneratePatch = NewAppError(TypeGit, "Failed to generate patch", nil)

	ErrCreateCommit = NewAppError(TypeGit, "Failed to create commit", nil).
			WithSuggestion("Ensure git user is configured:\n   git config --global user.name \"Your Name\"\n   git config --global user.email \"your@email.com\"")

	ErrAmendCommit = NewAppError(TypeGit, "Failed to amend commit", nil)

	ErrAddFile = NewAppError(TypeGit, "Failed to add file to staging", nil).
			WithSuggestion("Check if the file exists and you have write permissions")

	ErrGetGitUser = NewAppError(TypeGit, "Failed to get git user configuration", nil).
			WithSuggestion("Configure git user:\n   git config --global user.name \"Your Name\"\n   git config --global user.email \"your@email.com\"")

	ErrNoCommits = NewAppError(TypeGit, "No commits to backport", nil).
			WithSuggestion("Pass one or more V8 commit references: mate-backport backport <sha>...")
)

// Conflict errors
var (
	ErrConflictUnresolved = NewAppError(TypeConflict, "Conflict resolution was not confirmed", nil).
				WithSuggestion("Finish resolving deps/v8 by hand, then commit with git")
)

// Version metadata errors
var (
	ErrReadVersionFile = NewAppError(TypeVersion, "Failed to read version file", nil)

	ErrWriteVersionFile = NewAppError(TypeVersion, "Failed to write version file", nil)

	ErrVersionPatternNotFound = NewAppError(TypeVersion, "Version pattern not found", nil).
					WithSuggestion("The file layout changed upstream; bump the version by hand or re-run with --no-bump")
)

// Configuration errors
var (
	ErrConfigMissing = NewAppError(TypeConfiguration, "Configuration is missing", nil)

	ErrInvalidConfig = NewAppError(TypeConfiguration, "Configuration is invalid", nil)

	ErrNodeDirMissing = NewAppError(TypeConfiguration, "Node.js directory not found", nil).
				WithSuggestion("Pass --node-dir or set MATE_BACKPORT_NODE_DIR")

	ErrV8DirMissing = NewAppError(TypeConfiguration, "V8 clone directory not found", nil).
			WithSuggestion("Pass --v8-dir or set MATE_BACKPORT_V8_DIR")
)

// ErrBackportCancelled is returned when the operator declines the squash
// pre-flight confirmation. Nothing has been generated or applied at that point.
var ErrBackportCancelled = NewAppError(TypeCancelled, "Backport cancelled by user", nil)
