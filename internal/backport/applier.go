package backport

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/thomas-vilte/matebackport/internal/models"
)

const (
	// VendorDir is where V8 lives inside the Node.js checkout.
	VendorDir = "deps/v8"

	// ResolvedToken is what the operator types once conflicts are resolved.
	ResolvedToken = "RESOLVED"
)

// applyArgs map the upstream layout onto the vendored directory.
var applyArgs = []string{"-p1", "--3way", "--directory=" + VendorDir}

type patchApplier interface {
	Apply(ctx context.Context, method models.ApplyMethod, patch string, args ...string) error
}

// ConflictResolver blocks until a human has resolved a conflicting patch.
type ConflictResolver interface {
	Resolve(ctx context.Context, patch *models.PatchRecord) error
}

// Prompter is the interactive terminal surface.
type Prompter interface {
	Confirm(ctx context.Context, message string, defaultValue bool) (bool, error)
	Prompt(ctx context.Context, message string, validate func(string) bool) (string, error)
}

// PromptResolver asks the operator to type ResolvedToken. The prompter keeps
// asking until the answer validates.
type PromptResolver struct {
	prompter Prompter
	message  string
}

func NewPromptResolver(prompter Prompter, message string) *PromptResolver {
	if message == "" {
		message = "Resolve merge conflicts and enter '" + ResolvedToken + "'"
	}
	return &PromptResolver{prompter: prompter, message: message}
}

func (r *PromptResolver) Resolve(ctx context.Context, patch *models.PatchRecord) error {
	_, err := r.prompter.Prompt(ctx, r.message, IsResolvedToken)
	if err != nil {
		return domainErrors.ErrConflictUnresolved.WithError(err).WithContext("sha", patch.SHA)
	}
	return nil
}

// IsResolvedToken reports whether value is ResolvedToken, ignoring case.
func IsResolvedToken(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), ResolvedToken)
}

// Applier applies a patch to deps/v8 and hands conflicts to a resolver.
type Applier struct {
	git      patchApplier
	resolver ConflictResolver
}

func NewApplier(git patchApplier, resolver ConflictResolver) *Applier {
	return &Applier{git: git, resolver: resolver}
}

// Apply applies patch with method. When git rejects the patch, the record is
// marked as conflicted and Apply returns once the resolver acknowledges. A git
// process killed by ctx cancellation is not a conflict.
func (a *Applier) Apply(ctx context.Context, patch *models.PatchRecord, method models.ApplyMethod) error {
	log := logger.FromContext(ctx).With("sha", patch.SHA, "method", string(method))

	err := a.git.Apply(ctx, method, patch.Data, applyArgs...)
	if err == nil {
		log.Debug("patch applied cleanly")
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !errors.Is(err, domainErrors.ErrGitCommand) {
		return err
	}

	patch.HadConflicts = true
	log.Warn("patch did not apply cleanly, waiting for manual resolution", "error", err)

	if err := a.resolver.Resolve(ctx, patch); err != nil {
		return err
	}

	log.Info("conflicts resolved")
	return nil
}
