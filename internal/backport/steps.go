package backport

import (
	"context"
	"fmt"

	domainErrors "github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/thomas-vilte/matebackport/internal/message"
	"github.com/thomas-vilte/matebackport/internal/models"
	"github.com/thomas-vilte/matebackport/internal/version"
)

// Step is one unit of planned work. Implementations are plain values so a
// plan can be compared and inspected without running it.
type Step interface {
	Title() string
	Run(ctx context.Context, rc *RunContext) error
}

type (
	// ReadVersion loads the vendored V8 version into the run context.
	ReadVersion struct{}

	// GeneratePatches fills the run context with one record per requested SHA.
	GeneratePatches struct{}

	// ApplyPatch applies a single patch with the given method.
	ApplyPatch struct {
		Index  int
		Method models.ApplyMethod
	}

	// ApplyAllPatches applies every patch to the working tree in order.
	ApplyAllPatches struct{}

	// BumpVersion records one more non-official patch in the version metadata.
	BumpVersion struct {
		Kind models.BumpKind
	}

	// Commit stages deps/v8 and commits a single patch.
	Commit struct {
		Index int
	}

	// CommitSquashed stages deps/v8 and commits every patch as one.
	CommitSquashed struct{}

	// Amend finalizes the commit created by a mailbox apply.
	Amend struct {
		Index int
	}
)

func (ReadVersion) Title() string { return "Get current V8 version" }

func (ReadVersion) Run(ctx context.Context, rc *RunContext) error {
	v, err := version.ReadV8Version(rc.Options.NodeDir)
	if err != nil {
		return err
	}
	rc.Version = v
	logger.Info(ctx, "current V8 version", "version", v.String())
	return nil
}

func (GeneratePatches) Title() string { return "Generate patches" }

func (GeneratePatches) Run(ctx context.Context, rc *RunContext) error {
	patches, err := rc.Generator.Generate(ctx, rc.Options.SHAs)
	if err != nil {
		return err
	}
	rc.Patches = patches
	return nil
}

func (s ApplyPatch) Title() string {
	if s.Method == models.ApplyMailbox {
		return "Cherry-pick"
	}
	return "Apply patch"
}

func (s ApplyPatch) Run(ctx context.Context, rc *RunContext) error {
	p, err := rc.patch(s.Index)
	if err != nil {
		return err
	}
	return rc.Applier.Apply(ctx, p, s.Method)
}

func (ApplyAllPatches) Title() string { return "Apply patches to " + VendorDir }

func (ApplyAllPatches) Run(ctx context.Context, rc *RunContext) error {
	for _, p := range rc.Patches {
		if err := rc.Applier.Apply(ctx, p, models.ApplyWorkingTree); err != nil {
			return err
		}
	}
	return nil
}

func (s BumpVersion) Title() string {
	if s.Kind == models.BumpPatchLevel {
		return "Increment V8 version"
	}
	return "Increment embedder version number"
}

func (s BumpVersion) Run(ctx context.Context, rc *RunContext) error {
	if s.Kind == models.BumpPatchLevel {
		if rc.Version == nil {
			return domainErrors.NewAppError(domainErrors.TypeInternal, "V8 version was not read before bumping", nil)
		}
		return version.BumpPatchLevel(ctx, rc.Options.NodeDir, rc.Version)
	}
	_, err := version.BumpEmbedderString(ctx, rc.Options.NodeDir, rc.Git)
	return err
}

func (Commit) Title() string { return "Commit patch" }

func (s Commit) Run(ctx context.Context, rc *RunContext) error {
	p, err := rc.patch(s.Index)
	if err != nil {
		return err
	}
	if err := rc.Git.Add(ctx, VendorDir); err != nil {
		return err
	}
	return rc.Git.Commit(ctx,
		rc.Messages.FormatTitle([]*models.PatchRecord{p}),
		rc.Messages.FormatBody(p, false))
}

func (CommitSquashed) Title() string { return "Commit patches" }

func (CommitSquashed) Run(ctx context.Context, rc *RunContext) error {
	if len(rc.Patches) == 0 {
		return domainErrors.ErrNoCommits
	}
	if err := rc.Git.Add(ctx, VendorDir); err != nil {
		return err
	}
	return rc.Git.Commit(ctx,
		rc.Messages.FormatTitle(rc.Patches),
		rc.Messages.FormatSquashedBody(rc.Patches))
}

func (Amend) Title() string { return "Amend/commit" }

// Run completes an interrupted mailbox apply first when the patch conflicted,
// crediting the current git identity as co-author.
func (s Amend) Run(ctx context.Context, rc *RunContext) error {
	p, err := rc.patch(s.Index)
	if err != nil {
		return err
	}

	var trailer string
	if p.HadConflicts {
		if err := rc.Git.Add(ctx, VendorDir); err != nil {
			return err
		}
		if err := rc.Git.AmContinue(ctx); err != nil {
			return domainErrors.ErrAmendCommit.WithError(err).WithContext("sha", p.SHA)
		}

		name, err := rc.Git.ConfigValue(ctx, "user.name")
		if err != nil {
			return err
		}
		email, err := rc.Git.ConfigValue(ctx, "user.email")
		if err != nil {
			return err
		}
		trailer = message.CoAuthorTrailer(name, email)
	}

	if err := rc.Git.Add(ctx, VendorDir); err != nil {
		return err
	}
	return rc.Git.Amend(ctx,
		rc.Messages.FormatTitle([]*models.PatchRecord{p}),
		rc.Messages.FormatBody(p, false, trailer))
}

func errPatchIndex(i, n int) error {
	return domainErrors.NewAppError(domainErrors.TypeInternal,
		fmt.Sprintf("patch %d requested but only %d generated", i, n), nil)
}
