package backport

import (
	"context"

	"github.com/thomas-vilte/matebackport/internal/message"
	"github.com/thomas-vilte/matebackport/internal/models"
)

// downstreamGit defines the mutations steps perform on the Node.js checkout.
type downstreamGit interface {
	patchApplier
	AmContinue(ctx context.Context) error
	Add(ctx context.Context, paths ...string) error
	Commit(ctx context.Context, title, body string) error
	Amend(ctx context.Context, title, body string) error
	ConfigValue(ctx context.Context, key string) (string, error)
}

type gitService interface {
	upstreamGit
	downstreamGit
}

// RunContext is the state threaded through every step of one run.
type RunContext struct {
	Options   models.BackportOptions
	Patches   []*models.PatchRecord
	Version   *models.VersionState
	Git       downstreamGit
	Generator *Generator
	Applier   *Applier
	Messages  *message.Synthesizer
}

func (rc *RunContext) patch(i int) (*models.PatchRecord, error) {
	if i < 0 || i >= len(rc.Patches) {
		return nil, errPatchIndex(i, len(rc.Patches))
	}
	return rc.Patches[i], nil
}
