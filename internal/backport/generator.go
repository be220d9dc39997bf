package backport

import (
	"context"

	"github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/thomas-vilte/matebackport/internal/models"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds the git processes spawned against the upstream
// clone while generating patches.
const maxConcurrentFetches = 8

// upstreamGit defines the read-only queries the generator runs against the
// upstream clone.
type upstreamGit interface {
	RevParse(ctx context.Context, ref string) (string, error)
	FormatPatch(ctx context.Context, sha string) (string, error)
	CommitMessage(ctx context.Context, sha string) (string, error)
}

// Generator turns upstream commit references into patch records.
type Generator struct {
	git upstreamGit
}

func NewGenerator(git upstreamGit) *Generator {
	return &Generator{git: git}
}

// Generate resolves every ref to a full SHA and fetches its patch and message.
// Records come back in the order of refs. Any failure discards all records.
func (g *Generator) Generate(ctx context.Context, refs []string) ([]*models.PatchRecord, error) {
	log := logger.FromContext(ctx)

	if len(refs) == 0 {
		return nil, errors.ErrNoCommits
	}

	shas := make([]string, len(refs))
	resolve, rctx := errgroup.WithContext(ctx)
	resolve.SetLimit(maxConcurrentFetches)
	for i, ref := range refs {
		resolve.Go(func() error {
			sha, err := g.git.RevParse(rctx, ref)
			if err != nil {
				return err
			}
			shas[i] = sha
			return nil
		})
	}
	if err := resolve.Wait(); err != nil {
		log.Error("failed to resolve commit references", "error", err)
		return nil, err
	}

	records := make([]*models.PatchRecord, len(shas))
	fetch, fctx := errgroup.WithContext(ctx)
	fetch.SetLimit(maxConcurrentFetches)
	for i, sha := range shas {
		record := &models.PatchRecord{SHA: sha}
		records[i] = record

		fetch.Go(func() error {
			data, err := g.git.FormatPatch(fctx, sha)
			if err != nil {
				return err
			}
			record.Data = data
			return nil
		})
		fetch.Go(func() error {
			msg, err := g.git.CommitMessage(fctx, sha)
			if err != nil {
				return err
			}
			record.Message = msg
			return nil
		})
	}
	if err := fetch.Wait(); err != nil {
		log.Error("failed to generate patches", "error", err)
		return nil, err
	}

	log.Info("generated patches", "patches", len(records))
	return records, nil
}
