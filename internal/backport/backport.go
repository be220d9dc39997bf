// Package backport copies upstream V8 commits into the deps/v8 directory of
// a Node.js checkout.
package backport

import (
	"context"

	domainErrors "github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/thomas-vilte/matebackport/internal/message"
	"github.com/thomas-vilte/matebackport/internal/models"
	"github.com/thomas-vilte/matebackport/internal/tasks"
	"github.com/thomas-vilte/matebackport/internal/version"
)

// DefaultSquashWarning is asked before squashing several commits together.
const DefaultSquashWarning = "Squashing commits should be avoided if possible, because it can make git bisection difficult. Only squash commits if they would break the build when applied individually. Are you sure?"

// Result summarizes a finished run.
type Result struct {
	Strategy models.Strategy
	Patches  []*models.PatchRecord
	Version  *models.VersionState
}

type Service struct {
	git           gitService
	prompter      Prompter
	resolver      ConflictResolver
	reporter      tasks.Reporter
	messages      *message.Synthesizer
	squashWarning string
}

type Option func(*Service)

// WithResolver replaces the interactive conflict resolver.
func WithResolver(r ConflictResolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

func WithReporter(r tasks.Reporter) Option {
	return func(s *Service) {
		s.reporter = r
	}
}

func WithSynthesizer(m *message.Synthesizer) Option {
	return func(s *Service) {
		s.messages = m
	}
}

// WithSquashWarning sets the text of the squash confirmation.
func WithSquashWarning(text string) Option {
	return func(s *Service) {
		s.squashWarning = text
	}
}

func NewService(git gitService, prompter Prompter, opts ...Option) *Service {
	s := &Service{
		git:           git,
		prompter:      prompter,
		messages:      message.NewSynthesizer(""),
		squashWarning: DefaultSquashWarning,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = NewPromptResolver(prompter, "")
	}
	return s
}

// CheckOptions asks for confirmation before squashing more than one commit.
// A declined confirmation returns ErrBackportCancelled.
func (s *Service) CheckOptions(ctx context.Context, opts models.BackportOptions) error {
	if !opts.Squash || len(opts.SHAs) <= 1 {
		return nil
	}

	ok, err := s.prompter.Confirm(ctx, s.squashWarning, false)
	if err != nil {
		return domainErrors.ErrBackportCancelled.WithError(err)
	}
	if !ok {
		return domainErrors.ErrBackportCancelled
	}
	return nil
}

// Backport runs the full backport described by opts. When bumping is enabled
// and no Node.js major version is given, it is read from the checkout.
func (s *Service) Backport(ctx context.Context, opts models.BackportOptions) (*Result, error) {
	if len(opts.SHAs) == 0 {
		return nil, domainErrors.ErrNoCommits
	}

	if err := s.CheckOptions(ctx, opts); err != nil {
		return nil, err
	}

	if opts.Bump && opts.NodeMajorVersion == 0 {
		major, err := version.ReadNodeMajorVersion(opts.NodeDir)
		if err != nil {
			return nil, err
		}
		opts.NodeMajorVersion = major
	}

	ctx = logger.With(ctx, "strategy", string(opts.Strategy()))
	logger.Info(ctx, "starting backport", "patches", len(opts.SHAs), "bump", opts.Bump)

	rc := &RunContext{
		Options:   opts,
		Git:       s.git,
		Generator: NewGenerator(s.git),
		Applier:   NewApplier(s.git, s.resolver),
		Messages:  s.messages,
	}

	runner := tasks.NewRunner[*RunContext](s.reporter)
	if err := runner.Run(ctx, rc, Tasks(Plan(opts))); err != nil {
		logger.Error(ctx, "backport failed", err)
		return nil, err
	}

	return &Result{
		Strategy: opts.Strategy(),
		Patches:  rc.Patches,
		Version:  rc.Version,
	}, nil
}
