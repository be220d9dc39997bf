package backport

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/matebackport/internal/models"
)

type MockGitService struct {
	mock.Mock
}

func (m *MockGitService) RevParse(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) FormatPatch(ctx context.Context, sha string) (string, error) {
	args := m.Called(ctx, sha)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) CommitMessage(ctx context.Context, sha string) (string, error) {
	args := m.Called(ctx, sha)
	return args.String(0), args.Error(1)
}

func (m *MockGitService) Apply(ctx context.Context, method models.ApplyMethod, patch string, extra ...string) error {
	args := m.Called(ctx, method, patch, extra)
	return args.Error(0)
}

func (m *MockGitService) AmContinue(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGitService) Add(ctx context.Context, paths ...string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

func (m *MockGitService) Commit(ctx context.Context, title, body string) error {
	args := m.Called(ctx, title, body)
	return args.Error(0)
}

func (m *MockGitService) Amend(ctx context.Context, title, body string) error {
	args := m.Called(ctx, title, body)
	return args.Error(0)
}

func (m *MockGitService) ConfigValue(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

var errInvalidAnswer = errors.New("answer rejected by validator")

type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Confirm(ctx context.Context, message string, defaultValue bool) (bool, error) {
	args := m.Called(ctx, message, defaultValue)
	return args.Bool(0), args.Error(1)
}

// Prompt returns the configured answer only when validate accepts it.
func (m *MockPrompter) Prompt(ctx context.Context, message string, validate func(string) bool) (string, error) {
	args := m.Called(ctx, message)
	answer := args.String(0)
	if err := args.Error(1); err != nil {
		return "", err
	}
	if validate != nil && !validate(answer) {
		return "", errInvalidAnswer
	}
	return answer, nil
}

// ackResolver acknowledges every conflict and records which patches it saw.
type ackResolver struct {
	mu        sync.Mutex
	resolved  []string
	onResolve func(*models.PatchRecord) error
}

func (r *ackResolver) Resolve(_ context.Context, patch *models.PatchRecord) error {
	r.mu.Lock()
	r.resolved = append(r.resolved, patch.SHA)
	r.mu.Unlock()
	if r.onResolve != nil {
		return r.onResolve(patch)
	}
	return nil
}
