package backport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/matebackport/internal/errors"
)

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the input order regardless of completion order", func(t *testing.T) {
		git := new(MockGitService)
		refs := []string{"aaa", "bbb", "ccc"}
		delays := map[string]time.Duration{"aaa": 30 * time.Millisecond, "bbb": 0, "ccc": 10 * time.Millisecond}

		for _, ref := range refs {
			full := ref + "-full"
			git.On("RevParse", mock.Anything, ref).After(delays[ref]).Return(full, nil)
			git.On("FormatPatch", mock.Anything, full).After(delays[ref]).Return("patch of "+ref, nil)
			git.On("CommitMessage", mock.Anything, full).Return("message of "+ref, nil)
		}

		records, err := NewGenerator(git).Generate(ctx, refs)

		require.NoError(t, err)
		require.Len(t, records, 3)
		for i, ref := range refs {
			assert.Equal(t, ref+"-full", records[i].SHA)
			assert.Equal(t, "patch of "+ref, records[i].Data)
			assert.Equal(t, "message of "+ref, records[i].Message)
			assert.False(t, records[i].HadConflicts)
		}
		git.AssertExpectations(t)
	})

	t.Run("returns nothing when a reference does not resolve", func(t *testing.T) {
		git := new(MockGitService)
		resolveErr := domainErrors.ErrResolveRef.WithContext("ref", "bad")
		git.On("RevParse", mock.Anything, "good").Return("good-full", nil)
		git.On("RevParse", mock.Anything, "bad").Return("", resolveErr)

		records, err := NewGenerator(git).Generate(ctx, []string{"good", "bad"})

		assert.Nil(t, records)
		assert.True(t, errors.Is(err, domainErrors.ErrResolveRef))
		git.AssertNotCalled(t, "FormatPatch", mock.Anything, mock.Anything)
	})

	t.Run("returns nothing when a patch cannot be generated", func(t *testing.T) {
		git := new(MockGitService)
		git.On("RevParse", mock.Anything, "a").Return("a-full", nil)
		git.On("FormatPatch", mock.Anything, "a-full").Return("", domainErrors.ErrGeneratePatch)
		git.On("CommitMessage", mock.Anything, "a-full").Return("msg", nil).Maybe()

		records, err := NewGenerator(git).Generate(ctx, []string{"a"})

		assert.Nil(t, records)
		assert.True(t, errors.Is(err, domainErrors.ErrGeneratePatch))
	})

	t.Run("rejects an empty list", func(t *testing.T) {
		records, err := NewGenerator(new(MockGitService)).Generate(ctx, nil)

		assert.Nil(t, records)
		assert.True(t, errors.Is(err, domainErrors.ErrNoCommits))
	})
}
