package buildinfo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullVersion(t *testing.T) {
	assert.True(t, strings.HasPrefix(FullVersion(), "v"))
	assert.Equal(t, "v"+Version, FullVersion())
}

func TestRevision(t *testing.T) {
	assert.LessOrEqual(t, len(Revision()), 12)
}
