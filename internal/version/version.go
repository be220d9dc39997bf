// Package version reads and bumps the V8 version metadata of a Node.js
// checkout. Every edit is a whole-file read, a single pattern substitution and
// a whole-file write.
package version

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/thomas-vilte/matebackport/internal/models"
	"github.com/thomas-vilte/matebackport/internal/regex"
)

const (
	// V8VersionHeader is relative to the Node.js checkout.
	V8VersionHeader = "deps/v8/include/v8-version.h"
	// CommonGypi holds the embedder string; relative to the Node.js checkout.
	CommonGypi = "common.gypi"
	// NodeVersionHeader is relative to the Node.js checkout.
	NodeVersionHeader = "src/node_version.h"
)

// Stager stages files in the downstream repository.
type Stager interface {
	Add(ctx context.Context, paths ...string) error
}

// ReadV8Version parses the vendored V8 version out of v8-version.h.
func ReadV8Version(nodeDir string) (*models.VersionState, error) {
	path := filepath.Join(nodeDir, V8VersionHeader)
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var state models.VersionState
	for _, f := range []struct {
		re  *regexp.Regexp
		dst *int
	}{
		{regex.V8MajorVersion, &state.Major},
		{regex.V8MinorVersion, &state.Minor},
		{regex.V8BuildNumber, &state.Build},
		{regex.V8PatchLevel, &state.Patch},
	} {
		n, err := findInt(f.re, content, path)
		if err != nil {
			return nil, err
		}
		*f.dst = n
	}
	return &state, nil
}

// ReadNodeMajorVersion returns NODE_MAJOR_VERSION from src/node_version.h.
func ReadNodeMajorVersion(nodeDir string) (int, error) {
	path := filepath.Join(nodeDir, NodeVersionHeader)
	content, err := readFile(path)
	if err != nil {
		return 0, err
	}
	return findInt(regex.NodeMajorVersion, content, path)
}

// BumpPatchLevel increments state.Patch and writes it into v8-version.h.
// Staging is left to the commit that follows.
func BumpPatchLevel(ctx context.Context, nodeDir string, state *models.VersionState) error {
	path := filepath.Join(nodeDir, V8VersionHeader)
	content, err := readFile(path)
	if err != nil {
		return err
	}

	loc := regex.PatchLevelBump.FindIndex(content)
	if loc == nil {
		return patternNotFound(path, regex.PatchLevelBump)
	}

	state.Patch++
	replacement := fmt.Sprintf("V8_PATCH_LEVEL %d", state.Patch)
	if err := writeFile(path, splice(content, loc, replacement)); err != nil {
		return err
	}

	logger.Info(ctx, "bumped V8 patch level", "version", state.String())
	return nil
}

// BumpEmbedderString increments the -node.N embedder string in common.gypi
// and stages the file, since no later step touches it.
func BumpEmbedderString(ctx context.Context, nodeDir string, stager Stager) (int, error) {
	path := filepath.Join(nodeDir, CommonGypi)
	content, err := readFile(path)
	if err != nil {
		return 0, err
	}

	m := regex.EmbedderStringBump.FindSubmatchIndex(content)
	if m == nil {
		return 0, patternNotFound(path, regex.EmbedderStringBump)
	}

	current, err := strconv.Atoi(string(content[m[2]:m[3]]))
	if err != nil {
		return 0, patternNotFound(path, regex.EmbedderStringBump).WithError(err)
	}

	next := current + 1
	replacement := fmt.Sprintf("'v8_embedder_string': '-node.%d'", next)
	if err := writeFile(path, splice(content, m[:2], replacement)); err != nil {
		return 0, err
	}

	if err := stager.Add(ctx, CommonGypi); err != nil {
		return 0, err
	}

	logger.Info(ctx, "bumped embedder string", "version", fmt.Sprintf("-node.%d", next))
	return next, nil
}

func splice(content []byte, loc []int, replacement string) []byte {
	out := make([]byte, 0, len(content)+len(replacement))
	out = append(out, content[:loc[0]]...)
	out = append(out, replacement...)
	return append(out, content[loc[1]:]...)
}

func findInt(re *regexp.Regexp, content []byte, path string) (int, error) {
	m := re.FindSubmatch(content)
	if m == nil {
		return 0, patternNotFound(path, re)
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, patternNotFound(path, re).WithError(err)
	}
	return n, nil
}

func patternNotFound(path string, re *regexp.Regexp) *errors.AppError {
	return errors.ErrVersionPatternNotFound.
		WithContext("file", path).
		WithContext("pattern", re.String())
}

func readFile(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrReadVersionFile.WithError(err).WithContext("file", path)
	}
	return content, nil
}

func writeFile(path string, content []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.ErrWriteVersionFile.WithError(err).WithContext("file", path)
	}
	if err := os.WriteFile(path, content, info.Mode().Perm()); err != nil {
		return errors.ErrWriteVersionFile.WithError(err).WithContext("file", path)
	}
	return nil
}
