// Package message builds commit titles and bodies for backported V8 commits.
package message

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/matebackport/internal/models"
)

const (
	// DefaultRefsBaseURL is where upstream commits are permanently addressable.
	DefaultRefsBaseURL = "https://github.com/v8/v8/commit"

	titlePrefix  = "deps: V8: "
	bodyHeader   = "Original commit message:\n\n"
	indent       = "    "
	shortSHASize = 7
)

// Synthesizer formats commit messages. The zero value uses DefaultRefsBaseURL.
type Synthesizer struct {
	RefsBaseURL string
}

func NewSynthesizer(refsBaseURL string) *Synthesizer {
	return &Synthesizer{RefsBaseURL: refsBaseURL}
}

// ShortSHA returns the abbreviated form used in titles.
func ShortSHA(sha string) string {
	if len(sha) <= shortSHASize {
		return sha
	}
	return sha[:shortSHASize]
}

func action(patches []*models.PatchRecord) string {
	for _, p := range patches {
		if p.HadConflicts {
			return "backport"
		}
	}
	return "cherry-pick"
}

// FormatTitle returns the commit title covering patches, in order.
func (s *Synthesizer) FormatTitle(patches []*models.PatchRecord) string {
	act := action(patches)

	switch len(patches) {
	case 0:
		return titlePrefix + act
	case 1:
		return fmt.Sprintf("%s%s %s", titlePrefix, act, ShortSHA(patches[0].SHA))
	case 2:
		return fmt.Sprintf("%s%s %s and %s", titlePrefix, act,
			ShortSHA(patches[0].SHA), ShortSHA(patches[1].SHA))
	case 3:
		return fmt.Sprintf("%s%s %s, %s and %s", titlePrefix, act,
			ShortSHA(patches[0].SHA), ShortSHA(patches[1].SHA), ShortSHA(patches[2].SHA))
	default:
		return fmt.Sprintf("%s%s %d commits", titlePrefix, act, len(patches))
	}
}

// FormatBody reproduces the original message under a fixed header followed by
// the Refs line. With prefixAction the body opens with a per-patch action line;
// otherwise extra trailers are appended verbatim.
func (s *Synthesizer) FormatBody(patch *models.PatchRecord, prefixAction bool, extra ...string) string {
	indented := strings.ReplaceAll(patch.Message, "\n", "\n"+indent)

	var b strings.Builder
	b.WriteString(bodyHeader)
	b.WriteString(indent)
	b.WriteString(indented)
	b.WriteString("\n\n")
	b.WriteString("Refs: ")
	b.WriteString(s.refsURL(patch.SHA))
	body := b.String()

	if prefixAction {
		act := "Cherry-pick"
		if patch.HadConflicts {
			act = "Backport"
		}
		return fmt.Sprintf("%s %s.\n\n%s", act, ShortSHA(patch.SHA), body)
	}
	return body + strings.Join(extra, "")
}

// FormatSquashedBody returns the body of a commit that folds every patch in.
func (s *Synthesizer) FormatSquashedBody(patches []*models.PatchRecord) string {
	if len(patches) == 1 {
		return s.FormatBody(patches[0], false)
	}

	var b strings.Builder
	for _, p := range patches {
		b.WriteString(s.FormatBody(p, true))
		b.WriteString("\n\n")
	}
	return b.String()
}

// CoAuthorTrailer credits the operator who resolved a conflicting cherry-pick.
func CoAuthorTrailer(name, email string) string {
	return fmt.Sprintf("\n\nCo-authored-by: %s <%s>", name, email)
}

func (s *Synthesizer) refsURL(sha string) string {
	base := s.RefsBaseURL
	if base == "" {
		base = DefaultRefsBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/" + sha
}
