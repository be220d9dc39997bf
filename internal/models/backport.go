package models

// Strategy is the commit topology a backport run produces.
type Strategy string

const (
	StrategySquash          Strategy = "squash"
	StrategyPreserveAuthor  Strategy = "preserve-author"
	StrategyPatchThenCommit Strategy = "patch-then-commit"
)

// BumpKind selects which version file a bump touches.
type BumpKind string

const (
	BumpPatchLevel BumpKind = "patch-level"
	BumpEmbedder   BumpKind = "embedder"
)

// embedderSinceMajor is the first Node.js major that tracks V8 changes through
// the embedder string in common.gypi instead of V8_PATCH_LEVEL.
const embedderSinceMajor = 9

type BackportOptions struct {
	// SHAs are upstream references in the order they are applied and committed.
	SHAs                   []string
	Squash                 bool
	PreserveOriginalAuthor bool
	Bump                   bool
	NodeMajorVersion       int
	NodeDir                string
	V8Dir                  string
	GPGSign                bool
}

// Strategy returns the strategy for these options. Squash wins over
// PreserveOriginalAuthor when both are set.
func (o BackportOptions) Strategy() Strategy {
	switch {
	case o.Squash:
		return StrategySquash
	case o.PreserveOriginalAuthor:
		return StrategyPreserveAuthor
	default:
		return StrategyPatchThenCommit
	}
}

// BumpKind reports the version bump strategy for the target Node.js major.
func (o BackportOptions) BumpKind() BumpKind {
	if o.NodeMajorVersion < embedderSinceMajor {
		return BumpPatchLevel
	}
	return BumpEmbedder
}
