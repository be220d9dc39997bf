package models

// PatchRecord is one upstream commit being backported.
type PatchRecord struct {
	// SHA is the full commit id, resolved at generation time.
	SHA string
	// Data is the format-patch output for SHA^..SHA.
	Data string
	// Message is the verbatim upstream commit message.
	Message string
	// HadConflicts is set the first time the patch needed manual resolution.
	HadConflicts bool
}

// ApplyMethod selects how a patch is applied to the downstream tree.
type ApplyMethod string

const (
	// ApplyWorkingTree leaves the changes uncommitted (git apply).
	ApplyWorkingTree ApplyMethod = "apply"
	// ApplyMailbox creates a commit carrying the original authorship (git am).
	ApplyMailbox ApplyMethod = "am"
)
