package regex

import "regexp"

var (
	// v8-version.h fields
	V8MajorVersion = regexp.MustCompile(`#define\s+V8_MAJOR_VERSION\s+(\d+)`)
	V8MinorVersion = regexp.MustCompile(`#define\s+V8_MINOR_VERSION\s+(\d+)`)
	V8BuildNumber  = regexp.MustCompile(`#define\s+V8_BUILD_NUMBER\s+(\d+)`)
	V8PatchLevel   = regexp.MustCompile(`#define\s+V8_PATCH_LEVEL\s+(\d+)`)

	// node_version.h fields
	NodeMajorVersion = regexp.MustCompile(`#define\s+NODE_MAJOR_VERSION\s+(\d+)`)

	// Bump targets. Only the first match is rewritten.
	PatchLevelBump     = regexp.MustCompile(`V8_PATCH_LEVEL (\d+)`)
	EmbedderStringBump = regexp.MustCompile(`'v8_embedder_string': '-node\.(\d+)'`)
)
