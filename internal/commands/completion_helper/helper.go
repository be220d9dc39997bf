package completion_helper

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// DefaultFlagComplete prints every flag of the current command, one per line,
// so flags are suggested even where the default urfave/cli completion fails.
func DefaultFlagComplete(_ context.Context, cmd *cli.Command) {
	var w io.Writer = os.Stdout
	if root := cmd.Root(); root != nil && root.Writer != nil {
		w = root.Writer
	}

	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if len(name) == 1 {
				_, _ = fmt.Fprintln(w, "-"+name)
			} else {
				_, _ = fmt.Fprintln(w, "--"+name)
			}
		}
	}
}
