package completion_helper

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func TestDefaultFlagComplete(t *testing.T) {
	var out bytes.Buffer
	cmd := &cli.Command{
		Name:   "backport",
		Writer: &out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "squash"},
			&cli.StringFlag{Name: "node-dir", Aliases: []string{"n"}},
		},
	}

	DefaultFlagComplete(context.Background(), cmd)

	assert.Equal(t, "--squash\n--node-dir\n-n\n", out.String())
}
