package version

import (
	"context"
	"fmt"
	"io"

	"github.com/thomas-vilte/matebackport/internal/buildinfo"
	"github.com/thomas-vilte/matebackport/internal/config"
	"github.com/thomas-vilte/matebackport/internal/i18n"
	"github.com/urfave/cli/v3"
)

type VersionCommandFactory struct {
	out io.Writer
}

func NewVersionCommandFactory(out io.Writer) *VersionCommandFactory {
	return &VersionCommandFactory{out: out}
}

func (f *VersionCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("version.usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			line := "mate-backport " + buildinfo.FullVersion()
			if rev := buildinfo.Revision(); rev != "" {
				line += " (" + rev + ")"
			}
			_, err := fmt.Fprintln(f.out, line)
			return err
		},
	}
}
