package backport

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	bp "github.com/thomas-vilte/matebackport/internal/backport"
	"github.com/thomas-vilte/matebackport/internal/commands/completion_helper"
	"github.com/thomas-vilte/matebackport/internal/config"
	domainErrors "github.com/thomas-vilte/matebackport/internal/errors"
	"github.com/thomas-vilte/matebackport/internal/git"
	"github.com/thomas-vilte/matebackport/internal/i18n"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/thomas-vilte/matebackport/internal/message"
	"github.com/thomas-vilte/matebackport/internal/models"
	"github.com/thomas-vilte/matebackport/internal/ui"
	"github.com/urfave/cli/v3"
)

// Backporter runs one backport.
type Backporter interface {
	Backport(ctx context.Context, opts models.BackportOptions) (*bp.Result, error)
}

// BackporterProvider builds a Backporter for the resolved options.
type BackporterProvider func(opts models.BackportOptions, cfg *config.Config, t *i18n.Translations) (Backporter, error)

type BackportCommandFactory struct {
	provider BackporterProvider
	out      io.Writer
}

func NewBackportCommandFactory(provider BackporterProvider, out io.Writer) *BackportCommandFactory {
	return &BackportCommandFactory{
		provider: provider,
		out:      out,
	}
}

func (f *BackportCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "backport",
		Aliases:       []string{"bp"},
		Usage:         t.GetMessage("backport.usage", 0, nil),
		Description:   t.GetMessage("backport.long_description", 0, nil),
		ArgsUsage:     t.GetMessage("backport.args_usage", 0, nil),
		Flags:         f.createFlags(cfg, t),
		Action:        f.createAction(cfg, t),
		ShellComplete: completion_helper.DefaultFlagComplete,
	}
}

func (f *BackportCommandFactory) createFlags(cfg *config.Config, t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "squash",
			Usage: t.GetMessage("backport.flag.squash", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "preserve-original-author",
			Usage: t.GetMessage("backport.flag.preserve_original_author", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "no-bump",
			Usage: t.GetMessage("backport.flag.no_bump", 0, nil),
		},
		&cli.IntFlag{
			Name:  "node-major",
			Usage: t.GetMessage("backport.flag.node_major", 0, nil),
		},
		&cli.StringFlag{
			Name:  "node-dir",
			Value: cfg.NodeDir,
			Usage: t.GetMessage("backport.flag.node_dir", 0, nil),
		},
		&cli.StringFlag{
			Name:  "v8-dir",
			Value: cfg.V8Dir,
			Usage: t.GetMessage("backport.flag.v8_dir", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "gpg-sign",
			Value: cfg.GPGSign,
			Usage: t.GetMessage("backport.flag.gpg_sign", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: t.GetMessage("backport.flag.debug", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: t.GetMessage("backport.flag.verbose", 0, nil),
		},
	}
}

func (f *BackportCommandFactory) createAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		logger.Initialize(command.Bool("debug"), command.Bool("verbose"))

		opts, err := optionsFromCommand(command, cfg)
		if errors.Is(err, domainErrors.ErrNoCommits) {
			ui.PrintError(f.out, t.GetMessage("backport.missing_commits", 0, nil))
			return err
		}
		if err != nil {
			ui.HandleAppError(f.out, err, t)
			return err
		}

		runCfg := *cfg
		runCfg.NodeDir = opts.NodeDir
		runCfg.V8Dir = opts.V8Dir
		runCfg.GPGSign = opts.GPGSign
		if err := runCfg.CheckDirs(); err != nil {
			ui.HandleAppError(f.out, err, t)
			return err
		}

		svc, err := f.provider(opts, &runCfg, t)
		if err != nil {
			ui.HandleAppError(f.out, err, t)
			return err
		}

		result, err := svc.Backport(ctx, opts)
		if errors.Is(err, domainErrors.ErrBackportCancelled) {
			ui.PrintWarning(f.out, t.GetMessage("backport.cancelled", 0, nil))
			return nil
		}
		if err != nil {
			ui.HandleAppError(f.out, err, t)
			return err
		}

		f.printResult(result, t)
		return nil
	}
}

func optionsFromCommand(command *cli.Command, cfg *config.Config) (models.BackportOptions, error) {
	shas := command.Args().Slice()
	if len(shas) == 0 {
		return models.BackportOptions{}, domainErrors.ErrNoCommits
	}

	nodeDir, err := filepath.Abs(command.String("node-dir"))
	if err != nil {
		return models.BackportOptions{}, domainErrors.ErrNodeDirMissing.WithError(err)
	}
	v8Dir, err := filepath.Abs(command.String("v8-dir"))
	if err != nil {
		return models.BackportOptions{}, domainErrors.ErrV8DirMissing.WithError(err)
	}

	return models.BackportOptions{
		SHAs:                   shas,
		Squash:                 command.Bool("squash"),
		PreserveOriginalAuthor: command.Bool("preserve-original-author"),
		Bump:                   cfg.Bump && !command.Bool("no-bump"),
		NodeMajorVersion:       int(command.Int("node-major")),
		NodeDir:                nodeDir,
		V8Dir:                  v8Dir,
		GPGSign:                command.Bool("gpg-sign"),
	}, nil
}

func (f *BackportCommandFactory) printResult(result *bp.Result, t *i18n.Translations) {
	ui.PrintSectionBanner(f.out, t.GetMessage("backport.summary", 0, map[string]interface{}{
		"Strategy": string(result.Strategy),
	}))

	if result.Version != nil {
		ui.PrintInfo(f.out, t.GetMessage("backport.version_read", 0, map[string]interface{}{
			"Version": result.Version.String(),
		}))
	}

	var conflicted []string
	for _, p := range result.Patches {
		if p.HadConflicts {
			conflicted = append(conflicted, message.ShortSHA(p.SHA))
		}
	}
	if len(conflicted) > 0 {
		ui.PrintWarning(f.out, t.GetMessage("backport.conflicts_resolved", 0, map[string]interface{}{
			"SHAs": strings.Join(conflicted, ", "),
		}))
	}

	ui.PrintSuccess(f.out, t.GetMessage("backport.success", len(result.Patches), map[string]interface{}{
		"Count":    len(result.Patches),
		"Strategy": string(result.Strategy),
	}))
}

// NewServiceProvider returns the provider used by the CLI: a git service for
// both repositories and an interactive prompter on in and out.
func NewServiceProvider(in io.Reader, out io.Writer, animate bool) BackporterProvider {
	return func(opts models.BackportOptions, cfg *config.Config, t *i18n.Translations) (Backporter, error) {
		gitService, err := git.NewGitService(
			git.WithRepoDir(git.RepoUpstream, opts.V8Dir),
			git.WithRepoDir(git.RepoDownstream, opts.NodeDir),
			git.WithGPGSign(opts.GPGSign),
		)
		if err != nil {
			return nil, err
		}

		prompter := ui.NewTerminalPrompter(in, out,
			ui.WithConfirmSuffix(t.GetMessage("ui.confirm_suffix", 0, nil)),
			ui.WithInvalidAnswer(t.GetMessage("ui.invalid_answer", 0, nil)),
		)

		return bp.NewService(gitService, prompter,
			bp.WithResolver(bp.NewPromptResolver(prompter, t.GetMessage("backport.resolve_conflicts", 0, nil))),
			bp.WithReporter(ui.NewTaskReporter(out, animate)),
			bp.WithSynthesizer(message.NewSynthesizer(cfg.RefsBaseURL)),
			bp.WithSquashWarning(t.GetMessage("backport.squash_warning", 0, nil)),
		), nil
	}
}
