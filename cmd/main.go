package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/thomas-vilte/matebackport/internal/buildinfo"
	"github.com/thomas-vilte/matebackport/internal/cli/registry"
	"github.com/thomas-vilte/matebackport/internal/commands/backport"
	"github.com/thomas-vilte/matebackport/internal/commands/version"
	cfg "github.com/thomas-vilte/matebackport/internal/config"
	"github.com/thomas-vilte/matebackport/internal/i18n"
	"github.com/thomas-vilte/matebackport/internal/logger"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Initialize(false, false)

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Error starting the CLI: %v", err)
	}

	if err := app.Run(ctx, os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}

func initializeApp(ctx context.Context) (*cli.Command, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not get the user home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(ctx, homeDir)
	if err != nil {
		return nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		return nil, fmt.Errorf("error loading translations: %w", err)
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)

	provider := backport.NewServiceProvider(os.Stdin, os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
	if err := registerCommand.Register("backport", backport.NewBackportCommandFactory(provider, os.Stdout)); err != nil {
		return nil, err
	}
	if err := registerCommand.Register("version", version.NewVersionCommandFactory(os.Stdout)); err != nil {
		return nil, err
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	})

	return &cli.Command{
		Name:                  "mate-backport",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               buildinfo.Version,
		Description:           translations.GetMessage("app_description", 0, nil),
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}
