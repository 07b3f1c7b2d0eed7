// Package main is owt's entry point: CLI flag/subcommand wiring around the
// TUI core in internal/app.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/owt-cli/owt/internal/app"
	"github.com/owt-cli/owt/internal/bootstrap"
	"github.com/owt-cli/owt/internal/config"
	"github.com/owt-cli/owt/internal/git"
	"github.com/owt-cli/owt/internal/shellintegration"
)

var version = "dev"

func main() {
	cliApp := &cli.Command{
		Name:    "owt",
		Usage:   "manage git worktrees rooted in a bare repository",
		Version: version,
		Commands: []*cli.Command{
			cloneCommand(),
			initCommand(),
			setupCommand(),
			testCDCommand(),
		},
		Action: runTUI,
	}

	if err := cliApp.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "owt: %v\n", err)
		os.Exit(1)
	}
}

// runTUI is the default action. It detects the bare repository, loads
// config, runs the bubbletea program to completion, and only then — once
// the terminal has been restored by p.Run() returning — performs the
// shell-integration write or stdout fallback.
func runTUI(ctx context.Context, _ *cli.Command) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("could not determine current directory: %w", err)
	}

	drv := git.New()
	bareDir, err := drv.DetectRepo(ctx, cwd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(bareDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	model := app.NewModel(ctx, drv, cfg, bareDir, cwd)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running owt: %w", err)
	}

	return finishExit(model.ExitPath())
}

// finishExit hands the chosen path to the shell wrapper: writes it to
// OWT_OUTPUT_FILE if set, otherwise prints it to stdout. Called strictly
// after p.Run() returns so the terminal is already restored.
func finishExit(path string) error {
	if path == "" {
		return nil
	}
	wrote, err := shellintegration.Emit(path)
	if err != nil {
		return fmt.Errorf("writing %s: %w", shellintegration.OutputFileEnv, err)
	}
	if !wrote {
		fmt.Println(path)
	}
	return nil
}

func cloneCommand() *cli.Command {
	return &cli.Command{
		Name:      "clone",
		Usage:     "clone a repository into owt's bare + sibling-worktree layout",
		ArgsUsage: "<url> [dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return fmt.Errorf("clone requires a repository url")
			}
			dest := cmd.Args().Get(1)
			return bootstrap.Clone(ctx, git.New(), cmd.Args().First(), dest)
		},
	}
}

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "print a guide for converting an existing clone to owt's layout",
		Action: func(_ context.Context, _ *cli.Command) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			bootstrap.Init(os.Stdout, cwd)
			return nil
		},
	}
}

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:      "setup",
		Usage:     "print the shell-integration snippet for your shell",
		ArgsUsage: "[bash|zsh|fish]",
		Action: func(_ context.Context, cmd *cli.Command) error {
			shell := cmd.Args().First()
			if shell == "" {
				shell = filepath.Base(os.Getenv("SHELL"))
			}
			bootstrap.Setup(os.Stdout, shell)
			return nil
		},
	}
}

func testCDCommand() *cli.Command {
	return &cli.Command{
		Name:  "test-cd",
		Usage: "print the path owt would hand back to the shell wrapper",
		Action: func(_ context.Context, cmd *cli.Command) error {
			bootstrap.TestCD(os.Stdout, cmd.Args().First())
			return nil
		},
	}
}
