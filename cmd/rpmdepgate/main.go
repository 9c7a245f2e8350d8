package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/distro-tools/rpmdepgate/internal/logger"
	"github.com/spf13/cobra"
)

// Command flags
var (
	repoFlags  repoList
	configPath string
	logLevel   string = "warn"
)

const (
	exitClean    = 0
	exitProblems = 1
	exitError    = 2
)

// errProblemsFound marks a run that completed but found problems with the
// packages under test. main maps it to its own exit status so scripts can
// tell "gate failed" from "tool failed".
var errProblemsFound = errors.New("problems found")

// createRootCommand creates the rpmdepgate root command
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rpmdepgate",
		Short: "checks RPM packages against repositories before release",
		Long: `rpmdepgate takes candidate RPM packages and tests them against
			one or more existing package repositories: are the candidates
			installable, do they leave the repositories dependency-closed,
			do they introduce undeclared file conflicts, and would anything
			already published immediately upgrade or obsolete them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logLevel)
		},
	}

	rootCmd.PersistentFlags().Var(&repoFlags, "repo",
		"Repository to test against, as NAME,URL or NAME,PATH (repeatable)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"YAML file listing repositories to test against")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"Log verbosity: debug, info, warn or error")

	rootCmd.AddCommand(
		createCheckCommand(),
		createCheckSatCommand(),
		createCheckRepoclosureCommand(),
		createCheckConflictsCommand(),
		createCheckUpgradeCommand(),
		createListDepsCommand(),
	)
	return rootCmd
}

func main() {
	if err := createRootCommand().Execute(); err != nil {
		if errors.Is(err, errProblemsFound) {
			os.Exit(exitProblems)
		}
		fmt.Fprintf(os.Stderr, "rpmdepgate: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(exitClean)
}
