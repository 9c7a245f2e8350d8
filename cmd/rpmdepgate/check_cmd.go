package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/distro-tools/rpmdepgate/internal/analyzer"
	"github.com/distro-tools/rpmdepgate/internal/config"
	"github.com/distro-tools/rpmdepgate/internal/repo"
	"github.com/spf13/cobra"
)

// gateAnalyzer is the slice of the analyzer the commands consume.
type gateAnalyzer interface {
	Close()
	TryInstallAll() (bool, *analyzer.DependencySet, error)
	FindRepoClosureProblems() []string
	FindConflicts() ([]string, error)
	FindUpgradeProblems() []string
}

// newAnalyzer builds the analyzer for a command run. Package-level so
// tests can substitute a fake.
var newAnalyzer = func(repos []analyzer.Repository, packagePaths []string) (gateAnalyzer, error) {
	return analyzer.New(repos, packagePaths)
}

// gatherRepos merges the --repo flags with the repositories from --config
// into handles, flags first.
func gatherRepos() ([]analyzer.Repository, error) {
	configured := []config.RepoConfig(repoFlags)
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		configured = append(configured, cfg.Repos...)
	}
	if len(configured) == 0 {
		return nil, errors.New("no repositories to test against, pass --repo or --config")
	}

	repos := make([]analyzer.Repository, 0, len(configured))
	for _, rc := range configured {
		repos = append(repos, repo.New(rc.Name, rc.BaseURL, rc.GPGKey))
	}
	return repos, nil
}

// checkSection is one analysis within a check run: it returns the
// problems to print under its header.
type checkSection struct {
	header string
	run    func(gateAnalyzer) ([]string, error)
}

var (
	satSection = checkSection{
		header: "Problems with dependency set:",
		run: func(a gateAnalyzer) ([]string, error) {
			_, ds, err := a.TryInstallAll()
			if err != nil {
				return nil, err
			}
			return ds.OverallProblems(), nil
		},
	}
	repoclosureSection = checkSection{
		header: "Dependency problems with repos:",
		run: func(a gateAnalyzer) ([]string, error) {
			return a.FindRepoClosureProblems(), nil
		},
	}
	conflictsSection = checkSection{
		header: "Undeclared file conflicts:",
		run: func(a gateAnalyzer) ([]string, error) {
			return a.FindConflicts()
		},
	}
	upgradeSection = checkSection{
		header: "Upgrade problems:",
		run: func(a gateAnalyzer) ([]string, error) {
			return a.FindUpgradeProblems(), nil
		},
	}
)

// executeSections builds an analyzer for the given package paths, runs
// each section and prints the problems found. A run with problems
// surfaces errProblemsFound so main exits nonzero.
func executeSections(cmd *cobra.Command, packagePaths []string, sections ...checkSection) error {
	repos, err := gatherRepos()
	if err != nil {
		return err
	}
	a, err := newAnalyzer(repos, packagePaths)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	failed := false
	for _, s := range sections {
		problems, err := s.run(a)
		if err != nil {
			return err
		}
		if len(problems) == 0 {
			continue
		}
		failed = true
		printProblems(out, s.header, problems)
	}
	if failed {
		return errProblemsFound
	}
	return nil
}

func printProblems(w io.Writer, header string, problems []string) {
	fmt.Fprintln(w, header)
	for _, p := range problems {
		fmt.Fprintln(w, p)
	}
}

// createCheckCommand creates the check subcommand running all analyses
func createCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [flags] RPMS...",
		Short: "runs all checks against the given packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeSections(cmd, args,
				satSection, repoclosureSection, conflictsSection, upgradeSection)
		},
	}
}

// createCheckSatCommand creates the check-sat subcommand
func createCheckSatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-sat [flags] RPMS...",
		Short: "checks that the given packages are installable",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeSections(cmd, args, satSection)
		},
	}
}

// createCheckRepoclosureCommand creates the check-repoclosure subcommand
func createCheckRepoclosureCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-repoclosure [flags] RPMS...",
		Short: "checks that repo dependencies stay satisfiable with the given packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeSections(cmd, args, repoclosureSection)
		},
	}
}

// createCheckConflictsCommand creates the check-conflicts subcommand
func createCheckConflictsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-conflicts [flags] RPMS...",
		Short: "checks the given packages for undeclared file conflicts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeSections(cmd, args, conflictsSection)
		},
	}
}

// createCheckUpgradeCommand creates the check-upgrade subcommand
func createCheckUpgradeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-upgrade [flags] RPMS...",
		Short: "checks that nothing in the repos would shadow the given packages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeSections(cmd, args, upgradeSection)
		},
	}
}
