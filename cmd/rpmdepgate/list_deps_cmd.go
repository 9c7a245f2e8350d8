package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

// createListDepsCommand creates the list-deps subcommand
func createListDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list-deps [flags] RPMS...",
		Short: "lists the install dependencies of the given packages",
		Args:  cobra.MinimumNArgs(1),
		RunE:  executeListDeps,
	}
}

func executeListDeps(cmd *cobra.Command, args []string) error {
	repos, err := gatherRepos()
	if err != nil {
		return err
	}
	a, err := newAnalyzer(repos, args)
	if err != nil {
		return err
	}
	defer a.Close()

	ok, ds, err := a.TryInstallAll()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, nevra := range ds.Packages() {
		deps := ds.DependenciesForPackage(nevra)
		sort.Strings(deps)
		fmt.Fprintf(out, "%s has %d dependencies:\n", nevra, len(deps))
		for _, dep := range deps {
			fmt.Fprintf(out, "\t%s\n", dep)
		}
		fmt.Fprintln(out)
	}
	if !ok {
		printProblems(out, "Problems with dependency set:", ds.OverallProblems())
		return errProblemsFound
	}
	return nil
}
