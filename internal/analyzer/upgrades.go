package analyzer

import (
	"fmt"

	"github.com/distro-tools/rpmdepgate/internal/solver"
)

// FindUpgradeProblems checks whether anything already in the repositories
// would upgrade or obsolete a package under test the moment it is
// published. Every match is reported; there is no suppression.
func (a *Analyzer) FindUpgradeProblems() []string {
	var problems []string
	for _, pkg := range a.packages {
		for _, newer := range a.universe.Query(solver.Query{
			Name:           pkg.Name,
			Arch:           pkg.Arch,
			EVRGreaterThan: pkg,
		}) {
			problems = append(problems, fmt.Sprintf("%s would be upgraded by %s from repo %s",
				pkg, newer, newer.Repo))
		}
		for _, obsoleting := range a.universe.Query(solver.Query{Obsoletes: pkg}) {
			problems = append(problems, fmt.Sprintf("%s would be obsoleted by %s from repo %s",
				pkg, obsoleting, obsoleting.Repo))
		}
	}
	return problems
}
