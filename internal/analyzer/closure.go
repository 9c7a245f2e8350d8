package analyzer

import (
	"fmt"

	"github.com/distro-tools/rpmdepgate/internal/logger"
	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
	"github.com/distro-tools/rpmdepgate/internal/solver"
)

// FindRepoClosureProblems verifies that every latest package coming from
// the configured repositories still has all its requirements satisfiable
// among the latest packages. Obsoleted packages are skipped, since they
// are expected to be superseded rather than installable. A requirement
// that is unsatisfiable even with the packages under test excluded is a
// pre-existing repository problem: it is logged and suppressed, because
// it was not caused by the packages being gated.
func (a *Analyzer) FindRepoClosureProblems() []string {
	log := logger.Logger()

	available := a.universe.Query(solver.Query{LatestPerArch: true})
	obsoleted := obsoletedWithin(available)
	availableFromRepos := a.universe.Query(solver.Query{
		RepoNot:       rpmmd.CommandLineRepo,
		LatestPerArch: true,
	})
	obsoletedFromRepos := obsoletedWithin(availableFromRepos)

	underTest := make(map[*rpmmd.Package]bool, len(a.packages))
	for _, p := range a.packages {
		underTest[p] = true
	}

	var problems []string
	for _, pkg := range available {
		if underTest[pkg] {
			// covered by the per-package install check
			continue
		}
		if obsoleted[pkg] {
			log.Debugf("skipping obsoleted package %s", pkg)
			continue
		}
		log.Debugf("checking requires for %s", pkg)
		for _, req := range pkg.Requires {
			if solver.IsRpmlibRequirement(req.Name) {
				continue
			}
			if hasProvider(req, available, obsoleted) {
				continue
			}
			msg := fmt.Sprintf("nothing provides %s needed by %s", req, pkg)
			if !hasProvider(req, availableFromRepos, obsoletedFromRepos) {
				log.Warnf("ignoring pre-existing repoclosure problem: %s", msg)
				continue
			}
			problems = append(problems, msg)
		}
	}
	return problems
}

// obsoletedWithin returns the members of the set that some other member
// of the same set obsoletes.
func obsoletedWithin(members []*rpmmd.Package) map[*rpmmd.Package]bool {
	obsoleted := make(map[*rpmmd.Package]bool)
	for _, pkg := range members {
		for _, other := range members {
			if solver.Obsoletes(other, pkg) {
				obsoleted[pkg] = true
				break
			}
		}
	}
	return obsoleted
}

func hasProvider(req rpmmd.Capability, among []*rpmmd.Package, obsoleted map[*rpmmd.Package]bool) bool {
	for _, p := range among {
		if obsoleted[p] {
			continue
		}
		if solver.Provides(p, req) {
			return true
		}
	}
	return false
}
