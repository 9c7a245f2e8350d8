package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
	"go.uber.org/zap"
)

// ProblemKind classifies why an install goal could not be satisfied.
// Callers branch on the kind rather than matching message substrings.
type ProblemKind int

const (
	ProblemNothingProvides ProblemKind = iota
	ProblemPackageConflict
)

// Problem is one reason an install goal failed.
type Problem struct {
	Kind    ProblemKind
	Message string
}

func (p Problem) String() string {
	return p.Message
}

// Result is the outcome of running an install goal. Exactly one of the two
// shapes occurs: Success with the transaction lists populated, or failure
// with Problems populated and the lists empty.
type Result struct {
	Success  bool
	Installs []*rpmmd.Package
	Upgrades []*rpmmd.Package
	Erasures []*rpmmd.Package
	Problems []Problem
}

// ProblemStrings returns the problem messages in order.
func (r Result) ProblemStrings() []string {
	out := make([]string, 0, len(r.Problems))
	for _, p := range r.Problems {
		out = append(out, p.Message)
	}
	return out
}

// HasConflictProblem reports whether any problem is an explicit
// package-level Conflicts declaration.
func (r Result) HasConflictProblem() bool {
	for _, p := range r.Problems {
		if p.Kind == ProblemPackageConflict {
			return true
		}
	}
	return false
}

// Goal accumulates install requests and resolves them against the
// universe, starting from an empty package set.
type Goal struct {
	universe *Universe
	requests []*rpmmd.Package
}

func NewGoal(u *Universe) *Goal {
	return &Goal{universe: u}
}

// Install adds a package to the set of requested installs.
func (g *Goal) Install(p *rpmmd.Package) {
	g.requests = append(g.requests, p)
}

// Run resolves the goal: it walks the requirement closure of the requested
// packages, choosing one provider per unsatisfied requirement, and then
// checks the selected set for explicit Conflicts. Requirements on
// rpmlib(...) pseudo-capabilities describe rpm implementation features and
// are never resolved.
func (g *Goal) Run() Result {
	log := zap.S()

	var (
		order    []*rpmmd.Package
		problems []Problem
	)
	selected := make(map[string]*rpmmd.Package)
	queue := append([]*rpmmd.Package(nil), g.requests...)

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		nevra := p.NEVRA()
		if _, ok := selected[nevra]; ok {
			continue
		}
		selected[nevra] = p
		order = append(order, p)

		for _, req := range p.Requires {
			if IsRpmlibRequirement(req.Name) {
				continue
			}
			if satisfiedBySelected(order, req) {
				continue
			}
			providers := g.universe.Query(Query{Provides: &req, LatestPerArch: true})
			if len(providers) == 0 {
				problems = append(problems, Problem{
					Kind:    ProblemNothingProvides,
					Message: fmt.Sprintf("nothing provides %s needed by %s", req, nevra),
				})
				continue
			}
			best := pickProvider(providers, p)
			log.Debugf("requirement %s of %s satisfied by %s", req, nevra, best)
			queue = append(queue, best)
		}
	}

	problems = append(problems, findSelectedConflicts(order)...)

	if len(problems) > 0 {
		return Result{Problems: problems}
	}
	return Result{Success: true, Installs: order}
}

// IsRpmlibRequirement reports whether the capability name is an internal
// rpm feature pseudo-dependency.
func IsRpmlibRequirement(name string) bool {
	return strings.HasPrefix(name, "rpmlib(")
}

func satisfiedBySelected(selected []*rpmmd.Package, req rpmmd.Capability) bool {
	for _, p := range selected {
		if providesCapability(p, req) {
			return true
		}
	}
	return false
}

// pickProvider chooses one provider deterministically: candidates matching
// the requester's architecture (or noarch) win, then the highest EVR, then
// the lexically smallest name.
func pickProvider(candidates []*rpmmd.Package, requester *rpmmd.Package) *rpmmd.Package {
	var compatible []*rpmmd.Package
	for _, c := range candidates {
		if c.Arch == requester.Arch || c.Arch == "noarch" || requester.Arch == "noarch" {
			compatible = append(compatible, c)
		}
	}
	if len(compatible) == 0 {
		compatible = candidates
	}
	sort.SliceStable(compatible, func(i, j int) bool {
		if c := rpmmd.CompareEVR(compatible[i], compatible[j]); c != 0 {
			return c > 0
		}
		return compatible[i].Name < compatible[j].Name
	})
	return compatible[0]
}

// findSelectedConflicts reports explicit Conflicts declarations between
// any two packages of the selected set.
func findSelectedConflicts(selected []*rpmmd.Package) []Problem {
	var problems []Problem
	for i, a := range selected {
		for _, b := range selected[i+1:] {
			if cap, ok := conflictBetween(a, b); ok {
				problems = append(problems, Problem{
					Kind:    ProblemPackageConflict,
					Message: fmt.Sprintf("package %s conflicts with %s provided by %s", a, cap, b),
				})
			}
		}
	}
	return problems
}

func conflictBetween(a, b *rpmmd.Package) (rpmmd.Capability, bool) {
	for _, c := range a.Conflicts {
		if conflictApplies(c, b) {
			return c, true
		}
	}
	for _, c := range b.Conflicts {
		if conflictApplies(c, a) {
			return c, true
		}
	}
	return rpmmd.Capability{}, false
}

// conflictApplies matches a Conflicts entry against a package's name and
// its declared provides.
func conflictApplies(c rpmmd.Capability, p *rpmmd.Package) bool {
	if c.MatchesPackage(p) {
		return true
	}
	for _, prov := range p.Provides {
		if prov.Overlaps(c) {
			return true
		}
	}
	return false
}
