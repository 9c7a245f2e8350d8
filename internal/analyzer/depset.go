package analyzer

import (
	"sort"

	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
)

// PackageResult is what the analysis recorded for one tested package: the
// dependencies its install transaction pulled in and any problems found.
type PackageResult struct {
	Dependencies []string
	Problems     []string
}

// DependencySet accumulates per-package install results across one
// whole-universe check. It is created fresh per run, populated with one
// AddPackage call per tested package, and read back through the
// accessors.
type DependencySet struct {
	packageDeps          map[string]*PackageResult
	packageOrder         []string
	packagesWithProblems map[string]bool
	overallProblems      map[string]bool
	repoDeps             map[string]map[string]bool
	repoPackages         map[string]map[string]bool
	packageRepo          map[string]string
}

func NewDependencySet() *DependencySet {
	return &DependencySet{
		packageDeps:          make(map[string]*PackageResult),
		packagesWithProblems: make(map[string]bool),
		overallProblems:      make(map[string]bool),
		repoDeps:             make(map[string]map[string]bool),
		repoPackages:         make(map[string]map[string]bool),
		packageRepo:          make(map[string]string),
	}
}

func (ds *DependencySet) result(nevra string) *PackageResult {
	r, ok := ds.packageDeps[nevra]
	if !ok {
		r = &PackageResult{}
		ds.packageDeps[nevra] = r
		ds.packageOrder = append(ds.packageOrder, nevra)
	}
	return r
}

// AddPackage records one package's install outcome. The dependency list
// replaces any previous one for the same package, while problems
// accumulate across calls. The repository edge set of repoName gains the
// repositories that contributed dependencies.
func (ds *DependencySet) AddPackage(pkg *rpmmd.Package, repoName string, dependencies []*rpmmd.Package, problems []string) {
	nevra := pkg.NEVRA()
	r := ds.result(nevra)

	r.Dependencies = make([]string, 0, len(dependencies))
	edges := ds.repoDeps[repoName]
	if edges == nil {
		edges = make(map[string]bool)
		ds.repoDeps[repoName] = edges
	}
	for _, dep := range dependencies {
		r.Dependencies = append(r.Dependencies, dep.NEVRA())
		edges[dep.Repo] = true
	}

	pkgs := ds.repoPackages[repoName]
	if pkgs == nil {
		pkgs = make(map[string]bool)
		ds.repoPackages[repoName] = pkgs
	}
	pkgs[nevra] = true
	ds.packageRepo[nevra] = repoName

	if len(problems) != 0 {
		r.Problems = append(r.Problems, problems...)
		ds.packagesWithProblems[nevra] = true
		for _, p := range problems {
			ds.overallProblems[p] = true
		}
	}
}

// Packages lists the tracked package identities in insertion order.
func (ds *DependencySet) Packages() []string {
	return append([]string(nil), ds.packageOrder...)
}

// OverallProblems lists every distinct problem string across all
// packages, sorted.
func (ds *DependencySet) OverallProblems() []string {
	return sortedKeys(ds.overallProblems)
}

// PackagesWithProblems lists the packages that recorded at least one
// problem, sorted.
func (ds *DependencySet) PackagesWithProblems() []string {
	return sortedKeys(ds.packagesWithProblems)
}

// PackageDependencies returns the full per-package result map.
func (ds *DependencySet) PackageDependencies() map[string]PackageResult {
	out := make(map[string]PackageResult, len(ds.packageDeps))
	for nevra, r := range ds.packageDeps {
		out[nevra] = PackageResult{
			Dependencies: append([]string(nil), r.Dependencies...),
			Problems:     append([]string(nil), r.Problems...),
		}
	}
	return out
}

// RepositoryDependencies maps each repository to the repositories whose
// packages its installs pulled in.
func (ds *DependencySet) RepositoryDependencies() map[string][]string {
	out := make(map[string][]string, len(ds.repoDeps))
	for repo, deps := range ds.repoDeps {
		out[repo] = sortedKeys(deps)
	}
	return out
}

// RepositoryForPackage returns the repository a package was recorded
// under, or a NotFoundError for an untracked package.
func (ds *DependencySet) RepositoryForPackage(nevra string) (string, error) {
	repo, ok := ds.packageRepo[nevra]
	if !ok {
		return "", &NotFoundError{NEVRA: nevra}
	}
	return repo, nil
}

// DependenciesForPackage returns the recorded dependency identities of a
// package; unknown packages yield an empty list.
func (ds *DependencySet) DependenciesForPackage(nevra string) []string {
	if r, ok := ds.packageDeps[nevra]; ok {
		return append([]string(nil), r.Dependencies...)
	}
	return nil
}

// DependenciesForRepository returns the repositories the named repository
// depends on; unknown repositories yield an empty list.
func (ds *DependencySet) DependenciesForRepository(repoName string) []string {
	return sortedKeys(ds.repoDeps[repoName])
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
