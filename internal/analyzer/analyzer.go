// Package analyzer checks candidate packages against a set of
// repositories for dependency satisfiability, repository closure, file
// conflicts and upgrade shadowing.
package analyzer

import (
	"fmt"

	"github.com/distro-tools/rpmdepgate/internal/logger"
	"github.com/distro-tools/rpmdepgate/internal/rpmfile"
	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
	"github.com/distro-tools/rpmdepgate/internal/solver"
)

// Repository is the repository access contract the analyzer consumes.
// *repo.Handle implements it.
type Repository interface {
	Name() string
	FetchMetadata() error
	Packages() ([]*rpmmd.Package, error)
	CleanupCache()
	DownloadPackage(location, checksumType, checksumHex string) (string, error)
}

// HeaderReader reads per-file metadata from a package on disk, used only
// by file conflict detection. rpmfile.Reader implements it.
type HeaderReader interface {
	ReadFile(packagePath, filename string) (rpmfile.FileEntry, error)
}

// Analyzer owns a package universe built from the given repositories and
// the packages under test, and runs the individual analyses against it.
// Construction acquires every repository's metadata cache; Close releases
// them and must be called on every path once construction succeeded.
type Analyzer struct {
	universe  *solver.Universe
	repos     map[string]Repository
	repoOrder []string
	packages  []*rpmmd.Package
	headers   HeaderReader
	closed    bool
}

// New builds an analyzer from repository handles and local paths of the
// packages under test. Repository metadata is fetched eagerly; a failure
// releases the caches acquired so far and surfaces as a
// RepositoryLoadError or PackageLoadError.
func New(repos []Repository, packagePaths []string) (*Analyzer, error) {
	a := &Analyzer{
		universe: solver.NewUniverse(),
		repos:    make(map[string]Repository, len(repos)),
		headers:  rpmfile.Reader{},
	}

	for _, r := range repos {
		if err := r.FetchMetadata(); err != nil {
			r.CleanupCache()
			a.Close()
			return nil, &RepositoryLoadError{Repo: r.Name(), Err: err}
		}
		a.repos[r.Name()] = r
		a.repoOrder = append(a.repoOrder, r.Name())

		pkgs, err := r.Packages()
		if err != nil {
			a.Close()
			return nil, &RepositoryLoadError{Repo: r.Name(), Err: err}
		}
		a.universe.AddRepoPackages(r.Name(), pkgs)
	}

	for _, path := range packagePaths {
		pkg, err := rpmfile.Load(path)
		if err != nil {
			a.Close()
			return nil, &PackageLoadError{Path: path, Err: err}
		}
		a.universe.AddCommandLinePackage(pkg)
		a.packages = append(a.packages, pkg)
	}

	return a, nil
}

// NewWithUniverse builds an analyzer over an externally prepared universe.
// The packages under test must already be loaded into the universe as
// command line packages.
func NewWithUniverse(u *solver.Universe, packagesUnderTest []*rpmmd.Package, repos map[string]Repository, headers HeaderReader) *Analyzer {
	a := &Analyzer{
		universe: u,
		repos:    repos,
		packages: packagesUnderTest,
		headers:  headers,
	}
	if a.repos == nil {
		a.repos = make(map[string]Repository)
	}
	for name := range a.repos {
		a.repoOrder = append(a.repoOrder, name)
	}
	if a.headers == nil {
		a.headers = rpmfile.Reader{}
	}
	return a
}

// Close releases every repository's metadata cache. Calling it more than
// once is safe; cleanup failures are logged inside the handles and never
// surface here.
func (a *Analyzer) Close() {
	if a.closed {
		return
	}
	a.closed = true
	for _, name := range a.repoOrder {
		a.repos[name].CleanupCache()
	}
}

// PackagesUnderTest returns the packages under test in load order.
func (a *Analyzer) PackagesUnderTest() []*rpmmd.Package {
	return a.packages
}

// TryInstall solves the goal of installing the given packages together,
// starting from an empty package set. An unsatisfiable goal is a normal
// (false, result) outcome; only a package missing from the universe is an
// error.
func (a *Analyzer) TryInstall(packages ...*rpmmd.Package) (bool, *solver.Result, error) {
	for _, p := range packages {
		if !a.universe.Contains(p) {
			return false, nil, &InvalidPackageError{NEVRA: p.NEVRA()}
		}
	}
	g := solver.NewGoal(a.universe)
	for _, p := range packages {
		g.Install(p)
	}
	res := g.Run()
	return res.Success, &res, nil
}

// TryInstallAll solves an independent install goal per package under test
// and folds the outcomes into a DependencySet, so one package's
// unsatisfiability does not hide problems of the others. The boolean is
// true iff no package recorded a problem.
func (a *Analyzer) TryInstallAll() (bool, *DependencySet, error) {
	log := logger.Logger()

	ds := NewDependencySet()
	for _, pkg := range a.packages {
		log.Debugf("solving install goal for %s", pkg)
		_, res, err := a.TryInstall(pkg)
		if err != nil {
			return false, nil, err
		}
		ds.AddPackage(pkg, pkg.Repo, res.Installs, res.ProblemStrings())
	}
	return len(ds.OverallProblems()) == 0, ds, nil
}

// DownloadPackage makes the package's payload available locally: packages
// under test are already on disk, repository packages are downloaded
// through their handle (once, then reused from the cache).
func (a *Analyzer) DownloadPackage(p *rpmmd.Package) (string, error) {
	if p.Repo == rpmmd.CommandLineRepo {
		return p.Location, nil
	}
	r, ok := a.repos[p.Repo]
	if !ok {
		return "", fmt.Errorf("no repository handle for %s (repo %s)", p.NEVRA(), p.Repo)
	}
	return r.DownloadPackage(p.Location, p.Checksum.Type, p.Checksum.Hex)
}

// FindPackagesNamed returns the latest packages with the given name.
func (a *Analyzer) FindPackagesNamed(name string) []*rpmmd.Package {
	return a.universe.Query(solver.Query{Name: name, LatestPerArch: true})
}

// FindPackagesThatRequire returns the latest packages requiring the named
// capability.
func (a *Analyzer) FindPackagesThatRequire(name string) []*rpmmd.Package {
	return a.universe.Query(solver.Query{Requires: name, LatestPerArch: true})
}

// FindPackageWithNEVRA returns the package with the exact identity, or
// nil if the universe has none.
func (a *Analyzer) FindPackageWithNEVRA(nevra string) *rpmmd.Package {
	matches := a.universe.Query(solver.Query{NEVRA: nevra})
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// ListLatestPackages returns the latest package per name and architecture
// across the whole universe.
func (a *Analyzer) ListLatestPackages() []*rpmmd.Package {
	return a.universe.Query(solver.Query{LatestPerArch: true})
}
