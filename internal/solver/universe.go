// Package solver holds the loaded package universe, its query interface
// and the install-goal resolution used by the dependency analyses.
package solver

import (
	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
)

// Universe is the full set of packages visible to an analysis: everything
// loaded from the configured repositories plus the packages under test.
// It is built once and never mutated during analysis.
type Universe struct {
	packages []*rpmmd.Package
	byNEVRA  map[string]*rpmmd.Package
}

func NewUniverse() *Universe {
	return &Universe{byNEVRA: make(map[string]*rpmmd.Package)}
}

// AddRepoPackages adds packages loaded from the named repository,
// stamping the repository name on each.
func (u *Universe) AddRepoPackages(repoName string, pkgs []*rpmmd.Package) {
	for _, p := range pkgs {
		p.Repo = repoName
		u.add(p)
	}
}

// AddCommandLinePackage adds a package under test, read from a local file.
func (u *Universe) AddCommandLinePackage(p *rpmmd.Package) {
	p.Repo = rpmmd.CommandLineRepo
	u.add(p)
}

func (u *Universe) add(p *rpmmd.Package) {
	u.packages = append(u.packages, p)
	u.byNEVRA[p.NEVRA()] = p
}

// Contains reports whether the exact package instance was loaded into the
// universe.
func (u *Universe) Contains(p *rpmmd.Package) bool {
	return u.byNEVRA[p.NEVRA()] == p
}

// Size returns the number of loaded packages.
func (u *Universe) Size() int {
	return len(u.packages)
}
