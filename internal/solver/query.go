package solver

import (
	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
)

// Query is a conjunctive package filter. Zero-valued fields do not
// constrain the result. LatestPerArch is applied after all other
// predicates and keeps, per (name, arch) pair, only the packages with the
// highest epoch:version-release.
type Query struct {
	Name  string
	Arch  string
	NEVRA string
	File  string

	// Provides selects packages satisfying the capability, including by
	// file ownership for file requirements and by implicit self-provide.
	Provides *rpmmd.Capability

	// Requires selects packages with a requirement on the named capability.
	Requires string

	// Obsoletes selects packages declaring an obsoletion matching the
	// given package.
	Obsoletes *rpmmd.Package

	// EVRGreaterThan selects packages with a strictly higher EVR than the
	// given package (no name constraint of its own).
	EVRGreaterThan *rpmmd.Package

	Repo    string
	RepoNot string

	LatestPerArch bool
}

// Query returns the packages matching q, in universe load order.
func (u *Universe) Query(q Query) []*rpmmd.Package {
	var out []*rpmmd.Package
	for _, p := range u.packages {
		if q.matches(p) {
			out = append(out, p)
		}
	}
	if q.LatestPerArch {
		out = latestPerArch(out)
	}
	return out
}

func (q Query) matches(p *rpmmd.Package) bool {
	if q.Name != "" && p.Name != q.Name {
		return false
	}
	if q.Arch != "" && p.Arch != q.Arch {
		return false
	}
	if q.NEVRA != "" && p.NEVRA() != q.NEVRA {
		return false
	}
	if q.File != "" && !p.OwnsFile(q.File) {
		return false
	}
	if q.Provides != nil && !providesCapability(p, *q.Provides) {
		return false
	}
	if q.Requires != "" && !requiresCapability(p, q.Requires) {
		return false
	}
	if q.Obsoletes != nil && !obsoletesPackage(p, q.Obsoletes) {
		return false
	}
	if q.EVRGreaterThan != nil && rpmmd.CompareEVR(p, q.EVRGreaterThan) <= 0 {
		return false
	}
	if q.Repo != "" && p.Repo != q.Repo {
		return false
	}
	if q.RepoNot != "" && p.Repo == q.RepoNot {
		return false
	}
	return true
}

// Provides reports whether p satisfies the capability, including by file
// ownership and by implicit self-provide. Use it to test membership in an
// already materialized package set, where re-querying the universe would
// bypass the set's own filtering.
func Provides(p *rpmmd.Package, c rpmmd.Capability) bool {
	return providesCapability(p, c)
}

// Obsoletes reports whether p declares an obsoletion matching target.
func Obsoletes(p, target *rpmmd.Package) bool {
	return obsoletesPackage(p, target)
}

func providesCapability(p *rpmmd.Package, c rpmmd.Capability) bool {
	if c.IsFile() {
		return p.OwnsFile(c.Name)
	}
	if c.Overlaps(p.SelfCapability()) {
		return true
	}
	for _, prov := range p.Provides {
		if prov.Overlaps(c) {
			return true
		}
	}
	return false
}

func requiresCapability(p *rpmmd.Package, name string) bool {
	for _, req := range p.Requires {
		if req.Name == name {
			return true
		}
	}
	return false
}

func obsoletesPackage(p *rpmmd.Package, target *rpmmd.Package) bool {
	if p == target {
		return false
	}
	for _, obs := range p.Obsoletes {
		if obs.MatchesPackage(target) {
			return true
		}
	}
	return false
}

// latestPerArch keeps, for each (name, arch) pair, the packages sharing
// the highest EVR. Ties are all kept.
func latestPerArch(pkgs []*rpmmd.Package) []*rpmmd.Package {
	best := make(map[string]*rpmmd.Package)
	for _, p := range pkgs {
		key := p.Name + "." + p.Arch
		if cur, ok := best[key]; !ok || rpmmd.CompareEVR(p, cur) > 0 {
			best[key] = p
		}
	}
	var out []*rpmmd.Package
	for _, p := range pkgs {
		if rpmmd.CompareEVR(p, best[p.Name+"."+p.Arch]) == 0 {
			out = append(out, p)
		}
	}
	return out
}
