package analyzer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
)

func testPkg(name, version, release, arch, repo string) *rpmmd.Package {
	return &rpmmd.Package{Name: name, Version: version, Release: release, Arch: arch, Repo: repo}
}

func TestAddPackageWithoutProblems(t *testing.T) {
	ds := NewDependencySet()
	pkg := testPkg("bar", "1.0", "1", "x86_64", rpmmd.CommandLineRepo)
	dep := testPkg("libfoo", "1.0", "1", "x86_64", "base")

	ds.AddPackage(pkg, pkg.Repo, []*rpmmd.Package{dep}, nil)

	if got := ds.Packages(); !reflect.DeepEqual(got, []string{"bar-1.0-1.x86_64"}) {
		t.Errorf("Packages = %v", got)
	}
	if got := ds.PackagesWithProblems(); len(got) != 0 {
		t.Errorf("PackagesWithProblems = %v, want empty", got)
	}
	if got := ds.OverallProblems(); len(got) != 0 {
		t.Errorf("OverallProblems = %v, want empty", got)
	}
	if got := ds.DependenciesForPackage("bar-1.0-1.x86_64"); !reflect.DeepEqual(got, []string{"libfoo-1.0-1.x86_64"}) {
		t.Errorf("DependenciesForPackage = %v", got)
	}
}

func TestAddPackageAccumulatesProblems(t *testing.T) {
	ds := NewDependencySet()
	pkg := testPkg("bar", "1.0", "1", "x86_64", rpmmd.CommandLineRepo)

	ds.AddPackage(pkg, pkg.Repo, nil, []string{"problem a"})
	ds.AddPackage(pkg, pkg.Repo, nil, []string{"problem b"})

	deps := ds.PackageDependencies()
	r, ok := deps["bar-1.0-1.x86_64"]
	if !ok {
		t.Fatal("package missing from result map")
	}
	if !reflect.DeepEqual(r.Problems, []string{"problem a", "problem b"}) {
		t.Errorf("Problems = %v, want accumulation", r.Problems)
	}
	if got := ds.OverallProblems(); !reflect.DeepEqual(got, []string{"problem a", "problem b"}) {
		t.Errorf("OverallProblems = %v", got)
	}
	if got := ds.Packages(); len(got) != 1 {
		t.Errorf("re-adding must not duplicate the package, got %v", got)
	}
}

func TestAddPackageReplacesDependencies(t *testing.T) {
	ds := NewDependencySet()
	pkg := testPkg("bar", "1.0", "1", "x86_64", rpmmd.CommandLineRepo)
	dep1 := testPkg("libfoo", "1.0", "1", "x86_64", "base")
	dep2 := testPkg("libbaz", "1.0", "1", "x86_64", "base")

	ds.AddPackage(pkg, pkg.Repo, []*rpmmd.Package{dep1}, nil)
	ds.AddPackage(pkg, pkg.Repo, []*rpmmd.Package{dep2}, nil)

	got := ds.DependenciesForPackage("bar-1.0-1.x86_64")
	if !reflect.DeepEqual(got, []string{"libbaz-1.0-1.x86_64"}) {
		t.Errorf("Dependencies = %v, want replacement by last call", got)
	}
}

func TestOverallProblemsDeduplicated(t *testing.T) {
	ds := NewDependencySet()
	a := testPkg("a", "1.0", "1", "x86_64", rpmmd.CommandLineRepo)
	b := testPkg("b", "1.0", "1", "x86_64", rpmmd.CommandLineRepo)

	ds.AddPackage(a, a.Repo, nil, []string{"shared problem"})
	ds.AddPackage(b, b.Repo, nil, []string{"shared problem"})

	if got := ds.OverallProblems(); !reflect.DeepEqual(got, []string{"shared problem"}) {
		t.Errorf("OverallProblems = %v, want a single entry", got)
	}
	if got := ds.PackagesWithProblems(); len(got) != 2 {
		t.Errorf("PackagesWithProblems = %v", got)
	}
}

func TestRepositoryEdges(t *testing.T) {
	ds := NewDependencySet()
	pkg := testPkg("bar", "1.0", "1", "x86_64", rpmmd.CommandLineRepo)
	depBase := testPkg("libfoo", "1.0", "1", "x86_64", "base")
	depUpdates := testPkg("libbaz", "1.0", "1", "x86_64", "updates")

	ds.AddPackage(pkg, pkg.Repo, []*rpmmd.Package{depBase, depUpdates}, nil)

	edges := ds.RepositoryDependencies()
	if !reflect.DeepEqual(edges[rpmmd.CommandLineRepo], []string{"base", "updates"}) {
		t.Errorf("edges = %v", edges)
	}
	if got := ds.DependenciesForRepository("base"); len(got) != 0 {
		t.Errorf("unknown repo should have no edges, got %v", got)
	}

	repo, err := ds.RepositoryForPackage("bar-1.0-1.x86_64")
	if err != nil || repo != rpmmd.CommandLineRepo {
		t.Errorf("RepositoryForPackage = %q, %v", repo, err)
	}
}

func TestRepositoryForUnknownPackage(t *testing.T) {
	ds := NewDependencySet()
	_, err := ds.RepositoryForPackage("ghost-1.0-1.noarch")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.NEVRA != "ghost-1.0-1.noarch" {
		t.Errorf("NotFoundError.NEVRA = %q", nf.NEVRA)
	}
}
