package analyzer

import (
	"fmt"

	"github.com/distro-tools/rpmdepgate/internal/logger"
	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
	"github.com/distro-tools/rpmdepgate/internal/solver"
)

// FindConflicts finds undeclared file conflicts between the packages
// under test and the latest packages owning the same paths. Co-ownership
// is permitted when the packages declare an explicit Conflicts
// relationship, when the file entries record identical content, or when
// the file colors differ (a multilib 32/64-bit pair).
func (a *Analyzer) FindConflicts() ([]string, error) {
	log := logger.Logger()

	var problems []string
	for _, pkg := range a.packages {
		for _, filename := range pkg.Files {
			for _, conflicting := range a.universe.Query(solver.Query{File: filename, LatestPerArch: true}) {
				if conflicting == pkg {
					continue
				}
				if a.packagesHaveExplicitConflict(pkg, conflicting) {
					continue
				}
				log.Debugf("considering conflict on %s with %s", filename, conflicting)
				permitted, err := a.fileConflictIsPermitted(pkg, conflicting, filename)
				if err != nil {
					return nil, err
				}
				if !permitted {
					problems = append(problems, fmt.Sprintf("%s provides %s which is also provided by %s",
						pkg, filename, conflicting))
				}
			}
		}
	}
	return problems, nil
}

// packagesHaveExplicitConflict reports whether the two packages declare
// an RPM-level Conflicts relationship, determined by solving their joint
// installation and checking for a package-conflict problem.
func (a *Analyzer) packagesHaveExplicitConflict(left, right *rpmmd.Package) bool {
	g := solver.NewGoal(a.universe)
	g.Install(left)
	g.Install(right)
	res := g.Run()
	if res.HasConflictProblem() {
		logger.Logger().Debugf("found explicit Conflicts between %s and %s", left, right)
		return true
	}
	return false
}

// fileConflictIsPermitted reports whether rpm would allow both packages
// to own filename: either the recorded file entries match, or their
// colors differ.
func (a *Analyzer) fileConflictIsPermitted(left, right *rpmmd.Package, filename string) (bool, error) {
	log := logger.Logger()

	leftPath, err := a.DownloadPackage(left)
	if err != nil {
		return false, err
	}
	rightPath, err := a.DownloadPackage(right)
	if err != nil {
		return false, err
	}

	leftEntry, err := a.headers.ReadFile(leftPath, filename)
	if err != nil {
		return false, err
	}
	rightEntry, err := a.headers.ReadFile(rightPath, filename)
	if err != nil {
		return false, err
	}

	if leftEntry.Matches(rightEntry) {
		log.Debugf("conflict on %s between %s and %s permitted because files match",
			filename, left, right)
		return true, nil
	}
	if leftEntry.Color != rightEntry.Color {
		log.Debugf("conflict on %s between %s and %s permitted because colors differ",
			filename, left, right)
		return true, nil
	}
	return false, nil
}
