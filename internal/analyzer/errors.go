package analyzer

import "fmt"

// RepositoryLoadError means a repository's metadata could not be fetched
// or parsed. It is fatal to Analyzer construction.
type RepositoryLoadError struct {
	Repo string
	Err  error
}

func (e *RepositoryLoadError) Error() string {
	return fmt.Sprintf("loading repository %s: %v", e.Repo, e.Err)
}

func (e *RepositoryLoadError) Unwrap() error { return e.Err }

// PackageLoadError means a local package under test could not be read.
// It is fatal to Analyzer construction.
type PackageLoadError struct {
	Path string
	Err  error
}

func (e *PackageLoadError) Error() string {
	return fmt.Sprintf("loading package %s: %v", e.Path, e.Err)
}

func (e *PackageLoadError) Unwrap() error { return e.Err }

// InvalidPackageError means an install was requested for a package that
// was never loaded into the universe.
type InvalidPackageError struct {
	NEVRA string
}

func (e *InvalidPackageError) Error() string {
	return fmt.Sprintf("package %s is not in the loaded universe", e.NEVRA)
}

// NotFoundError means a lookup referenced a package the result set does
// not track.
type NotFoundError struct {
	NEVRA string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("package %s not found", e.NEVRA)
}
