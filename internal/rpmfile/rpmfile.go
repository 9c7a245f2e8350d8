// Package rpmfile reads local .rpm package headers with go-rpmutils and
// exposes them in the rpmmd metadata model.
package rpmfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
	"github.com/sassoftware/go-rpmutils"
)

// Header tags for the dependency and file-color arrays, per rpmtag.h.
const (
	tagRequireFlags    = 1048
	tagRequireName     = 1049
	tagRequireVersion  = 1050
	tagConflictFlags   = 1053
	tagConflictName    = 1054
	tagConflictVersion = 1055
	tagObsoleteName    = 1090
	tagProvideFlags    = 1112
	tagProvideName     = 1047
	tagProvideVersion  = 1113
	tagObsoleteFlags   = 1114
	tagObsoleteVersion = 1115
	tagFileColors      = 1140
)

// Load parses the package header at path into a Package. The returned
// package carries the local path in Location and no repository name.
func Load(path string) (*rpmmd.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening package %s: %w", path, err)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("reading package header of %s: %w", path, err)
	}
	hdr := rpm.Header

	nevra, err := hdr.GetNEVRA()
	if err != nil {
		return nil, fmt.Errorf("reading NEVRA of %s: %w", path, err)
	}
	epoch := 0
	if nevra.Epoch != "" {
		if epoch, err = strconv.Atoi(nevra.Epoch); err != nil {
			return nil, fmt.Errorf("bad epoch %q in %s: %w", nevra.Epoch, path, err)
		}
	}

	pkg := &rpmmd.Package{
		Name:     nevra.Name,
		Epoch:    epoch,
		Version:  nevra.Version,
		Release:  nevra.Release,
		Arch:     nevra.Arch,
		Location: path,
	}

	if pkg.Provides, err = depSet(hdr, tagProvideName, tagProvideFlags, tagProvideVersion); err != nil {
		return nil, fmt.Errorf("reading provides of %s: %w", path, err)
	}
	if pkg.Requires, err = depSet(hdr, tagRequireName, tagRequireFlags, tagRequireVersion); err != nil {
		return nil, fmt.Errorf("reading requires of %s: %w", path, err)
	}
	if pkg.Conflicts, err = depSet(hdr, tagConflictName, tagConflictFlags, tagConflictVersion); err != nil {
		return nil, fmt.Errorf("reading conflicts of %s: %w", path, err)
	}
	if pkg.Obsoletes, err = depSet(hdr, tagObsoleteName, tagObsoleteFlags, tagObsoleteVersion); err != nil {
		return nil, fmt.Errorf("reading obsoletes of %s: %w", path, err)
	}

	files, err := hdr.GetFiles()
	if err != nil {
		return nil, fmt.Errorf("reading file list of %s: %w", path, err)
	}
	pkg.Files = make([]string, 0, len(files))
	for _, fi := range files {
		pkg.Files = append(pkg.Files, fi.Name())
	}

	return pkg, nil
}

func depSet(hdr *rpmutils.RpmHeader, nameTag, flagsTag, versionTag int) ([]rpmmd.Capability, error) {
	if !hdr.HasTag(nameTag) {
		return nil, nil
	}
	names, err := hdr.GetStrings(nameTag)
	if err != nil {
		return nil, err
	}
	flags, err := intsOrEmpty(hdr, flagsTag, len(names))
	if err != nil {
		return nil, err
	}
	versions, err := stringsOrEmpty(hdr, versionTag, len(names))
	if err != nil {
		return nil, err
	}

	caps := make([]rpmmd.Capability, 0, len(names))
	for i, name := range names {
		c := rpmmd.Capability{Name: name, Flags: rpmmd.FlagsFromSense(flags[i])}
		if versions[i] != "" {
			c.Epoch, c.Ver, c.Rel = splitEVR(versions[i])
		}
		caps = append(caps, c)
	}
	return caps, nil
}

func splitEVR(evr string) (epoch, ver, rel string) {
	if i := strings.IndexByte(evr, ':'); i >= 0 {
		epoch, evr = evr[:i], evr[i+1:]
	}
	if i := strings.LastIndexByte(evr, '-'); i >= 0 {
		return epoch, evr[:i], evr[i+1:]
	}
	return epoch, evr, ""
}

func intsOrEmpty(hdr *rpmutils.RpmHeader, tag, n int) ([]int, error) {
	if !hdr.HasTag(tag) {
		return make([]int, n), nil
	}
	vals, err := hdr.GetInts(tag)
	if err != nil {
		return nil, err
	}
	if len(vals) < n {
		padded := make([]int, n)
		copy(padded, vals)
		return padded, nil
	}
	return vals, nil
}

func stringsOrEmpty(hdr *rpmutils.RpmHeader, tag, n int) ([]string, error) {
	if !hdr.HasTag(tag) {
		return make([]string, n), nil
	}
	vals, err := hdr.GetStrings(tag)
	if err != nil {
		return nil, err
	}
	if len(vals) < n {
		padded := make([]string, n)
		copy(padded, vals)
		return padded, nil
	}
	return vals, nil
}
