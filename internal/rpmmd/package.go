// Package rpmmd models RPM package metadata as published in yum/dnf
// repository metadata (repomd.xml, primary.xml, filelists.xml) and as read
// from local .rpm headers.
package rpmmd

import (
	"fmt"
	"strconv"
)

// Checksum identifies a package payload for download verification.
type Checksum struct {
	Type string // sha1, sha256, sha512
	Hex  string
}

// Package is one package in the universe. Repo is the name of the
// originating repository; packages added directly from local files carry
// the CommandLineRepo pseudo-repository name and a local filesystem path
// in Location.
type Package struct {
	Name    string
	Epoch   int
	Version string
	Release string
	Arch    string

	Repo     string
	Location string
	Checksum Checksum

	Provides  []Capability
	Requires  []Capability
	Conflicts []Capability
	Obsoletes []Capability

	Files []string
}

// CommandLineRepo is the pseudo-repository name for packages under test.
const CommandLineRepo = "@commandline"

// NEVRA renders the package identity as name-[epoch:]version-release.arch,
// with the epoch elided when zero.
func (p *Package) NEVRA() string {
	if p.Epoch != 0 {
		return fmt.Sprintf("%s-%d:%s-%s.%s", p.Name, p.Epoch, p.Version, p.Release, p.Arch)
	}
	return fmt.Sprintf("%s-%s-%s.%s", p.Name, p.Version, p.Release, p.Arch)
}

// EVR renders [epoch:]version-release, with the epoch elided when zero.
func (p *Package) EVR() string {
	if p.Epoch != 0 {
		return fmt.Sprintf("%d:%s-%s", p.Epoch, p.Version, p.Release)
	}
	return p.Version + "-" + p.Release
}

func (p *Package) String() string {
	return p.NEVRA()
}

// SelfCapability is the implicit "name = epoch:version-release" provide
// every package carries, used for obsoletion and conflict matching.
func (p *Package) SelfCapability() Capability {
	return Capability{
		Name:  p.Name,
		Flags: FlagEqual,
		Epoch: strconv.Itoa(p.Epoch),
		Ver:   p.Version,
		Rel:   p.Release,
	}
}

// OwnsFile reports whether the package declares ownership of path.
func (p *Package) OwnsFile(path string) bool {
	for _, f := range p.Files {
		if f == path {
			return true
		}
	}
	return false
}
