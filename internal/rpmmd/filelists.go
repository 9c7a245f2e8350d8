package rpmmd

import (
	"encoding/xml"
	"fmt"
	"io"
)

// filelistsRoot is the <filelists> root of filelists.xml.
type filelistsRoot struct {
	Packages []filelistsPackage `xml:"package"`
}

type filelistsPackage struct {
	PkgID   string           `xml:"pkgid,attr"`
	Name    string           `xml:"name,attr"`
	Arch    string           `xml:"arch,attr"`
	Version versionElement   `xml:"version"`
	Files   []filelistsEntry `xml:"file"`
}

type filelistsEntry struct {
	Type string `xml:"type,attr"` // "", "dir" or "ghost"
	Path string `xml:",chardata"`
}

// ParseFilelists decodes a filelists.xml document into a map from package
// checksum (pkgid) to the package's complete file list.
func ParseFilelists(r io.Reader) (map[string][]string, error) {
	var root filelistsRoot
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("parsing filelists.xml: %w", err)
	}

	files := make(map[string][]string, len(root.Packages))
	for _, fp := range root.Packages {
		paths := make([]string, 0, len(fp.Files))
		for _, f := range fp.Files {
			paths = append(paths, f.Path)
		}
		files[fp.PkgID] = paths
	}
	return files, nil
}

// MergeFilelists replaces each package's abbreviated primary.xml file list
// with the complete list keyed by package checksum. Packages without a
// filelists entry keep their primary.xml files.
func MergeFilelists(pkgs []*Package, files map[string][]string) {
	for _, p := range pkgs {
		if full, ok := files[p.Checksum.Hex]; ok {
			p.Files = full
		}
	}
}
