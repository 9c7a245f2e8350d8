package rpmmd

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// primaryMetadata is the <metadata> root of primary.xml.
type primaryMetadata struct {
	PackageCount int              `xml:"packages,attr"`
	Packages     []primaryPackage `xml:"package"`
}

type primaryPackage struct {
	Type     string         `xml:"type,attr"`
	Name     string         `xml:"name"`
	Arch     string         `xml:"arch"`
	Version  versionElement `xml:"version"`
	Checksum XMLChecksum    `xml:"checksum"`
	Location headLocation   `xml:"location"`
	Format   formatElement  `xml:"format"`
}

type versionElement struct {
	Epoch string `xml:"epoch,attr"`
	Ver   string `xml:"ver,attr"`
	Rel   string `xml:"rel,attr"`
}

type formatElement struct {
	Provides  depList  `xml:"http://linux.duke.edu/metadata/rpm provides"`
	Requires  depList  `xml:"http://linux.duke.edu/metadata/rpm requires"`
	Conflicts depList  `xml:"http://linux.duke.edu/metadata/rpm conflicts"`
	Obsoletes depList  `xml:"http://linux.duke.edu/metadata/rpm obsoletes"`
	Files     []string `xml:"file"`
}

type depList struct {
	Entries []depEntry `xml:"http://linux.duke.edu/metadata/rpm entry"`
}

type depEntry struct {
	Name  string `xml:"name,attr"`
	Flags string `xml:"flags,attr"`
	Epoch string `xml:"epoch,attr"`
	Ver   string `xml:"ver,attr"`
	Rel   string `xml:"rel,attr"`
}

func (l depList) capabilities() []Capability {
	if len(l.Entries) == 0 {
		return nil
	}
	caps := make([]Capability, 0, len(l.Entries))
	for _, e := range l.Entries {
		caps = append(caps, Capability{
			Name:  e.Name,
			Flags: ParseFlags(e.Flags),
			Epoch: e.Epoch,
			Ver:   e.Ver,
			Rel:   e.Rel,
		})
	}
	return caps
}

// ParsePrimary decodes a primary.xml document into packages. The file list
// in primary.xml is abbreviated; merge the full list in with
// MergeFilelists before relying on file ownership queries.
func ParsePrimary(r io.Reader) ([]*Package, error) {
	var md primaryMetadata
	if err := xml.NewDecoder(r).Decode(&md); err != nil {
		return nil, fmt.Errorf("parsing primary.xml: %w", err)
	}

	pkgs := make([]*Package, 0, len(md.Packages))
	for _, pp := range md.Packages {
		epoch, err := strconv.Atoi(pp.Version.Epoch)
		if err != nil && pp.Version.Epoch != "" {
			return nil, fmt.Errorf("package %s: bad epoch %q", pp.Name, pp.Version.Epoch)
		}
		pkg := &Package{
			Name:      pp.Name,
			Epoch:     epoch,
			Version:   pp.Version.Ver,
			Release:   pp.Version.Rel,
			Arch:      pp.Arch,
			Location:  pp.Location.Href,
			Checksum:  Checksum{Type: pp.Checksum.Type, Hex: pp.Checksum.Value},
			Provides:  pp.Format.Provides.capabilities(),
			Requires:  pp.Format.Requires.capabilities(),
			Conflicts: pp.Format.Conflicts.capabilities(),
			Obsoletes: pp.Format.Obsoletes.capabilities(),
			Files:     pp.Format.Files,
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}
