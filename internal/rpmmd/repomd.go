package rpmmd

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Repomd is the parsed /repodata/repomd.xml index:
//
//	<repomd>
//	    <revision>1485854918</revision>
//	    <data type="primary">...</data>
//	    <data type="filelists">...</data>
//	</repomd>
type Repomd struct {
	Revision string       `xml:"revision"`
	Data     []RepomdData `xml:"data"`
}

// RepomdData is one <data> section:
//
//	<data type="primary">
//	    <checksum type="sha256">dabe2ce...</checksum>
//	    <location href="repodata/dabe2ce...-primary.xml.gz"/>
//	</data>
type RepomdData struct {
	Type     string       `xml:"type,attr"`
	Checksum XMLChecksum  `xml:"checksum"`
	Location headLocation `xml:"location"`
}

// XMLChecksum is a <checksum type="sha256">hex</checksum> element.
type XMLChecksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type headLocation struct {
	Href string `xml:"href,attr"`
}

// ParseRepomd decodes a repomd.xml document.
func ParseRepomd(r io.Reader) (*Repomd, error) {
	var md Repomd
	if err := xml.NewDecoder(r).Decode(&md); err != nil {
		return nil, fmt.Errorf("parsing repomd.xml: %w", err)
	}
	return &md, nil
}

// Location returns the href of the metadata payload of the given type
// (e.g. "primary", "filelists"), or an error if the index lacks it.
func (md *Repomd) Location(dataType string) (string, error) {
	for _, d := range md.Data {
		if d.Type == dataType {
			if d.Location.Href == "" {
				return "", fmt.Errorf("repomd.xml entry %q has no location", dataType)
			}
			return d.Location.Href, nil
		}
	}
	return "", fmt.Errorf("repomd.xml has no %q entry", dataType)
}
