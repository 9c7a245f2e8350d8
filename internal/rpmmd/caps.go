package rpmmd

import (
	"strconv"
	"strings"
)

// Flags is the version-comparison sense of a dependency entry.
type Flags uint8

const (
	FlagLess Flags = 1 << iota
	FlagGreater
	FlagEqual
)

// ParseFlags maps the primary.xml flags attribute to Flags. An empty or
// unknown value means an unversioned entry.
func ParseFlags(s string) Flags {
	switch s {
	case "LT":
		return FlagLess
	case "LE":
		return FlagLess | FlagEqual
	case "GT":
		return FlagGreater
	case "GE":
		return FlagGreater | FlagEqual
	case "EQ":
		return FlagEqual
	}
	return 0
}

// rpm header RPMSENSE_* bits.
const (
	senseLess    = 0x02
	senseGreater = 0x04
	senseEqual   = 0x08
)

// FlagsFromSense maps RPMSENSE bits from a package header to Flags.
func FlagsFromSense(sense int) Flags {
	var f Flags
	if sense&senseLess != 0 {
		f |= FlagLess
	}
	if sense&senseGreater != 0 {
		f |= FlagGreater
	}
	if sense&senseEqual != 0 {
		f |= FlagEqual
	}
	return f
}

func (f Flags) String() string {
	switch f {
	case FlagLess:
		return "<"
	case FlagLess | FlagEqual:
		return "<="
	case FlagGreater:
		return ">"
	case FlagGreater | FlagEqual:
		return ">="
	case FlagEqual:
		return "="
	}
	return ""
}

// Capability is one entry of a provides/requires/conflicts/obsoletes set.
// Epoch, Ver and Rel are kept as strings exactly as published in the
// repository metadata; an entry with zero Flags is unversioned.
type Capability struct {
	Name  string
	Flags Flags
	Epoch string
	Ver   string
	Rel   string
}

// ParseCapability parses a dependency string of the form
// "name [op epoch:version-release]" as found in rpm headers.
func ParseCapability(s string) Capability {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Capability{Name: s}
	}
	cap := Capability{Name: fields[0]}
	switch fields[1] {
	case "<":
		cap.Flags = FlagLess
	case "<=":
		cap.Flags = FlagLess | FlagEqual
	case ">":
		cap.Flags = FlagGreater
	case ">=":
		cap.Flags = FlagGreater | FlagEqual
	case "=":
		cap.Flags = FlagEqual
	default:
		return Capability{Name: s}
	}
	cap.Epoch, cap.Ver, cap.Rel = splitEVR(fields[2])
	return cap
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

// IsVersioned reports whether the entry constrains a version range.
func (c Capability) IsVersioned() bool {
	return c.Flags != 0 && c.Ver != ""
}

// IsFile reports whether the capability is a file requirement.
func (c Capability) IsFile() bool {
	return strings.HasPrefix(c.Name, "/")
}

func (c Capability) evrString() string {
	s := c.Ver
	if c.Epoch != "" && c.Epoch != "0" {
		s = c.Epoch + ":" + s
	}
	if c.Rel != "" {
		s += "-" + c.Rel
	}
	return s
}

// String renders the entry the way rpm prints dependencies, e.g.
// "libfoo >= 1.0-1" or just "libfoo" when unversioned.
func (c Capability) String() string {
	if !c.IsVersioned() {
		return c.Name
	}
	return c.Name + " " + c.Flags.String() + " " + c.evrString()
}

func (c Capability) epochInt() int {
	if c.Epoch == "" {
		return 0
	}
	n, err := strconv.Atoi(c.Epoch)
	if err != nil {
		return 0
	}
	return n
}

// Overlaps implements rpm's dependency range intersection. Entries with
// different names never overlap; if either side is unversioned they always
// overlap.
func (c Capability) Overlaps(other Capability) bool {
	if c.Name != other.Name {
		return false
	}
	if !c.IsVersioned() || !other.IsVersioned() {
		return true
	}
	sense := compareEVRParts(c.epochInt(), c.Ver, c.Rel, other.epochInt(), other.Ver, other.Rel)
	if sense < 0 {
		return c.Flags&FlagGreater != 0 || other.Flags&FlagLess != 0
	}
	if sense > 0 {
		return c.Flags&FlagLess != 0 || other.Flags&FlagGreater != 0
	}
	return c.Flags&other.Flags != 0
}

// MatchesPackage reports whether the entry matches the given package by
// name, as used for obsoletes and conflicts targets.
func (c Capability) MatchesPackage(p *Package) bool {
	return c.Overlaps(p.SelfCapability())
}
