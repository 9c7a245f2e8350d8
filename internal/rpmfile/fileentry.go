package rpmfile

import (
	"fmt"
	"os"

	"github.com/sassoftware/go-rpmutils"
)

// FileEntry is the per-file metadata relevant to file conflict checking:
// the recorded content digest, ownership attributes and the multilib file
// color (0 none, 1 elf32, 2 elf64).
type FileEntry struct {
	Digest   string
	Mode     int
	Linkname string
	Color    int
}

// Matches reports whether two entries record identical file content, in
// which case rpm permits both packages to own the file.
func (e FileEntry) Matches(other FileEntry) bool {
	return e.Digest == other.Digest && e.Mode == other.Mode && e.Linkname == other.Linkname
}

// Reader reads per-file metadata from package headers on disk. The zero
// value is ready to use.
type Reader struct{}

// ReadFile returns the header entry for filename in the package at path.
func (Reader) ReadFile(path, filename string) (FileEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileEntry{}, fmt.Errorf("opening package %s: %w", path, err)
	}
	defer f.Close()

	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return FileEntry{}, fmt.Errorf("reading package header of %s: %w", path, err)
	}
	hdr := rpm.Header

	files, err := hdr.GetFiles()
	if err != nil {
		return FileEntry{}, fmt.Errorf("reading file list of %s: %w", path, err)
	}
	colors, err := intsOrEmpty(hdr, tagFileColors, len(files))
	if err != nil {
		return FileEntry{}, fmt.Errorf("reading file colors of %s: %w", path, err)
	}

	for i, fi := range files {
		if fi.Name() != filename {
			continue
		}
		return FileEntry{
			Digest:   fi.Digest(),
			Mode:     fi.Mode(),
			Linkname: fi.Linkname(),
			Color:    colors[i],
		}, nil
	}
	return FileEntry{}, fmt.Errorf("package %s does not own %s", path, filename)
}
