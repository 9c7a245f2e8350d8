package repo

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

const testPrimary = `<?xml version="1.0" encoding="UTF-8"?>
<metadata xmlns="http://linux.duke.edu/metadata/common" xmlns:rpm="http://linux.duke.edu/metadata/rpm" packages="1">
  <package type="rpm">
    <name>libfoo</name>
    <arch>x86_64</arch>
    <version epoch="0" ver="1.0" rel="1"/>
    <checksum type="sha256" pkgid="YES">aaaa1111</checksum>
    <location href="packages/libfoo-1.0-1.x86_64.rpm"/>
    <format>
      <rpm:provides>
        <rpm:entry name="libfoo.so"/>
      </rpm:provides>
    </format>
  </package>
</metadata>`

const testFilelists = `<?xml version="1.0" encoding="UTF-8"?>
<filelists xmlns="http://linux.duke.edu/metadata/filelists" packages="1">
  <package pkgid="aaaa1111" name="libfoo" arch="x86_64">
    <version epoch="0" ver="1.0" rel="1"/>
    <file>/usr/lib64/libfoo.so</file>
  </package>
</filelists>`

const testRepomd = `<?xml version="1.0" encoding="UTF-8"?>
<repomd xmlns="http://linux.duke.edu/metadata/repo">
  <revision>1</revision>
  <data type="primary">
    <checksum type="sha256">x</checksum>
    <location href="repodata/primary.xml.gz"/>
  </data>
  <data type="filelists">
    <checksum type="sha256">x</checksum>
    <location href="repodata/filelists.xml.gz"/>
  </data>
</repomd>`

func gzipBytes(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(data)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func newRepoServer(t *testing.T, pkgBody []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repodata/repomd.xml":
			fmt.Fprint(w, testRepomd)
		case "/repodata/primary.xml.gz":
			w.Write(gzipBytes(t, testPrimary))
		case "/repodata/filelists.xml.gz":
			w.Write(gzipBytes(t, testFilelists))
		case "/packages/libfoo-1.0-1.x86_64.rpm":
			w.Write(pkgBody)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetchMetadataAndPackages(t *testing.T) {
	server := newRepoServer(t, nil)
	defer server.Close()

	h := New("base", server.URL, "")
	if err := h.FetchMetadata(); err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	defer h.CleanupCache()

	pkgs, err := h.Packages()
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected 1 package, got %d", len(pkgs))
	}
	p := pkgs[0]
	if p.NEVRA() != "libfoo-1.0-1.x86_64" {
		t.Errorf("unexpected NEVRA %q", p.NEVRA())
	}
	if !p.OwnsFile("/usr/lib64/libfoo.so") {
		t.Error("filelists not merged")
	}
}

func TestFetchMetadataBadServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	h := New("broken", server.URL, "")
	if err := h.FetchMetadata(); err == nil {
		t.Fatal("expected error for missing repomd.xml")
	}
}

func TestCleanupCacheRemovesDirAndIsIdempotent(t *testing.T) {
	server := newRepoServer(t, nil)
	defer server.Close()

	h := New("base", server.URL, "")
	if err := h.FetchMetadata(); err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	cacheDir := h.root
	if cacheDir == "" {
		t.Fatal("expected a cache dir for a remote repository")
	}

	h.CleanupCache()
	if _, err := os.Stat(cacheDir); !os.IsNotExist(err) {
		t.Errorf("cache dir still present after cleanup")
	}
	h.CleanupCache() // second call must be a no-op
}

func TestLocalRepositoryReadInPlace(t *testing.T) {
	dir := t.TempDir()
	repodata := filepath.Join(dir, "repodata")
	if err := os.MkdirAll(repodata, 0o755); err != nil {
		t.Fatal(err)
	}
	localRepomd := `<?xml version="1.0"?>
<repomd xmlns="http://linux.duke.edu/metadata/repo">
  <data type="primary"><location href="repodata/primary.xml"/></data>
  <data type="filelists"><location href="repodata/filelists.xml"/></data>
</repomd>`
	writeFile(t, filepath.Join(repodata, "repomd.xml"), localRepomd)
	writeFile(t, filepath.Join(repodata, "primary.xml"), testPrimary)
	writeFile(t, filepath.Join(repodata, "filelists.xml"), testFilelists)

	h := New("local", dir, "")
	if err := h.FetchMetadata(); err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	pkgs, err := h.Packages()
	if err != nil {
		t.Fatalf("Packages: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected 1 package, got %d", len(pkgs))
	}

	// cleanup must never delete a local repository
	h.CleanupCache()
	if _, err := os.Stat(repodata); err != nil {
		t.Errorf("local repodata removed by cleanup: %v", err)
	}
}

func TestDownloadPackageVerifiesChecksum(t *testing.T) {
	body := []byte("not really an rpm but good enough for checksums")
	sum := sha256.Sum256(body)
	sumHex := hex.EncodeToString(sum[:])

	server := newRepoServer(t, body)
	defer server.Close()

	h := New("base", server.URL, "")
	if err := h.FetchMetadata(); err != nil {
		t.Fatalf("FetchMetadata: %v", err)
	}
	defer h.CleanupCache()

	p, err := h.DownloadPackage("packages/libfoo-1.0-1.x86_64.rpm", "sha256", sumHex)
	if err != nil {
		t.Fatalf("DownloadPackage: %v", err)
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Error("downloaded content differs")
	}

	// second call reuses the cache
	p2, err := h.DownloadPackage("packages/libfoo-1.0-1.x86_64.rpm", "sha256", sumHex)
	if err != nil {
		t.Fatalf("second DownloadPackage: %v", err)
	}
	if p2 != p {
		t.Errorf("expected cached path %q, got %q", p, p2)
	}

	if _, err := h.DownloadPackage("packages/libfoo-1.0-1.x86_64.rpm", "sha256", "feedface"); err == nil {
		t.Error("expected checksum mismatch error")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
