package repo

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/distro-tools/rpmdepgate/internal/logger"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/schollz/progressbar/v3"
	"github.com/ulikunitz/xz"
)

// DownloadPackage fetches the package at the repository-relative location
// into the cache, verifies its checksum (and GPG signature when the
// repository has a key configured) and returns the local path. A
// previously downloaded file with a matching checksum is reused.
func (h *Handle) DownloadPackage(location, checksumType, checksumHex string) (string, error) {
	log := logger.Logger()

	if h.local {
		p := filepath.Join(h.root, filepath.FromSlash(location))
		if err := verifyChecksum(p, checksumType, checksumHex); err != nil {
			return "", fmt.Errorf("repository %s: %w", h.name, err)
		}
		return p, nil
	}
	if h.root == "" {
		return "", fmt.Errorf("repository %s: cache released", h.name)
	}

	dest := filepath.Join(h.root, "packages", path.Base(location))
	if _, err := os.Stat(dest); err == nil {
		if err := verifyChecksum(dest, checksumType, checksumHex); err == nil {
			log.Debugf("reusing cached %s", dest)
			return dest, nil
		}
		// stale or truncated download, fetch again
		os.Remove(dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("repository %s: %w", h.name, err)
	}

	srcURL := h.baseURL + "/" + location
	resp, err := h.client.Get(srcURL)
	if err != nil {
		return "", fmt.Errorf("repository %s: %w", h.name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("repository %s: GET %s: %s", h.name, srcURL, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("repository %s: %w", h.name, err)
	}
	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetDescription("downloading "+path.Base(location)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	if _, err := io.Copy(io.MultiWriter(out, bar), resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("repository %s: downloading %s: %w", h.name, srcURL, err)
	}
	bar.Finish()
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("repository %s: %w", h.name, err)
	}

	if err := verifyChecksum(dest, checksumType, checksumHex); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("repository %s: %w", h.name, err)
	}
	if h.gpgKey != "" {
		if err := h.verifySignature(dest); err != nil {
			os.Remove(dest)
			return "", fmt.Errorf("repository %s: %w", h.name, err)
		}
	}
	return dest, nil
}

func verifyChecksum(path, checksumType, checksumHex string) error {
	var digest hash.Hash
	switch checksumType {
	case "sha1":
		digest = sha1.New()
	case "sha256", "sha":
		digest = sha256.New()
	case "sha512":
		digest = sha512.New()
	default:
		return fmt.Errorf("unsupported checksum type %q for %s", checksumType, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(digest, f); err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	got := hex.EncodeToString(digest.Sum(nil))
	if got != checksumHex {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", path, got, checksumHex)
	}
	return nil
}

// openMetadata opens a repodata payload, transparently decompressing
// .gz, .xz and .zst files.
func openMetadata(p string) (io.ReadCloser, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	switch path.Ext(p) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decompressing %s: %w", p, err)
		}
		return &wrappedReader{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case ".xz":
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decompressing %s: %w", p, err)
		}
		return &wrappedReader{Reader: xr, closers: []io.Closer{f}}, nil
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decompressing %s: %w", p, err)
		}
		return &wrappedReader{Reader: zr.IOReadCloser(), closers: []io.Closer{f}}, nil
	default:
		return f, nil
	}
}

type wrappedReader struct {
	io.Reader
	closers []io.Closer
}

func (w *wrappedReader) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
