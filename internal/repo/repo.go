// Package repo fetches and caches yum/dnf repository metadata and serves
// package downloads for one named repository.
package repo

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/distro-tools/rpmdepgate/internal/logger"
	"github.com/distro-tools/rpmdepgate/internal/rpmmd"
	"github.com/google/uuid"
)

const cacheDirPrefix = "rpmdepgate-"

// Handle is one named repository. The backing location is either a remote
// base URL or a local directory; remote metadata and packages are cached
// in a per-handle temporary directory that lives until CleanupCache.
type Handle struct {
	name    string
	baseURL string
	gpgKey  string

	client *http.Client

	local         bool
	root          string // metadata root: cache dir, or baseURL for local repos
	md            *rpmmd.Repomd
	primaryPath   string
	filelistsPath string
}

// New creates a handle for the named repository backed by baseURL, which
// may be an http(s) URL or a local directory path. gpgKey optionally
// points at an armored public key used to verify downloaded packages.
func New(name, baseURL, gpgKey string) *Handle {
	return &Handle{
		name:    name,
		baseURL: baseURL,
		gpgKey:  gpgKey,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

// Name returns the repository name, unique within one analysis.
func (h *Handle) Name() string {
	return h.name
}

// FetchMetadata downloads and parses repodata/repomd.xml plus the primary
// and filelists payloads it references. Local directories are read in
// place; remote repositories are cached on disk.
func (h *Handle) FetchMetadata() error {
	log := logger.Logger()

	if info, err := os.Stat(h.baseURL); err == nil && info.IsDir() {
		h.local = true
		h.root = h.baseURL
	} else {
		if _, err := url.ParseRequestURI(h.baseURL); err != nil {
			return fmt.Errorf("repository %s: %q is neither a directory nor a URL", h.name, h.baseURL)
		}
		h.root = filepath.Join(os.TempDir(), cacheDirPrefix+h.name+"-"+uuid.NewString())
		if err := os.MkdirAll(h.root, 0o755); err != nil {
			return fmt.Errorf("repository %s: creating cache dir: %w", h.name, err)
		}
	}
	log.Debugf("loading repodata for %s from %s", h.name, h.baseURL)

	repomdPath, err := h.acquire("repodata/repomd.xml")
	if err != nil {
		return fmt.Errorf("repository %s: %w", h.name, err)
	}
	f, err := os.Open(repomdPath)
	if err != nil {
		return fmt.Errorf("repository %s: %w", h.name, err)
	}
	defer f.Close()
	md, err := rpmmd.ParseRepomd(f)
	if err != nil {
		return fmt.Errorf("repository %s: %w", h.name, err)
	}
	h.md = md

	primaryHref, err := md.Location("primary")
	if err != nil {
		return fmt.Errorf("repository %s: %w", h.name, err)
	}
	if h.primaryPath, err = h.acquire(primaryHref); err != nil {
		return fmt.Errorf("repository %s: %w", h.name, err)
	}

	filelistsHref, err := md.Location("filelists")
	if err != nil {
		return fmt.Errorf("repository %s: %w", h.name, err)
	}
	if h.filelistsPath, err = h.acquire(filelistsHref); err != nil {
		return fmt.Errorf("repository %s: %w", h.name, err)
	}
	return nil
}

// Packages parses the fetched metadata into the repository's package list
// with complete file lists. FetchMetadata must have succeeded.
func (h *Handle) Packages() ([]*rpmmd.Package, error) {
	if h.primaryPath == "" {
		return nil, fmt.Errorf("repository %s: metadata not fetched", h.name)
	}

	pr, err := openMetadata(h.primaryPath)
	if err != nil {
		return nil, fmt.Errorf("repository %s: %w", h.name, err)
	}
	defer pr.Close()
	pkgs, err := rpmmd.ParsePrimary(pr)
	if err != nil {
		return nil, fmt.Errorf("repository %s: %w", h.name, err)
	}

	fr, err := openMetadata(h.filelistsPath)
	if err != nil {
		return nil, fmt.Errorf("repository %s: %w", h.name, err)
	}
	defer fr.Close()
	files, err := rpmmd.ParseFilelists(fr)
	if err != nil {
		return nil, fmt.Errorf("repository %s: %w", h.name, err)
	}
	rpmmd.MergeFilelists(pkgs, files)

	return pkgs, nil
}

// CleanupCache deletes the metadata cache directory from disk. Errors are
// logged, never returned; local repositories are left untouched. Safe to
// call more than once.
func (h *Handle) CleanupCache() {
	if h.local || h.root == "" {
		return
	}
	if err := os.RemoveAll(h.root); err != nil {
		logger.Logger().Errorf("cleaning cache of repository %s: %v", h.name, err)
	}
	h.root = ""
}

// acquire makes the repository-relative path available locally and
// returns its on-disk location. Local repositories are read in place;
// remote files are downloaded into the cache once.
func (h *Handle) acquire(relpath string) (string, error) {
	if h.local {
		p := filepath.Join(h.root, filepath.FromSlash(relpath))
		if _, err := os.Stat(p); err != nil {
			return "", err
		}
		return p, nil
	}

	dest := filepath.Join(h.root, filepath.FromSlash(relpath))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}

	srcURL := h.baseURL + "/" + relpath
	resp, err := h.client.Get(srcURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: %s", srcURL, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("downloading %s: %w", srcURL, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dest, nil
}
