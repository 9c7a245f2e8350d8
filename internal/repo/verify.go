package repo

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/distro-tools/rpmdepgate/internal/logger"
	"github.com/sassoftware/go-rpmutils"
)

// verifySignature checks the GPG signature of a downloaded package against
// the repository's configured key. The keyring is fetched and parsed once
// per handle.
func (h *Handle) verifySignature(pkgPath string) error {
	keyring, err := h.loadKeyring()
	if err != nil {
		return err
	}

	f, err := os.Open(pkgPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, _, err := rpmutils.Verify(f, keyring); err != nil {
		return fmt.Errorf("signature verification of %s failed: %w", pkgPath, err)
	}
	logger.Logger().Debugf("verified signature of %s", pkgPath)
	return nil
}

var keyringCache = map[string]openpgp.EntityList{}

func (h *Handle) loadKeyring() (openpgp.EntityList, error) {
	if kr, ok := keyringCache[h.gpgKey]; ok {
		return kr, nil
	}

	var raw []byte
	if strings.HasPrefix(h.gpgKey, "http://") || strings.HasPrefix(h.gpgKey, "https://") {
		resp, err := h.client.Get(h.gpgKey)
		if err != nil {
			return nil, fmt.Errorf("fetching GPG key %s: %w", h.gpgKey, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching GPG key %s: %s", h.gpgKey, resp.Status)
		}
		if raw, err = io.ReadAll(resp.Body); err != nil {
			return nil, fmt.Errorf("reading GPG key %s: %w", h.gpgKey, err)
		}
	} else {
		var err error
		if raw, err = os.ReadFile(h.gpgKey); err != nil {
			return nil, fmt.Errorf("reading GPG key: %w", err)
		}
	}

	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing GPG key %s: %w", h.gpgKey, err)
	}
	keyringCache[h.gpgKey] = keyring
	return keyring, nil
}
