// Package secrets decrypts the deployment SSH key and protects registry
// tokens at rest.
package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
	"github.com/hpi-schul-cloud/sc-app-deploy/domain"
)

// EncryptedSuffix is appended to the output path to find the encrypted key.
const EncryptedSuffix = ".gpg"

const armorHeader = "-----BEGIN PGP"

var errWrongPassphrase = errors.New("wrong passphrase")

// Provisioner decrypts a symmetrically encrypted (gpg --symmetric) private key.
type Provisioner struct {
	passphrase []byte
	chmod      func(name string, mode os.FileMode) error
}

// NewProvisioner creates a provisioner for the given passphrase. An empty
// passphrase leaves the provisioner unconfigured.
func NewProvisioner(passphrase string) *Provisioner {
	return &Provisioner{
		passphrase: []byte(passphrase),
		chmod:      os.Chmod,
	}
}

// IsConfigured reports whether a passphrase is available.
func (p *Provisioner) IsConfigured() bool {
	return len(p.passphrase) > 0
}

// Decrypt decrypts outputPath+".gpg" into outputPath and restricts the result
// to owner read/write.
func (p *Provisioner) Decrypt(outputPath string) error {
	encryptedPath := outputPath + EncryptedSuffix
	slog.Info("Decrypting credential", "source", encryptedPath, "destination", outputPath)

	if !p.IsConfigured() {
		return fmt.Errorf("%w: no passphrase configured", domain.ErrDecryption)
	}

	in, err := os.Open(encryptedPath)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "secrets",
			"operation", "open_encrypted_key",
			"path", encryptedPath,
			"error", err)
		return fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil {
			slog.Debug("Failed to close encrypted key file", "error", closeErr)
		}
	}()

	plaintext, err := p.decrypt(in)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "secrets",
			"operation", "decrypt_key",
			"path", encryptedPath,
			"error", err)
		return fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}

	if err := writeKeyFile(outputPath, plaintext); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDecryption, err)
	}

	// The file may have existed with wider permissions before OpenFile.
	if err := p.chmod(outputPath, 0o600); err != nil {
		slog.Error("Service operation failed",
			"layer", "secrets",
			"operation", "chmod_key",
			"path", outputPath,
			"error", err)
		return fmt.Errorf("%w: %v", domain.ErrPermission, err)
	}

	slog.Debug("Credential decrypted", "path", outputPath)
	return nil
}

func (p *Provisioner) decrypt(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(armorHeader))

	var src io.Reader = br
	if string(head) == armorHeader {
		block, err := armor.Decode(br)
		if err != nil {
			return nil, fmt.Errorf("invalid armored message: %w", err)
		}
		src = block.Body
	}

	// openpgp keeps calling the prompt until the passphrase works; the
	// second call means the passphrase was wrong.
	attempted := false
	prompt := func(keys []openpgp.Key, symmetric bool) ([]byte, error) {
		if attempted || !symmetric {
			return nil, errWrongPassphrase
		}
		attempted = true
		return p.passphrase, nil
	}

	md, err := openpgp.ReadMessage(src, openpgp.EntityList{}, prompt, &packet.Config{})
	if err != nil {
		return nil, err
	}

	// Reading to EOF verifies the integrity check.
	plaintext, err := io.ReadAll(md.UnverifiedBody)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

func writeKeyFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return f.Close()
}
