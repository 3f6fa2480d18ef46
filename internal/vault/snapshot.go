package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// ManifestFile records one snapshotted file.
type ManifestFile struct {
	Name   string `json:"name"` // Relative to the planning directory
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Manifest describes a snapshot. The signatures cover its canonical JSON
// bytes, so any change to a hash or name invalidates the bundle.
type Manifest struct {
	CreatedAt time.Time      `json:"created_at"`
	Files     []ManifestFile `json:"files"`
}

type bundleFile struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Bundle is the on-disk snapshot: signed manifest plus file payloads.
type Bundle struct {
	Manifest   json.RawMessage `json:"manifest"`
	Ed25519Sig []byte          `json:"ed25519_sig"`
	MLDSASig   []byte          `json:"mldsa_sig"`
	Files      []bundleFile    `json:"files"`
}

type encryptedBundle struct {
	Encrypted     bool   `json:"encrypted"`
	KEMCiphertext []byte `json:"kem_ciphertext"`
	Ciphertext    []byte `json:"ciphertext"` // Nonce-prefixed XChaCha20-Poly1305
}

// CreateSnapshot reads the named files (relative to dir), builds the
// manifest and returns the signed bundle as JSON.
func CreateSnapshot(id *Identity, dir string, names []string, now time.Time) ([]byte, error) {
	manifest := Manifest{CreatedAt: now.UTC()}
	var files []bundleFile

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		sum := sha256.Sum256(data)
		manifest.Files = append(manifest.Files, ManifestFile{
			Name:   name,
			Size:   int64(len(data)),
			SHA256: hex.EncodeToString(sum[:]),
		})
		files = append(files, bundleFile{Name: name, Data: data})
	}

	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return nil, err
	}

	ed25519Sig, mldsaSig, err := id.SignHybrid(manifestJSON)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Bundle{
		Manifest:   manifestJSON,
		Ed25519Sig: ed25519Sig,
		MLDSASig:   mldsaSig,
		Files:      files,
	})
}

// VerifySnapshot checks both signatures against the sealed identity's
// public keys, then the payload hashes and sizes against the manifest.
func VerifySnapshot(data []byte, sealed *SealedIdentity) (*Manifest, error) {
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle: %w", err)
	}

	ed25519Pub, mldsaPub, _, err := sealed.PublicKeys()
	if err != nil {
		return nil, err
	}

	if !VerifyHybrid(ed25519Pub, mldsaPub, bundle.Manifest, bundle.Ed25519Sig, bundle.MLDSASig) {
		return nil, fmt.Errorf("signature verification failed")
	}

	var manifest Manifest
	if err := json.Unmarshal(bundle.Manifest, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	payloads := make(map[string][]byte, len(bundle.Files))
	for _, f := range bundle.Files {
		payloads[f.Name] = f.Data
	}
	if len(payloads) != len(manifest.Files) {
		return nil, fmt.Errorf("bundle has %d files, manifest lists %d", len(payloads), len(manifest.Files))
	}

	for _, mf := range manifest.Files {
		data, ok := payloads[mf.Name]
		if !ok {
			return nil, fmt.Errorf("file %s listed in manifest but missing from bundle", mf.Name)
		}
		if int64(len(data)) != mf.Size {
			return nil, fmt.Errorf("file %s has size %d, manifest says %d", mf.Name, len(data), mf.Size)
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != mf.SHA256 {
			return nil, fmt.Errorf("file %s hash mismatch", mf.Name)
		}
	}

	return &manifest, nil
}

// ExtractSnapshot writes a verified bundle's files into dir.
func ExtractSnapshot(data []byte, sealed *SealedIdentity, dir string) error {
	if _, err := VerifySnapshot(data, sealed); err != nil {
		return err
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return err
	}
	for _, f := range bundle.Files {
		path := filepath.Join(dir, filepath.Clean(f.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return err
		}
		if err := os.WriteFile(path, f.Data, 0600); err != nil {
			return err
		}
	}
	return nil
}

// EncryptSnapshot seals a bundle to the holder's own ML-KEM key. The
// passphrase is only needed again at decrypt time.
func EncryptSnapshot(bundle []byte, sealed *SealedIdentity) ([]byte, error) {
	_, _, mlkemPub, err := sealed.PublicKeys()
	if err != nil {
		return nil, err
	}

	kemCiphertext, sharedSecret, err := Encapsulate(mlkemPub)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(sharedSecret)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return json.Marshal(encryptedBundle{
		Encrypted:     true,
		KEMCiphertext: kemCiphertext,
		Ciphertext:    aead.Seal(nonce, nonce, bundle, nil),
	})
}

// IsEncrypted reports whether data is an encrypted bundle envelope.
func IsEncrypted(data []byte) bool {
	var env struct {
		Encrypted bool `json:"encrypted"`
	}
	return json.Unmarshal(data, &env) == nil && env.Encrypted
}

// DecryptSnapshot recovers the plain bundle with the unsealed identity.
func DecryptSnapshot(data []byte, id *Identity) ([]byte, error) {
	var env encryptedBundle
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse encrypted bundle: %w", err)
	}
	if !env.Encrypted {
		return nil, fmt.Errorf("bundle is not encrypted")
	}

	sharedSecret, err := id.Decapsulate(env.KEMCiphertext)
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(sharedSecret)
	if err != nil {
		return nil, err
	}
	if len(env.Ciphertext) < aead.NonceSize() {
		return nil, fmt.Errorf("invalid encrypted bundle")
	}
	nonce := env.Ciphertext[:aead.NonceSize()]
	ciphertext := env.Ciphertext[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plain, nil
}
