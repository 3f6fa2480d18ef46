// Package vault signs and verifies snapshot bundles of the planning
// directory. Signatures are hybrid: a bundle is valid only when both the
// Ed25519 and the ML-DSA-65 signature verify. The ML-KEM-768 key lets the
// holder encrypt bundles to themselves, so unattended snapshots need no
// passphrase while restores do.
package vault

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Identity is the full key material: classical and post-quantum signing
// keys plus a post-quantum encapsulation key.
type Identity struct {
	Ed25519Public  ed25519.PublicKey
	Ed25519Private ed25519.PrivateKey

	// ML-DSA-65 (FIPS 204)
	MLDSAPublic  mldsa65.PublicKey
	MLDSAPrivate mldsa65.PrivateKey

	// ML-KEM-768 (FIPS 203)
	MLKEMPublic  mlkem768.PublicKey
	MLKEMPrivate mlkem768.PrivateKey
}

// SealedIdentity is the storable form: public keys in the clear, private
// keys encrypted under a passphrase.
type SealedIdentity struct {
	Ed25519Public string `json:"ed25519_public"`
	MLDSAPublic   string `json:"mldsa_public"`
	MLKEMPublic   string `json:"mlkem_public"`

	EncryptedPrivateKeys string `json:"encrypted_private_keys"`

	Salt      string `json:"salt"`
	Algorithm string `json:"algorithm"` // "argon2id"
}

// GenerateIdentity creates a fresh identity. Called once by `pf snapshot init`.
func GenerateIdentity() (*Identity, error) {
	id := &Identity{}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Ed25519 keys: %w", err)
	}
	id.Ed25519Public = pub
	id.Ed25519Private = priv

	mldsaPub, mldsaPriv, err := mldsa65.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ML-DSA keys: %w", err)
	}
	id.MLDSAPublic = *mldsaPub
	id.MLDSAPrivate = *mldsaPriv

	mlkemPub, mlkemPriv, err := mlkem768.GenerateKeyPair(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ML-KEM keys: %w", err)
	}
	id.MLKEMPublic = *mlkemPub
	id.MLKEMPrivate = *mlkemPriv

	return id, nil
}

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 3, 64*1024, 4, 32)
}

// Seal encrypts the private keys under the passphrase.
func (id *Identity) Seal(passphrase string) (*SealedIdentity, error) {
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	encrypted := aead.Seal(nonce, nonce, packPrivateKeys(id), nil)

	mldsaPubBytes, _ := id.MLDSAPublic.MarshalBinary()
	mlkemPubBytes, _ := id.MLKEMPublic.MarshalBinary()

	return &SealedIdentity{
		Ed25519Public:        base64.StdEncoding.EncodeToString(id.Ed25519Public),
		MLDSAPublic:          base64.StdEncoding.EncodeToString(mldsaPubBytes),
		MLKEMPublic:          base64.StdEncoding.EncodeToString(mlkemPubBytes),
		EncryptedPrivateKeys: base64.StdEncoding.EncodeToString(encrypted),
		Salt:                 base64.StdEncoding.EncodeToString(salt),
		Algorithm:            "argon2id",
	}, nil
}

// Unseal decrypts the private keys and reconstructs the identity.
func (s *SealedIdentity) Unseal(passphrase string) (*Identity, error) {
	salt, err := base64.StdEncoding.DecodeString(s.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	encrypted, err := base64.StdEncoding.DecodeString(s.EncryptedPrivateKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encrypted keys: %w", err)
	}
	if len(encrypted) < aead.NonceSize() {
		return nil, errors.New("invalid encrypted data")
	}
	nonce := encrypted[:aead.NonceSize()]
	ciphertext := encrypted[aead.NonceSize():]

	privateData, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong passphrase?): %w", err)
	}

	id, err := unpackPrivateKeys(privateData)
	if err != nil {
		return nil, err
	}

	ed25519Pub, mldsaPub, mlkemPub, err := s.PublicKeys()
	if err != nil {
		return nil, err
	}
	id.Ed25519Public = ed25519Pub
	id.MLDSAPublic = *mldsaPub
	id.MLKEMPublic = *mlkemPub

	return id, nil
}

// PublicKeys decodes the stored public keys. This needs no passphrase, so
// `pf snapshot verify` works against the sealed file alone.
func (s *SealedIdentity) PublicKeys() (ed25519.PublicKey, *mldsa65.PublicKey, *mlkem768.PublicKey, error) {
	ed25519Pub, err := base64.StdEncoding.DecodeString(s.Ed25519Public)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode Ed25519 public key: %w", err)
	}

	mldsaPubBytes, err := base64.StdEncoding.DecodeString(s.MLDSAPublic)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode ML-DSA public key: %w", err)
	}
	mldsaPub := new(mldsa65.PublicKey)
	if err := mldsaPub.UnmarshalBinary(mldsaPubBytes); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to unmarshal ML-DSA public key: %w", err)
	}

	mlkemPubBytes, err := base64.StdEncoding.DecodeString(s.MLKEMPublic)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to decode ML-KEM public key: %w", err)
	}
	mlkemPub := new(mlkem768.PublicKey)
	if err := mlkemPub.Unpack(mlkemPubBytes); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to unpack ML-KEM public key: %w", err)
	}

	return ed25519.PublicKey(ed25519Pub), mldsaPub, mlkemPub, nil
}

// WriteFile stores the sealed identity as JSON, owner-readable only.
func (s *SealedIdentity) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ReadSealedIdentity loads a sealed identity file.
func ReadSealedIdentity(path string) (*SealedIdentity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &SealedIdentity{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse identity file: %w", err)
	}
	return s, nil
}

// Private keys are packed as three length-prefixed blobs:
// Ed25519, then ML-DSA, then ML-KEM.
func packPrivateKeys(id *Identity) []byte {
	ed25519Bytes := []byte(id.Ed25519Private)
	mldsaBytes, _ := id.MLDSAPrivate.MarshalBinary()
	mlkemBytes, _ := id.MLKEMPrivate.MarshalBinary()

	buf := make([]byte, 0, 12+len(ed25519Bytes)+len(mldsaBytes)+len(mlkemBytes))
	for _, blob := range [][]byte{ed25519Bytes, mldsaBytes, mlkemBytes} {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(blob)))
		buf = append(buf, blob...)
	}
	return buf
}

func unpackPrivateKeys(data []byte) (*Identity, error) {
	next := func() ([]byte, error) {
		if len(data) < 4 {
			return nil, errors.New("invalid private key data: truncated length")
		}
		n := int(binary.BigEndian.Uint32(data))
		data = data[4:]
		if len(data) < n {
			return nil, errors.New("invalid private key data: truncated key")
		}
		blob := data[:n]
		data = data[n:]
		return blob, nil
	}

	id := &Identity{}

	ed25519Bytes, err := next()
	if err != nil {
		return nil, err
	}
	id.Ed25519Private = make(ed25519.PrivateKey, len(ed25519Bytes))
	copy(id.Ed25519Private, ed25519Bytes)

	mldsaBytes, err := next()
	if err != nil {
		return nil, err
	}
	mldsaPriv := new(mldsa65.PrivateKey)
	if err := mldsaPriv.UnmarshalBinary(mldsaBytes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ML-DSA key: %w", err)
	}
	id.MLDSAPrivate = *mldsaPriv

	mlkemBytes, err := next()
	if err != nil {
		return nil, err
	}
	mlkemPriv := new(mlkem768.PrivateKey)
	if err := mlkemPriv.Unpack(mlkemBytes); err != nil {
		return nil, fmt.Errorf("failed to unpack ML-KEM key: %w", err)
	}
	id.MLKEMPrivate = *mlkemPriv

	return id, nil
}

// SignHybrid signs data with both signature schemes.
func (id *Identity) SignHybrid(data []byte) (ed25519Sig, mldsaSig []byte, err error) {
	ed25519Sig = ed25519.Sign(id.Ed25519Private, data)

	mldsaSig = make([]byte, mldsa65.SignatureSize)
	if err := mldsa65.SignTo(&id.MLDSAPrivate, data, nil, false, mldsaSig); err != nil {
		return nil, nil, fmt.Errorf("ML-DSA signing failed: %w", err)
	}

	return ed25519Sig, mldsaSig, nil
}

// VerifyHybrid accepts only when both signatures verify.
func VerifyHybrid(ed25519Pub ed25519.PublicKey, mldsaPub *mldsa65.PublicKey, data, ed25519Sig, mldsaSig []byte) bool {
	return ed25519.Verify(ed25519Pub, data, ed25519Sig) &&
		mldsa65.Verify(mldsaPub, data, nil, mldsaSig)
}

// SharedSecretSize is the ML-KEM-768 shared secret size in bytes.
const SharedSecretSize = 32

// KEMCiphertextSize is the ML-KEM-768 ciphertext size.
const KEMCiphertextSize = 1088

// Encapsulate creates a shared secret for the recipient's public key.
func Encapsulate(recipient *mlkem768.PublicKey) (ciphertext, sharedSecret []byte, err error) {
	ct := make([]byte, KEMCiphertextSize)
	ss := make([]byte, SharedSecretSize)

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, nil, fmt.Errorf("failed to generate seed: %w", err)
	}

	recipient.EncapsulateTo(ct, ss, seed)
	return ct, ss, nil
}

// Decapsulate recovers the shared secret from a ciphertext.
func (id *Identity) Decapsulate(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) != KEMCiphertextSize {
		return nil, errors.New("invalid ciphertext size")
	}
	ss := make([]byte, SharedSecretSize)
	id.MLKEMPrivate.DecapsulateTo(ss, ciphertext)
	return ss, nil
}
