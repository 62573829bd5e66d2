// Package keys provides the agent's Ed25519 identity: key generation,
// signing, verification and key export.
package keys

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// Signer is the signing capability handed to components that need to
// authenticate data without holding raw key material.
type Signer interface {
	Sign(data []byte) []byte
	Verify(signature, data []byte) bool
	// PublicKey returns the public identity as an opaque string.
	PublicKey() string
}

// KeyPair is an Ed25519 key pair. It implements Signer.
type KeyPair struct {
	private ed25519.PrivateKey
	public  ed25519.PublicKey

	// PublicKeyB64 is the raw public key, base64 encoded. This is the
	// identity string published to the directory service.
	PublicKeyB64 string
}

// Generate creates a fresh Ed25519 key pair.
func Generate() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ed25519 key: %w", err)
	}
	return &KeyPair{
		private:      priv,
		public:       pub,
		PublicKeyB64: base64.StdEncoding.EncodeToString(pub),
	}, nil
}

// Sign signs data with the private key.
func (k *KeyPair) Sign(data []byte) []byte {
	return ed25519.Sign(k.private, data)
}

// Verify reports whether signature is valid for data under this key pair's
// public key.
func (k *KeyPair) Verify(signature, data []byte) bool {
	return ed25519.Verify(k.public, data, signature)
}

// PublicKey returns the base64-encoded public key.
func (k *KeyPair) PublicKey() string {
	return k.PublicKeyB64
}

// PrivateKeyPEM exports the private key as a PKCS#8 PEM block.
func (k *KeyPair) PrivateKeyPEM() (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(k.private)
	if err != nil {
		return "", fmt.Errorf("marshaling private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}

// PublicKeyPEM exports the public key as a PKIX PEM block.
func (k *KeyPair) PublicKeyPEM() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(k.public)
	if err != nil {
		return "", fmt.Errorf("marshaling public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

// FromPrivateKeyPEM rebuilds a key pair from a PKCS#8 PEM export.
func FromPrivateKeyPEM(pemData string) (*KeyPair, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	priv, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an ed25519 private key: %T", parsed)
	}
	pub := priv.Public().(ed25519.PublicKey)
	return &KeyPair{
		private:      priv,
		public:       pub,
		PublicKeyB64: base64.StdEncoding.EncodeToString(pub),
	}, nil
}
