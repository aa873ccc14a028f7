package gic

import (
	"crypto/rand"
	"fmt"
	"io"
)

const (
	KeygenDST = CiphersuiteID + "KEYGEN_DST_"

	// MinKeyMaterialLength is the shortest key material DeriveCAKeyPair accepts.
	MinKeyMaterialLength = 32
)

// GenerateRandomKeyMaterial returns length octets from r (crypto/rand when
// nil), with a floor of MinKeyMaterialLength.
func GenerateRandomKeyMaterial(r io.Reader, length int) ([]byte, error) {
	if length < MinKeyMaterialLength {
		length = MinKeyMaterialLength
	}
	if r == nil {
		r = rand.Reader
	}
	return ReadRandom(r, length)
}

// DeriveCAKeyPair derives the issuer's long-term key pair from key material
// instead of the protocol's random source.
//
// Procedure:
// 1. if length(key_material) < 32, return INVALID
// 2. if length(key_info) > 65535, return INVALID
// 3. derive_input = key_material || I2OSP(length(key_info), 2) || key_info
// 4. seed = expand_message_xof(derive_input, KEYGEN_DST || name, 64)
// 5. (sk, pk) = DeriveContribution(seed)
func (p *Protocol) DeriveCAKeyPair(keyMaterial, keyInfo []byte) (*CAKeyPair, error) {
	// 1. if length(key_material) < 32, return INVALID
	if len(keyMaterial) < MinKeyMaterialLength {
		return nil, Errorf(ErrInvalidParameter, "key_material must be at least %d bytes", MinKeyMaterialLength)
	}

	// 2. if length(key_info) > 65535, return INVALID
	if len(keyInfo) > 65535 {
		return nil, Errorf(ErrInvalidParameter, "key_info must be at most 65535 bytes")
	}

	// 3. derive_input = key_material || I2OSP(length(key_info), 2) || key_info
	deriveInput := concat(keyMaterial, I2OSP(len(keyInfo), 2), keyInfo)

	// 4. seed = expand_message_xof(derive_input, key_dst, SeedLength)
	seed := ExpandMessageXOF(deriveInput, []byte(KeygenDST+p.backend.Name()), SeedLength)

	// 5. (sk, pk) = DeriveContribution(seed)
	sk, pk, err := p.backend.DeriveContribution(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to derive CA key pair: %w", err)
	}
	return &CAKeyPair{Secret: sk, Public: pk}, nil
}

// issuerSeed derives the seed of the issuer's per-request contribution so that
// iCertGen needs no randomness beyond the CA key itself.
//
// seed = expand_message_xof(sk_CA || I2OSP(len(id), 2) || id || R, CONTRIBUTION_DST || name, 64)
func (p *Protocol) issuerSeed(skCA Scalar, identity string, R Element) ([]byte, error) {
	if len(identity) > MaxIdentityLength {
		return nil, Errorf(ErrDomainMismatch, "identity longer than %d bytes", MaxIdentityLength)
	}
	skOctets, err := p.backend.EncodeScalar(skCA)
	if err != nil {
		return nil, err
	}
	rOctets, err := p.backend.EncodeElement(R)
	if err != nil {
		return nil, err
	}
	input := concat(skOctets, I2OSP(len(identity), 2), []byte(identity), rOctets)
	return ExpandMessageXOF(input, []byte(ContributionDST+p.backend.Name()), SeedLength), nil
}
