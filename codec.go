package gic

import (
	"encoding/binary"
	"math/big"
)

// ================================================================
// Certificate wire format
//
//	tag || R_U || I2OSP(len(id), 2) || id || K_C
//
// R_U and K_C use the backend's fixed element width.

// EncodeCertificate returns the canonical encoding of cert.
func (p *Protocol) EncodeCertificate(cert *ICert) ([]byte, error) {
	if cert == nil {
		return nil, Errorf(ErrDomainMismatch, "missing certificate")
	}
	if cert.Backend != p.backend.Tag() {
		return nil, Errorf(ErrDomainMismatch, "certificate for backend %s, expected %s", cert.Backend, p.backend.Tag())
	}
	if len(cert.Identity) > MaxIdentityLength {
		return nil, Errorf(ErrDomainMismatch, "identity longer than %d bytes", MaxIdentityLength)
	}
	commitment, err := p.encodeElement(cert.Commitment)
	if err != nil {
		return nil, err
	}
	contribution, err := p.encodeElement(cert.Contribution)
	if err != nil {
		return nil, err
	}
	return concat(
		[]byte{byte(cert.Backend)},
		commitment,
		I2OSP(len(cert.Identity), 2),
		[]byte(cert.Identity),
		contribution,
	), nil
}

// DecodeCertificate parses and validates a certificate encoding.
func (p *Protocol) DecodeCertificate(octets []byte) (*ICert, error) {
	size := p.backend.ElementSize()
	if len(octets) < 1+size+2+size {
		return nil, Errorf(ErrMalformedEncoding, "certificate length %d too short", len(octets))
	}
	if err := p.checkTag(octets[0]); err != nil {
		return nil, err
	}

	idLen := int(binary.BigEndian.Uint16(octets[1+size : 1+size+2]))
	if len(octets) != 1+size+2+idLen+size {
		return nil, Errorf(ErrMalformedEncoding, "certificate length %d, identity length %d", len(octets), idLen)
	}

	commitment, err := p.backend.DecodeElement(octets[1 : 1+size])
	if err != nil {
		return nil, err
	}
	idStart := 1 + size + 2
	identity := string(octets[idStart : idStart+idLen])
	contribution, err := p.backend.DecodeElement(octets[idStart+idLen:])
	if err != nil {
		return nil, err
	}

	return &ICert{
		Backend:      Tag(octets[0]),
		Commitment:   commitment,
		Identity:     identity,
		Contribution: contribution,
	}, nil
}

// ================================================================
// Kind-tagged entities
//
//	tag || kind || fixed-width payload

// EncodeCompletion returns tag || 0x03 || value || flag [|| challenge], where
// flag is 0x01 when the issuer's challenge is carried and 0x00 otherwise.
func (p *Protocol) EncodeCompletion(c *CompletionValue) ([]byte, error) {
	if c == nil {
		return nil, Errorf(ErrDomainMismatch, "missing completion value")
	}
	value, err := p.encodeScalar(c.Value)
	if err != nil {
		return nil, err
	}
	if c.Challenge == nil {
		return p.header(KindCompletion, value, []byte{challengeAbsent}), nil
	}
	challenge, err := p.backend.EncodeChallenge(c.Challenge)
	if err != nil {
		return nil, err
	}
	return p.header(KindCompletion, value, []byte{challengePresent}, challenge), nil
}

// DecodeCompletion parses an EncodeCompletion output. The challenge is nil
// when the encoding does not carry one.
func (p *Protocol) DecodeCompletion(octets []byte) (*CompletionValue, error) {
	ss := p.backend.ScalarSize()
	if len(octets) == 2+ss+1 {
		payload, err := p.checkHeader(octets, KindCompletion, ss+1)
		if err != nil {
			return nil, err
		}
		if payload[ss] != challengeAbsent {
			return nil, Errorf(ErrMalformedEncoding, "challenge flag 0x%02x", payload[ss])
		}
		value, err := p.backend.DecodeScalar(payload[:ss])
		if err != nil {
			return nil, err
		}
		return &CompletionValue{Value: value}, nil
	}

	payload, err := p.checkHeader(octets, KindCompletion, ss+1+p.backend.ChallengeSize())
	if err != nil {
		return nil, err
	}
	if payload[ss] != challengePresent {
		return nil, Errorf(ErrMalformedEncoding, "challenge flag 0x%02x", payload[ss])
	}
	value, err := p.backend.DecodeScalar(payload[:ss])
	if err != nil {
		return nil, err
	}
	e, err := p.backend.DecodeChallenge(payload[ss+1:])
	if err != nil {
		return nil, err
	}
	return &CompletionValue{Value: value, Challenge: e}, nil
}

// EncodePublicKey returns tag || 0x04 || element.
func (p *Protocol) EncodePublicKey(pk Element) ([]byte, error) {
	octets, err := p.encodeElement(pk)
	if err != nil {
		return nil, err
	}
	return p.header(KindPublicKey, octets), nil
}

// DecodePublicKey parses an EncodePublicKey output.
func (p *Protocol) DecodePublicKey(octets []byte) (Element, error) {
	payload, err := p.checkHeader(octets, KindPublicKey, p.backend.ElementSize())
	if err != nil {
		return nil, err
	}
	return p.backend.DecodeElement(payload)
}

// EncodeSecretKey returns tag || 0x05 || scalar.
func (p *Protocol) EncodeSecretKey(sk Scalar) ([]byte, error) {
	octets, err := p.encodeScalar(sk)
	if err != nil {
		return nil, err
	}
	return p.header(KindSecretKey, octets), nil
}

// DecodeSecretKey parses an EncodeSecretKey output.
func (p *Protocol) DecodeSecretKey(octets []byte) (Scalar, error) {
	payload, err := p.checkHeader(octets, KindSecretKey, p.backend.ScalarSize())
	if err != nil {
		return nil, err
	}
	return p.backend.DecodeScalar(payload)
}

// EncodeCAKeyPair returns tag || 0x02 || secret || public.
func (p *Protocol) EncodeCAKeyPair(k *CAKeyPair) ([]byte, error) {
	if k == nil {
		return nil, Errorf(ErrDomainMismatch, "missing CA key pair")
	}
	return p.encodePair(KindCAKeyPair, k.Secret, k.Public)
}

// DecodeCAKeyPair parses an EncodeCAKeyPair output.
func (p *Protocol) DecodeCAKeyPair(octets []byte) (*CAKeyPair, error) {
	sk, pk, err := p.decodePair(KindCAKeyPair, octets)
	if err != nil {
		return nil, err
	}
	return &CAKeyPair{Secret: sk, Public: pk}, nil
}

// EncodeUserContribution returns tag || 0x06 || r || R.
func (p *Protocol) EncodeUserContribution(u *UserContribution) ([]byte, error) {
	if u == nil {
		return nil, Errorf(ErrDomainMismatch, "missing user contribution")
	}
	return p.encodePair(KindUserContribution, u.Secret, u.Commitment)
}

// DecodeUserContribution parses an EncodeUserContribution output.
func (p *Protocol) DecodeUserContribution(octets []byte) (*UserContribution, error) {
	r, R, err := p.decodePair(KindUserContribution, octets)
	if err != nil {
		return nil, err
	}
	return &UserContribution{Secret: r, Commitment: R}, nil
}

// EncodeUserKeyPair returns tag || 0x07 || sk || pk.
func (p *Protocol) EncodeUserKeyPair(k *UserKeyPair) ([]byte, error) {
	if k == nil {
		return nil, Errorf(ErrDomainMismatch, "missing user key pair")
	}
	return p.encodePair(KindUserKeyPair, k.Secret, k.Public)
}

// DecodeUserKeyPair parses an EncodeUserKeyPair output.
func (p *Protocol) DecodeUserKeyPair(octets []byte) (*UserKeyPair, error) {
	sk, pk, err := p.decodePair(KindUserKeyPair, octets)
	if err != nil {
		return nil, err
	}
	return &UserKeyPair{Secret: sk, Public: pk}, nil
}

// Encode dispatches on the entity type. There is no generic Decode: the
// receiver knows what it expects and calls the matching DecodeX, which also
// rejects encodings of any other kind.
func (p *Protocol) Encode(v interface{}) ([]byte, error) {
	switch e := v.(type) {
	case *ICert:
		return p.EncodeCertificate(e)
	case *CompletionValue:
		return p.EncodeCompletion(e)
	case *CAKeyPair:
		return p.EncodeCAKeyPair(e)
	case *UserContribution:
		return p.EncodeUserContribution(e)
	case *UserKeyPair:
		return p.EncodeUserKeyPair(e)
	case *SystemParameters:
		return EncodeParameters(e)
	case Element:
		return p.EncodePublicKey(e)
	case Scalar:
		return p.EncodeSecretKey(e)
	default:
		return nil, Errorf(ErrDomainMismatch, "unsupported type %T", v)
	}
}

func (p *Protocol) header(kind Kind, payload ...[]byte) []byte {
	return concat(append([][]byte{{byte(p.backend.Tag()), byte(kind)}}, payload...)...)
}

func (p *Protocol) checkTag(b byte) error {
	tag := Tag(b)
	if tag == p.backend.Tag() {
		return nil
	}
	if !tag.Known() {
		return Errorf(ErrMalformedEncoding, "unknown backend tag 0x%02x", b)
	}
	return Errorf(ErrMalformedEncoding, "encoding for backend %s, expected %s", tag, p.backend.Tag())
}

func (p *Protocol) checkHeader(octets []byte, kind Kind, payloadLen int) ([]byte, error) {
	if len(octets) < 2 {
		return nil, Errorf(ErrMalformedEncoding, "encoding length %d too short", len(octets))
	}
	if err := p.checkTag(octets[0]); err != nil {
		return nil, err
	}
	if Kind(octets[1]) != kind {
		return nil, Errorf(ErrMalformedEncoding, "entity kind 0x%02x, expected 0x%02x", octets[1], byte(kind))
	}
	if len(octets)-2 != payloadLen {
		return nil, Errorf(ErrMalformedEncoding, "payload length %d, expected %d", len(octets)-2, payloadLen)
	}
	return octets[2:], nil
}

func (p *Protocol) encodePair(kind Kind, s Scalar, e Element) ([]byte, error) {
	so, err := p.encodeScalar(s)
	if err != nil {
		return nil, err
	}
	eo, err := p.encodeElement(e)
	if err != nil {
		return nil, err
	}
	return p.header(kind, so, eo), nil
}

func (p *Protocol) decodePair(kind Kind, octets []byte) (Scalar, Element, error) {
	ss := p.backend.ScalarSize()
	payload, err := p.checkHeader(octets, kind, ss+p.backend.ElementSize())
	if err != nil {
		return nil, nil, err
	}
	s, err := p.backend.DecodeScalar(payload[:ss])
	if err != nil {
		return nil, nil, err
	}
	e, err := p.backend.DecodeElement(payload[ss:])
	if err != nil {
		return nil, nil, err
	}
	return s, e, nil
}

func (p *Protocol) encodeScalar(s Scalar) ([]byte, error) {
	if s == nil {
		return nil, Errorf(ErrDomainMismatch, "missing scalar")
	}
	return p.backend.EncodeScalar(s)
}

func (p *Protocol) encodeElement(e Element) ([]byte, error) {
	if e == nil {
		return nil, Errorf(ErrDomainMismatch, "missing element")
	}
	return p.backend.EncodeElement(e)
}

// ================================================================
// System parameters
//
//	tag || 0x01 || I2OSP(level, 2) || I2OSP(challenge_bits, 2)
//	    || lp(group) || lp(modulus) || lp(order) || lp(generator) || lp(exponent) || lp(hash)
//
// lp(x) = I2OSP(len(x), 2) || x. Integers use their minimal big-endian form;
// an absent integer is the empty string.

// EncodeParameters returns the canonical encoding of params.
func EncodeParameters(params *SystemParameters) ([]byte, error) {
	if params == nil {
		return nil, Errorf(ErrDomainMismatch, "missing system parameters")
	}
	if params.Level <= 0 || int(params.Level) > 0xFFFF || params.ChallengeBits < 0 || params.ChallengeBits > 0xFFFF {
		return nil, Errorf(ErrInvalidParameter, "level %d or challenge bits %d out of range", params.Level, params.ChallengeBits)
	}
	for _, x := range []*big.Int{params.Modulus, params.Order, params.Exponent} {
		if x != nil && x.Sign() <= 0 {
			return nil, Errorf(ErrInvalidParameter, "non-positive parameter integer")
		}
	}
	fields := [][]byte{
		[]byte(params.Group),
		intOctets(params.Modulus),
		intOctets(params.Order),
		params.Generator,
		intOctets(params.Exponent),
		[]byte(params.Hash),
	}
	out := []byte{byte(params.Backend), byte(KindParameters)}
	out = append(out, I2OSP(int(params.Level), 2)...)
	out = append(out, I2OSP(params.ChallengeBits, 2)...)
	for _, f := range fields {
		if len(f) > 0xFFFF {
			return nil, Errorf(ErrInvalidParameter, "parameter field longer than 65535 bytes")
		}
		out = append(out, I2OSP(len(f), 2)...)
		out = append(out, f...)
	}
	return out, nil
}

// DecodeParameters parses a parameter encoding produced by EncodeParameters.
func DecodeParameters(octets []byte) (*SystemParameters, error) {
	if len(octets) < 6 {
		return nil, Errorf(ErrMalformedEncoding, "parameters length %d too short", len(octets))
	}
	tag := Tag(octets[0])
	if !tag.Known() {
		return nil, Errorf(ErrMalformedEncoding, "unknown backend tag 0x%02x", octets[0])
	}
	if Kind(octets[1]) != KindParameters {
		return nil, Errorf(ErrMalformedEncoding, "entity kind 0x%02x, expected 0x%02x", octets[1], byte(KindParameters))
	}
	params := &SystemParameters{
		Backend:       tag,
		Level:         SecurityLevel(binary.BigEndian.Uint16(octets[2:4])),
		ChallengeBits: int(binary.BigEndian.Uint16(octets[4:6])),
	}
	if params.Level == 0 {
		return nil, Errorf(ErrMalformedEncoding, "zero security level")
	}

	rest := octets[6:]
	fields := make([][]byte, 6)
	for i := range fields {
		if len(rest) < 2 {
			return nil, Errorf(ErrMalformedEncoding, "truncated parameter field %d", i)
		}
		n := int(binary.BigEndian.Uint16(rest[:2]))
		if len(rest)-2 < n {
			return nil, Errorf(ErrMalformedEncoding, "truncated parameter field %d", i)
		}
		fields[i] = rest[2 : 2+n]
		rest = rest[2+n:]
	}
	if len(rest) != 0 {
		return nil, Errorf(ErrMalformedEncoding, "%d trailing bytes after parameters", len(rest))
	}

	var err error
	params.Group = string(fields[0])
	if params.Modulus, err = octetsInt(fields[1]); err != nil {
		return nil, err
	}
	if params.Order, err = octetsInt(fields[2]); err != nil {
		return nil, err
	}
	if len(fields[3]) > 0 {
		params.Generator = append([]byte{}, fields[3]...)
	}
	if params.Exponent, err = octetsInt(fields[4]); err != nil {
		return nil, err
	}
	params.Hash = string(fields[5])
	return params, nil
}

func intOctets(x *big.Int) []byte {
	if x == nil {
		return nil
	}
	return x.Bytes()
}

func octetsInt(b []byte) (*big.Int, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if b[0] == 0 {
		return nil, Errorf(ErrMalformedEncoding, "non-minimal integer encoding")
	}
	return new(big.Int).SetBytes(b), nil
}
