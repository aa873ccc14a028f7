package gic

import (
	"bytes"
	"io"
	"math/big"
)

// Scalar is an element of a backend's secret-key group.
type Scalar interface {
	// Bytes returns the fixed-width canonical encoding.
	Bytes() []byte
	Equal(Scalar) bool
}

// Element is an element of a backend's public-key group.
type Element interface {
	// Bytes returns the fixed-width canonical encoding.
	Bytes() []byte
	Equal(Element) bool
}

// Challenge is a value of a backend's exponent/challenge domain.
type Challenge interface {
	// Bytes returns the fixed-width canonical encoding.
	Bytes() []byte
	Equal(Challenge) bool
}

// Backend is the capability set every algebraic instantiation provides. The
// protocol is written only against this interface.
//
// The combination law shared by all backends is
//
//	CombinePrivate(k, c, e) = e⊙k ⊕ c
//	CombinePublic(K, C, e)  = e⊙K ⊗ C
//
// with PublicKey a homomorphism from (H, ⊕) to (E, ⊗), so that
// PublicKey(CombinePrivate(k, c, e)) == CombinePublic(PublicKey(k), PublicKey(c), e).
//
// Every method checks the concrete type and domain of its operands before any
// arithmetic and fails with ErrDomainMismatch otherwise.
type Backend interface {
	Tag() Tag
	Name() string

	// Setup selects (or generates, for backends with unknown order) the system
	// parameters for level and binds them to the backend.
	Setup(level SecurityLevel, rand io.Reader) (*SystemParameters, error)
	// Load validates and binds parameters produced by an earlier Setup.
	Load(params *SystemParameters) error
	// Parameters returns the bound parameters, nil before Setup or Load.
	Parameters() *SystemParameters

	GenerateCAKeyPair(rand io.Reader) (Scalar, Element, error)
	GenerateUserContribution(rand io.Reader) (Scalar, Element, error)
	// DeriveContribution maps a SeedLength-octet seed to a contribution
	// deterministically.
	DeriveContribution(seed []byte) (Scalar, Element, error)

	// PublicKey is the one-way key-derivation map.
	PublicKey(sk Scalar) (Element, error)
	// Mul is the group law of the public-key group.
	Mul(a, b Element) (Element, error)
	CombinePublic(R, pkCA Element, e Challenge) (Element, error)
	CombinePrivate(r, completion Scalar, e Challenge) (Scalar, error)
	HashToChallenge(msg []byte) (Challenge, error)

	ScalarSize() int
	ElementSize() int
	ChallengeSize() int

	EncodeScalar(s Scalar) ([]byte, error)
	DecodeScalar(b []byte) (Scalar, error)
	EncodeElement(e Element) ([]byte, error)
	DecodeElement(b []byte) (Element, error)
	EncodeChallenge(c Challenge) ([]byte, error)
	DecodeChallenge(b []byte) (Challenge, error)
}

// SystemParameters is the public, backend-independent description of an
// algebraic setting. It is created once by Setup and shared read-only.
type SystemParameters struct {
	Backend Tag
	Level   SecurityLevel
	// Group names the structure, e.g. "P-256" or "RSA-3072".
	Group string
	// Modulus is the base field prime, or the RSA modulus for GQ.
	Modulus *big.Int
	// Order is the group order; nil when it is unknown.
	Order *big.Int
	// Generator is the encoded base point; empty when there is none.
	Generator []byte
	// Exponent is the RSA verification exponent; nil when unused.
	Exponent      *big.Int
	ChallengeBits int
	Hash          string
}

// Equal reports whether p and o describe the same setting.
func (p *SystemParameters) Equal(o *SystemParameters) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Backend == o.Backend &&
		p.Level == o.Level &&
		p.Group == o.Group &&
		equalInt(p.Modulus, o.Modulus) &&
		equalInt(p.Order, o.Order) &&
		bytes.Equal(p.Generator, o.Generator) &&
		equalInt(p.Exponent, o.Exponent) &&
		p.ChallengeBits == o.ChallengeBits &&
		p.Hash == o.Hash
}

func equalInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}
