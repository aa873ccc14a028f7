package gic

import "fmt"

// Tag identifies the algebraic backend an encoding belongs to. It is the first
// octet of every encoded entity.
type Tag byte

const (
	TagGQ      Tag = 0x01
	TagSchnorr Tag = 0x02
	TagBLS     Tag = 0x03
)

// String returns the backend name for known tags.
func (t Tag) String() string {
	switch t {
	case TagGQ:
		return "gq"
	case TagSchnorr:
		return "schnorr"
	case TagBLS:
		return "bls"
	default:
		return fmt.Sprintf("tag(0x%02x)", byte(t))
	}
}

// Known reports whether t names one of the shipped backends.
func (t Tag) Known() bool {
	return t == TagGQ || t == TagSchnorr || t == TagBLS
}

// Kind is the second octet of every encoded entity except the certificate,
// whose layout is fixed by the wire format.
type Kind byte

const (
	KindParameters       Kind = 0x01
	KindCAKeyPair        Kind = 0x02
	KindCompletion       Kind = 0x03
	KindPublicKey        Kind = 0x04
	KindSecretKey        Kind = 0x05
	KindUserContribution Kind = 0x06
	KindUserKeyPair      Kind = 0x07
)

// Completion value flag octet.
const (
	challengeAbsent  byte = 0x00
	challengePresent byte = 0x01
)

// SecurityLevel is a classical security target in bits.
type SecurityLevel int

// Level128 is the only target the shipped backends select parameters for.
const Level128 SecurityLevel = 128

const (
	CiphersuiteID = "GIC_V1_"

	// Domain separation tags. Backends append their own suffix.
	ChallengeDST    = CiphersuiteID + "CHALLENGE_"
	ContributionDST = CiphersuiteID + "ISSUER_CONTRIBUTION_"

	// SeedLength is the number of octets handed to Backend.DeriveContribution.
	SeedLength = 64

	// MaxIdentityLength is bounded by the two-octet length prefix.
	MaxIdentityLength = 65535
)
