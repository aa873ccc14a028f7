package schnorr

import "math/big"

const (
	CiphersuiteID = "GIC_V1_P256_XOF:SHAKE-256_"
	GroupName     = "P-256"
	HashID        = "XOF:SHAKE-256"

	OctetScalarLength  = 32
	OctetPointLength   = 33
	OctetChallengeSize = OctetScalarLength

	// ExpandLen octets are reduced mod n when sampling or hashing, keeping
	// the bias below 2^-128.
	ExpandLen = 48

	ChallengeDST    = CiphersuiteID + "CHALLENGE_"
	ContributionDST = CiphersuiteID + "CONTRIBUTION_"
)

// SEC1 compressed point prefixes.
const (
	prefixEven byte = 0x02
	prefixOdd  byte = 0x03
)

// Curve constants from FIPS 186-4, D.1.2.3.
var (
	fieldModulus, _ = new(big.Int).SetString("ffffffff00000001000000000000000000000000ffffffffffffffffffffffff", 16)
	groupOrder, _   = new(big.Int).SetString("ffffffff00000000ffffffffffffffffbce6faada7179e84f3b9cac2fc632551", 16)
)

// FieldModulus returns a copy of p, the prime of the base field.
func FieldModulus() *big.Int { return new(big.Int).Set(fieldModulus) }

// Order returns a copy of n, the order of the base point.
func Order() *big.Int { return new(big.Int).Set(groupOrder) }
