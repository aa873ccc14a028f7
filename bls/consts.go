package bls

const (
	// BLS12-381 G1 ciphersuite parameters. The pairing is never used; G1 serves
	// as a prime-order discrete-log group.
	CiphersuiteID      = "GIC_V1_BLS12381G1_XOF:SHAKE-256_"
	GroupName          = "BLS12-381 G1"
	HashID             = "XOF:SHAKE-256"
	OctetScalarLength  = 32
	OctetPointLength   = 48
	ExpandLen          = 48
	ChallengeDST       = CiphersuiteID + "CHALLENGE_"
	ContributionDST    = CiphersuiteID + "CONTRIBUTION_"
	OctetChallengeSize = OctetScalarLength
)
