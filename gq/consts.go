package gq

const (
	CiphersuiteID = "GIC_V1_GQ_XOF:SHAKE-256_"
	HashID        = "XOF:SHAKE-256"

	// DefaultExponent is the public exponent v of KeyGen(s) = s^(-v) mod N.
	DefaultExponent = 65537

	// DefaultModulusBits is the modulus size selected for Level128.
	DefaultModulusBits = 3072
	MinModulusBits     = 512

	DefaultChallengeBits = 128
	MinChallengeBits     = 64
	MaxChallengeBits     = 256

	// samplingMargin extra random octets are reduced mod N so the result is
	// statistically close to uniform.
	samplingMargin = 16

	// primeRounds is the number of Miller-Rabin rounds run on each candidate.
	primeRounds = 20

	ChallengeDST    = CiphersuiteID + "CHALLENGE_"
	ContributionDST = CiphersuiteID + "CONTRIBUTION_"
)
