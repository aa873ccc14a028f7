package bls

import (
	gic "github.com/Iscaraca/gic"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// mapToScalarAsHash
//
// Inputs:
// - msg, an octet string.
// - dst, an octet string representing the domain separation tag.
//
// Outputs:
// - scalar, a scalar.
//
// Procedure:
// 1. uniform_bytes = expand_message(msg, dst, expand_len)
// 2. scalar = OS2IP(uniform_bytes) mod r
// 3. if scalar == 0, return INVALID
// 4. return scalar
func mapToScalarAsHash(msg []byte, dst []byte) (fr.Element, error) {
	var scalar fr.Element

	// 1. uniform_bytes = expand_message(msg, dst, expand_len)
	uniformBytes := gic.ExpandMessageXOF(msg, dst, ExpandLen)

	// 2. scalar = OS2IP(uniform_bytes) mod r
	scalar.SetBytes(uniformBytes)

	// 3. if scalar == 0, return INVALID
	if scalar.IsZero() {
		return scalar, gic.Errorf(gic.ErrDomainMismatch, "scalar is zero")
	}

	// 4. return scalar
	return scalar, nil
}

// hashToScalar uses map_to_scalar_as_hash with the challenge DST by default.
func hashToScalar(msg []byte, dst []byte) (fr.Element, error) {
	if dst == nil {
		dst = []byte(ChallengeDST)
	}
	return mapToScalarAsHash(msg, dst)
}
