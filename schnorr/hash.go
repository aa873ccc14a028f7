package schnorr

import (
	"math/big"

	gic "github.com/Iscaraca/gic"
)

// hashToScalar maps msg to a non-zero element of Z_n:
//
//	OS2IP(expand_message_xof(msg, dst, ExpandLen)) mod n
func hashToScalar(msg, dst []byte) (*big.Int, error) {
	s := gic.OS2IP(gic.ExpandMessageXOF(msg, dst, ExpandLen))
	s.Mod(s, groupOrder)
	if s.Sign() == 0 {
		return nil, gic.Errorf(gic.ErrDomainMismatch, "scalar is zero")
	}
	return s, nil
}
