package invoke

import (
	"math/big"

	"github.com/pkg/errors"
)

var limbMask = new(big.Int).SetUint64(^uint64(0))

// toLimbs splits an integer into 64 bit limbs, most significant first, using two's
// complement for signed values
func toLimbs(v *big.Int, limbs int, signed bool) ([]uint64, error) {
	bits := uint(limbs * 64)
	min := big.NewInt(0)
	max := new(big.Int).Lsh(big.NewInt(1), bits)
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), bits-1)
		min = new(big.Int).Neg(half)
		max = half
	}
	if v.Cmp(min) < 0 || v.Cmp(max) >= 0 {
		return nil, errors.Errorf("%s does not fit in %d bits", v.String(), bits)
	}

	n := new(big.Int).Set(v)
	if n.Sign() < 0 {
		n.Add(n, new(big.Int).Lsh(big.NewInt(1), bits))
	}

	out := make([]uint64, limbs)
	for i := limbs - 1; i >= 0; i-- {
		out[i] = new(big.Int).And(n, limbMask).Uint64()
		n.Rsh(n, 64)
	}

	return out, nil
}

// fromLimbs is the inverse of toLimbs
func fromLimbs(limbs []uint64, signed bool) *big.Int {
	n := big.NewInt(0)
	for _, limb := range limbs {
		n.Lsh(n, 64)
		n.Or(n, new(big.Int).SetUint64(limb))
	}

	bits := uint(len(limbs) * 64)
	if signed && len(limbs) > 0 && limbs[0]>>63 == 1 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), bits))
	}

	return n
}
