package codec

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal maps the two's-complement big-endian unscaled integer stored in
// bytes (size 0) or a fixed of the given size to decimal.Decimal.
func Decimal(precision, scale, size int) (Codec, error) {
	if precision < 0 || scale < 0 || (precision > 0 && scale > precision) {
		return nil, fmt.Errorf("codec: invalid decimal precision %d scale %d", precision, scale)
	}
	return decimalCodec{precision: precision, scale: scale, size: size}, nil
}

type decimalCodec struct {
	precision int
	scale     int
	size      int
}

func (c decimalCodec) FromValue(v any) (any, error) {
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("expected []byte, got %T", v)
	}
	if c.size > 0 && len(b) != c.size {
		return nil, fmt.Errorf("expected %d bytes, got %d", c.size, len(b))
	}
	return decimal.NewFromBigInt(fromTwosComplement(b), -int32(c.scale)), nil
}

func (c decimalCodec) ToValue(v any) (any, error) {
	var d decimal.Decimal
	switch x := v.(type) {
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return nil, fmt.Errorf("nil decimal")
		}
		d = *x
	default:
		return nil, fmt.Errorf("expected decimal.Decimal, got %T", v)
	}
	unscaled := d.Shift(int32(c.scale))
	if !unscaled.Equal(unscaled.Truncate(0)) {
		return nil, fmt.Errorf("%s has more than %d fractional digits", d, c.scale)
	}
	bi := unscaled.BigInt()
	if c.precision > 0 && len(new(big.Int).Abs(bi).String()) > c.precision {
		return nil, fmt.Errorf("%s exceeds precision %d", d, c.precision)
	}
	return toTwosComplement(bi, c.size)
}

func fromTwosComplement(b []byte) *big.Int {
	bi := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		bi.Sub(bi, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return bi
}

// toTwosComplement emits the minimal encoding, sign-extended to size when size
// is positive.
func toTwosComplement(bi *big.Int, size int) ([]byte, error) {
	var b []byte
	if bi.Sign() >= 0 {
		b = bi.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
	} else {
		m := new(big.Int).Neg(bi)
		m.Sub(m, big.NewInt(1))
		n := m.BitLen()/8 + 1
		x := new(big.Int).Lsh(big.NewInt(1), uint(n*8))
		b = x.Add(x, bi).Bytes()
	}
	if size <= 0 {
		return b, nil
	}
	if len(b) > size {
		return nil, fmt.Errorf("value needs %d bytes, fixed size is %d", len(b), size)
	}
	pad := byte(0)
	if bi.Sign() < 0 {
		pad = 0xff
	}
	out := make([]byte, size)
	for i := range size - len(b) {
		out[i] = pad
	}
	copy(out[size-len(b):], b)
	return out, nil
}
