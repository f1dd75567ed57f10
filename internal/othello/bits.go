package othello

// Symmetry helpers over 64-bit disc sets. Bit i is field i (row = i/8, col = i%8).

func flipHorizontally(x uint64) uint64 {
	const (
		k1 = 0x5555555555555555
		k2 = 0x3333333333333333
		k4 = 0x0F0F0F0F0F0F0F0F
	)
	x = ((x >> 1) & k1) | ((x & k1) << 1)
	x = ((x >> 2) & k2) | ((x & k2) << 2)
	x = ((x >> 4) & k4) | ((x & k4) << 4)
	return x
}

func flipVertically(x uint64) uint64 {
	const (
		k1 = 0x00FF00FF00FF00FF
		k2 = 0x0000FFFF0000FFFF
	)
	x = ((x >> 8) & k1) | ((x & k1) << 8)
	x = ((x >> 16) & k2) | ((x & k2) << 16)
	x = (x >> 32) | (x << 32)
	return x
}

func flipDiagonally(x uint64) uint64 {
	const (
		k1 = 0x5500550055005500
		k2 = 0x3333000033330000
		k4 = 0x0F0F0F0F00000000
	)
	t := k4 & (x ^ (x << 28))
	x ^= t ^ (t >> 28)
	t = k2 & (x ^ (x << 14))
	x ^= t ^ (t >> 14)
	t = k1 & (x ^ (x << 7))
	x ^= t ^ (t >> 7)
	return x
}

// Rotate applies one of the 8 board symmetries. Bit 0 of rotation mirrors
// horizontally, bit 1 vertically, bit 2 along the diagonal, in that order.
func Rotate(x uint64, rotation int) uint64 {
	if rotation&1 != 0 {
		x = flipHorizontally(x)
	}
	if rotation&2 != 0 {
		x = flipVertically(x)
	}
	if rotation&4 != 0 {
		x = flipDiagonally(x)
	}
	return x
}

// Unrotate is the inverse of Rotate for the same rotation value.
func Unrotate(x uint64, rotation int) uint64 {
	if rotation&4 != 0 {
		x = flipDiagonally(x)
	}
	if rotation&2 != 0 {
		x = flipVertically(x)
	}
	if rotation&1 != 0 {
		x = flipHorizontally(x)
	}
	return x
}
