package litematic

// Pack stores each value in bits bits. The result has one word more than
// strictly needed so an index ending exactly on the final word boundary
// never writes out of range.
func Pack(values []int, bits int) []int64 {
	words := make([]uint64, (len(values)*bits+63)/64+1)

	for i, v := range values {
		offset := i * bits
		word, shift := offset/64, uint(offset%64)

		words[word] |= uint64(v) << shift
		if int(shift)+bits > 64 {
			words[word+1] |= uint64(v) >> (64 - shift)
		}
	}

	packed := make([]int64, len(words))
	for i, w := range words {
		packed[i] = int64(w)
	}
	return packed
}

// Unpack reverses Pack returning n values.
func Unpack(packed []int64, bits, n int) []int {
	mask := uint64(1)<<uint(bits) - 1
	values := make([]int, n)

	for i := range values {
		offset := i * bits
		word, shift := offset/64, uint(offset%64)

		v := uint64(packed[word]) >> shift
		if int(shift)+bits > 64 {
			v |= uint64(packed[word+1]) << (64 - shift)
		}
		values[i] = int(v & mask)
	}
	return values
}
