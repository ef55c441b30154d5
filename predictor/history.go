package predictor

// mask returns 2^bits - 1 for 0 <= bits <= 32.
func mask(bits int) uint32 {
	if bits >= 32 {
		return ^uint32(0)
	}
	return uint32(1)<<uint(bits) - 1
}

// shiftIn pushes an outcome into the low bit of a history register.
func shiftIn(history uint32, o Outcome, m uint32) uint32 {
	return ((history << 1) | uint32(o)) & m
}
