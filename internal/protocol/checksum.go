package protocol

// Checksum computes the XOR fold of a byte sequence. The result of an empty
// input is 0. Every outgoing frame carries Checksum(frame[:len-1]) as its
// last byte, and inbound frames are validated against the same fold.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}
