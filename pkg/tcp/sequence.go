// Package tcp implements the reliability, ordering and flow-control core of
// a userspace TCP endpoint: byte streams, the receive-side reassembler,
// sequence-number conversion, and the receiver/sender halves of a
// connection. Nothing in this package blocks, suspends or performs I/O.
package tcp

// AbsoluteSeq is a 64-bit non-wrapping index into the logical stream
// [SYN][payload bytes...][FIN]. Index 0 is the notional position of SYN;
// index 1 is the first payload byte.
type AbsoluteSeq uint64

// Seq32 is a 32-bit on-the-wire sequence number.
type Seq32 uint32

const seqSpace = uint64(1) << 32

// Wrap maps an absolute sequence number onto the wire, relative to isn.
func Wrap(abs AbsoluteSeq, isn Seq32) Seq32 {
	return isn + Seq32(uint32(abs))
}

// Unwrap returns the unique absolute sequence number that wraps to rel and
// is closest to checkpoint, breaking ties toward the larger value.
func Unwrap(rel, isn Seq32, checkpoint AbsoluteSeq) AbsoluteSeq {
	offset := uint64(uint32(rel - isn))
	if uint64(checkpoint) <= offset {
		return AbsoluteSeq(offset)
	}
	k := (uint64(checkpoint) - offset + seqSpace/2) / seqSpace
	return AbsoluteSeq(k*seqSpace + offset)
}
