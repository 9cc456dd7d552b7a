package tcp

// Reassembler converts arbitrary, possibly overlapping, possibly
// out-of-order substrings of a byte stream into in-order bytes deposited
// into a downstream ByteStream. Its acceptance window at any instant is
// exactly the downstream stream's current available capacity.
type Reassembler struct {
	nextIndex  uint64
	pending    map[uint64]byte
	lastSeen   bool
	finalIndex uint64
}

// NewReassembler returns a Reassembler with next_index at the start of the
// payload stream (index 0, i.e. immediately after SYN).
func NewReassembler() *Reassembler {
	return &Reassembler{pending: make(map[uint64]byte)}
}

// Push accepts a substring data starting at the absolute index firstIndex
// (SYN excluded from this indexing). If last is set, the final byte of the
// stream is recorded as first_index+len(data), and writer is closed once
// next_index reaches that point.
func (r *Reassembler) Push(firstIndex uint64, data []byte, last bool, writer *ByteStream) {
	if last {
		r.lastSeen = true
		r.finalIndex = firstIndex + uint64(len(data))
		if len(data) == 0 && firstIndex == r.nextIndex {
			writer.Close()
		}
	}

	if firstIndex < r.nextIndex {
		drop := r.nextIndex - firstIndex
		if drop >= uint64(len(data)) {
			r.maybeClose(writer)
			return
		}
		data = data[drop:]
		firstIndex = r.nextIndex
	}
	if len(data) == 0 {
		r.maybeClose(writer)
		return
	}

	avail := uint64(writer.AvailableCapacity())
	offsetEnd := (firstIndex - r.nextIndex) + uint64(len(data))
	if offsetEnd > avail {
		over := offsetEnd - avail
		if over >= uint64(len(data)) {
			data = nil
		} else {
			data = data[:uint64(len(data))-over]
		}
	}

	for i, b := range data {
		idx := firstIndex + uint64(i)
		if _, ok := r.pending[idx]; !ok {
			r.pending[idx] = b
		}
	}

	r.drain(writer)
	r.maybeClose(writer)
}

// drain pushes the longest filled prefix of the pending buffer, starting at
// next_index, downstream in a single Push call.
func (r *Reassembler) drain(writer *ByteStream) {
	var ready []byte
	for {
		b, ok := r.pending[r.nextIndex+uint64(len(ready))]
		if !ok {
			break
		}
		ready = append(ready, b)
	}
	if len(ready) == 0 {
		return
	}
	for i := range ready {
		delete(r.pending, r.nextIndex+uint64(i))
	}
	admitted := writer.Push(ready)
	r.nextIndex += uint64(admitted)
}

func (r *Reassembler) maybeClose(writer *ByteStream) {
	if r.lastSeen && r.nextIndex >= r.finalIndex {
		writer.Close()
	}
}

// Pending reports the number of currently buffered out-of-order bytes.
func (r *Reassembler) Pending() int { return len(r.pending) }
