package a1c

func (d *Decoder) decodeBytes(item *Item, info byte) error {
	val, indefinite, err := d.readHeaderArg(info)
	if err != nil {
		return err
	}
	if indefinite {
		return d.decodeIndefiniteBytes(item)
	}
	n := int(val)
	if !d.need(n) {
		return d.fail(ErrTruncated, item)
	}
	chunk := d.data[d.pos : d.pos+n]
	d.pos += n
	return d.setBytesFromChunk(item, chunk)
}

func (d *Decoder) setBytesFromChunk(item *Item, chunk []byte) error {
	if d.cfg.ReferenceSource {
		item.Type = TypeBytes
		item.Bytes = chunk
		return nil
	}
	buf, err := d.arena.Alloc(len(chunk))
	if err != nil {
		return d.fail(ErrBadAlloc, item)
	}
	copy(buf, chunk)
	item.Type = TypeBytes
	item.Bytes = buf
	return nil
}

// decodeIndefiniteBytes reassembles an indefinite-length byte string
// from definite-length chunks of the same major type, terminated by a
// "break" header.
func (d *Decoder) decodeIndefiniteBytes(item *Item) error {
	var total []byte
	for {
		if !d.need(1) {
			return d.fail(ErrTruncated, item)
		}
		head := d.data[d.pos]
		if head == 0xff { // break
			d.pos++
			break
		}
		major := head >> 5
		info := head & 0x1f
		if major != 2 {
			return d.fail(ErrInvalidChunkedString, item)
		}
		val, chunkIndefinite, err := d.readHeaderArg(info)
		if err != nil {
			return err
		}
		if chunkIndefinite {
			return d.fail(ErrInvalidChunkedString, item)
		}
		n := int(val)
		if !d.need(n) {
			return d.fail(ErrTruncated, item)
		}
		total = append(total, d.data[d.pos:d.pos+n]...)
		d.pos += n
	}
	return d.setBytesFromChunk(item, total)
}
