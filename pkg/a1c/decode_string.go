package a1c

func (d *Decoder) decodeString(item *Item, info byte) error {
	val, indefinite, err := d.readHeaderArg(info)
	if err != nil {
		return err
	}
	if indefinite {
		return d.decodeIndefiniteString(item)
	}
	n := int(val)
	if !d.need(n) {
		return d.fail(ErrTruncated, item)
	}
	chunk := d.data[d.pos : d.pos+n]
	d.pos += n
	return d.setStringFromChunk(item, chunk)
}

func (d *Decoder) setStringFromChunk(item *Item, chunk []byte) error {
	if d.cfg.ReferenceSource {
		// The string conversion itself copies, so reference mode only
		// skips the arena round-trip for strings; Bytes items are the
		// ones that truly alias the input.
		item.Type = TypeString
		item.Str = string(chunk)
		return nil
	}
	buf, err := d.arena.Alloc(len(chunk))
	if err != nil {
		return d.fail(ErrBadAlloc, item)
	}
	copy(buf, chunk)
	item.Type = TypeString
	item.Str = string(buf)
	return nil
}

// decodeIndefiniteString reassembles an indefinite-length text string
// from definite-length chunks of the same major type.
func (d *Decoder) decodeIndefiniteString(item *Item) error {
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
		if major != 3 {
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
	return d.setStringFromChunk(item, total)
}
