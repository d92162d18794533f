package a1c

func (d *Decoder) decodeMap(item *Item, info byte) error {
	val, indefinite, err := d.readHeaderArg(info)
	if err != nil {
		return err
	}
	d.depth++
	defer func() { d.depth-- }()

	item.Type = TypeMap
	if indefinite {
		var pairs []Pair
		for {
			if !d.need(1) {
				return d.fail(ErrTruncated, item)
			}
			if d.data[d.pos] == 0xff {
				d.pos++
				break
			}
			key, err := d.decodeItem(item)
			if err != nil {
				return err
			}
			val, err := d.decodeItem(item)
			if err != nil {
				return err
			}
			pairs = append(pairs, Pair{Key: *key, Val: *val})
		}
		item.Map = pairs
		return nil
	}

	n := int(val)
	// Each pair costs at least two bytes, so a count past that bound
	// cannot be satisfied by the remaining input.
	if n > (len(d.data)-d.pos)/2 {
		return d.fail(ErrTruncated, item)
	}
	pairs := make([]Pair, 0, n)
	for i := 0; i < n; i++ {
		key, err := d.decodeItem(item)
		if err != nil {
			return err
		}
		v, err := d.decodeItem(item)
		if err != nil {
			return err
		}
		pairs = append(pairs, Pair{Key: *key, Val: *v})
	}
	item.Map = pairs
	return nil
}
