package a1c

func (d *Decoder) decodeTag(item *Item, info byte) error {
	val, indefinite, err := d.readHeaderArg(info)
	if err != nil {
		return err
	}
	if indefinite {
		return d.fail(ErrInvalidItemHeader, item)
	}
	d.depth++
	defer func() { d.depth-- }()

	child, err := d.decodeItem(item)
	if err != nil {
		return err
	}
	item.Type = TypeTag
	item.TagVal = Tag{Number: val, Item: child}
	return nil
}

// PeekTag returns the tag number of item, or ok=false if item is not
// a tag; callers branch on well-known tag numbers before committing to
// walk the tagged child.
func PeekTag(item *Item) (uint64, bool) {
	if item == nil || item.Type != TypeTag {
		return 0, false
	}
	return item.TagVal.Number, true
}
