package a1c

import "math"

func (d *Decoder) decodeUint(item *Item, info byte) error {
	val, indefinite, err := d.readHeaderArg(info)
	if err != nil {
		return err
	}
	if indefinite {
		return d.fail(ErrInvalidItemHeader, item)
	}
	if val > math.MaxInt64 {
		return d.fail(ErrLargeIntegersUnsupported, item)
	}
	item.Type = TypeInt64
	item.Int64 = int64(val)
	return nil
}

func (d *Decoder) decodeNegInt(item *Item, info byte) error {
	val, indefinite, err := d.readHeaderArg(info)
	if err != nil {
		return err
	}
	if indefinite {
		return d.fail(ErrInvalidItemHeader, item)
	}
	// CBOR negative integers encode -(1 + val); reject if that would
	// overflow int64.
	if val > math.MaxInt64 {
		return d.fail(ErrLargeIntegersUnsupported, item)
	}
	item.Type = TypeInt64
	item.Int64 = -1 - int64(val)
	return nil
}
