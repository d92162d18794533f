package a1c

import "math"

// decodeSimpleOrFloat handles CBOR major type 7: booleans, null,
// undefined, floats, and simple values.
func (d *Decoder) decodeSimpleOrFloat(item *Item, info byte) error {
	switch info {
	case 20, 21, 22, 23, 24, 25, 26, 27:
		// handled below, after consuming any trailing bytes via readHeaderArg
	case 31:
		return d.fail(ErrBreakNotAllowed, item)
	default:
		if info > 27 {
			return d.fail(ErrInvalidItemHeader, item)
		}
	}

	val, indefinite, err := d.readHeaderArg(info)
	if err != nil {
		return err
	}
	if indefinite {
		return d.fail(ErrBreakNotAllowed, item)
	}

	switch info {
	case 20:
		item.Type = TypeBoolean
		item.Bool = false
	case 21:
		item.Type = TypeBoolean
		item.Bool = true
	case 22:
		item.Type = TypeNull
	case 23:
		item.Type = TypeUndefined
	case 25:
		item.Type = TypeFloat16
		item.Float16 = uint16(val)
	case 26:
		item.Type = TypeFloat32
		item.Float32 = math.Float32frombits(uint32(val))
	case 27:
		item.Type = TypeFloat64
		item.Float64 = math.Float64frombits(val)
	default:
		// info < 20, or info == 24 (one-byte simple value)
		simple := uint8(val)
		if d.cfg.RejectUnknownSimple && !isStandardSimple(simple) {
			return d.fail(ErrInvalidSimpleValue, item)
		}
		item.Type = TypeSimple
		item.Simple = simple
	}
	return nil
}

// isStandardSimple reports whether v is one of false/true/null/undefined
// (20-23). Their short forms are dispatched separately by
// decodeSimpleOrFloat, so only their one-byte-argument encoding reaches
// here; every other simple value is non-standard.
func isStandardSimple(v uint8) bool {
	switch v {
	case 20, 21, 22, 23:
		return true
	default:
		return false
	}
}
