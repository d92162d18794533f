package a1c

import "math"

// Encoder serializes an Item tree to CBOR using the shortest-form
// header encoding for every value, so that Encode(Decode(b)) == b for
// any buffer produced by Encode itself. It holds no
// state beyond the output buffer; a zero Encoder is ready to use.
type Encoder struct {
	buf []byte
}

// Encode serializes item and returns the encoded bytes.
func Encode(item *Item) ([]byte, error) {
	e := &Encoder{}
	if err := e.encodeItem(item); err != nil {
		return nil, err
	}
	return e.buf, nil
}

func (e *Encoder) writeHeader(major byte, val uint64) {
	switch {
	case val < 24:
		e.buf = append(e.buf, major<<5|byte(val))
	case val <= 0xff:
		e.buf = append(e.buf, major<<5|24, byte(val))
	case val <= 0xffff:
		e.buf = append(e.buf, major<<5|25, byte(val>>8), byte(val))
	case val <= 0xffffffff:
		e.buf = append(e.buf, major<<5|26,
			byte(val>>24), byte(val>>16), byte(val>>8), byte(val))
	default:
		e.buf = append(e.buf, major<<5|27,
			byte(val>>56), byte(val>>48), byte(val>>40), byte(val>>32),
			byte(val>>24), byte(val>>16), byte(val>>8), byte(val))
	}
}

func (e *Encoder) encodeItem(item *Item) error {
	if item == nil {
		return newErr(ErrFormatError, len(e.buf), 0, nil)
	}
	switch item.Type {
	case TypeInt64:
		if item.Int64 >= 0 {
			e.writeHeader(0, uint64(item.Int64))
		} else {
			e.writeHeader(1, uint64(-1-item.Int64))
		}
	case TypeBytes:
		e.writeHeader(2, uint64(len(item.Bytes)))
		e.buf = append(e.buf, item.Bytes...)
	case TypeString:
		e.writeHeader(3, uint64(len(item.Str)))
		e.buf = append(e.buf, item.Str...)
	case TypeArray:
		e.writeHeader(4, uint64(len(item.Array)))
		for i := range item.Array {
			if err := e.encodeItem(&item.Array[i]); err != nil {
				return err
			}
		}
	case TypeMap:
		e.writeHeader(5, uint64(len(item.Map)))
		for i := range item.Map {
			if err := e.encodeItem(&item.Map[i].Key); err != nil {
				return err
			}
			if err := e.encodeItem(&item.Map[i].Val); err != nil {
				return err
			}
		}
	case TypeTag:
		e.writeHeader(6, item.TagVal.Number)
		if err := e.encodeItem(item.TagVal.Item); err != nil {
			return err
		}
	case TypeBoolean:
		if item.Bool {
			e.buf = append(e.buf, 7<<5|21)
		} else {
			e.buf = append(e.buf, 7<<5|20)
		}
	case TypeNull:
		e.buf = append(e.buf, 7<<5|22)
	case TypeUndefined:
		e.buf = append(e.buf, 7<<5|23)
	case TypeFloat16:
		e.buf = append(e.buf, 7<<5|25, byte(item.Float16>>8), byte(item.Float16))
	case TypeFloat32:
		bits := math.Float32bits(item.Float32)
		e.buf = append(e.buf, 7<<5|26,
			byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
	case TypeFloat64:
		bits := math.Float64bits(item.Float64)
		e.buf = append(e.buf, 7<<5|27,
			byte(bits>>56), byte(bits>>48), byte(bits>>40), byte(bits>>32),
			byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
	case TypeSimple:
		if item.Simple < 24 {
			e.buf = append(e.buf, 7<<5|item.Simple)
		} else {
			e.buf = append(e.buf, 7<<5|24, item.Simple)
		}
	default:
		return newErr(ErrFormatError, len(e.buf), 0, item)
	}
	return nil
}
