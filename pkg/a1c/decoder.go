package a1c

import (
	"github.com/openzl-go/openzl/pkg/arena"
)

// MaxDepthDefault is used when DecoderConfig.MaxDepth is 0.
const MaxDepthDefault = 128

// DecoderConfig controls decode-time behavior.
type DecoderConfig struct {
	// MaxDepth bounds recursion; 0 means MaxDepthDefault.
	MaxDepth int
	// LimitBytes bounds total arena allocation for this decode; 0 means
	// unlimited.
	LimitBytes int
	// ReferenceSource, if true, makes bytes items reference the input
	// buffer instead of copying into the arena; string items skip the
	// arena but are still copied by Go's string conversion.
	ReferenceSource bool
	// RejectUnknownSimple forbids non-standard simple values.
	RejectUnknownSimple bool
}

// Decoder streams a CBOR byte buffer into an Item tree.
type Decoder struct {
	arena    arena.Arena
	limited  *arena.Limited
	cfg      DecoderConfig
	maxDepth int

	data  []byte
	pos   int
	depth int
	err   *Error
}

// NewDecoder initializes a Decoder that allocates copied buffers (when
// ReferenceSource is false) in backing.
func NewDecoder(backing arena.Arena, cfg DecoderConfig) *Decoder {
	maxDepth := cfg.MaxDepth
	if maxDepth == 0 {
		maxDepth = MaxDepthDefault
	}
	d := &Decoder{cfg: cfg, maxDepth: maxDepth}
	if cfg.LimitBytes > 0 {
		d.limited = arena.NewLimited(backing, cfg.LimitBytes)
		d.arena = d.limited
	} else {
		d.arena = backing
	}
	return d
}

// Decode parses the CBOR item encoded in data. Trailing bytes are not
// allowed. Returns the decoded item, or nil plus the decoder's
// recorded Error on failure.
func (d *Decoder) Decode(data []byte) (*Item, error) {
	d.data = data
	d.pos = 0
	d.depth = 0
	d.err = nil

	item, err := d.decodeItem(nil)
	if err != nil {
		d.err = err.(*Error)
		return nil, err
	}
	if d.pos != len(d.data) {
		d.err = newErr(ErrTrailingData, d.pos, d.depth, item)
		return nil, d.err
	}
	return item, nil
}

// Error returns the error from the last failed Decode call, or nil.
func (d *Decoder) Error() *Error { return d.err }

func (d *Decoder) fail(typ ErrorType, item *Item) error {
	return newErr(typ, d.pos, d.depth, item)
}

func (d *Decoder) need(n int) bool { return d.pos+n <= len(d.data) }

func (d *Decoder) decodeItem(parent *Item) (*Item, error) {
	if d.depth > d.maxDepth {
		return nil, d.fail(ErrMaxDepthExceeded, parent)
	}
	if !d.need(1) {
		return nil, d.fail(ErrTruncated, parent)
	}
	head := d.data[d.pos]
	major := head >> 5
	info := head & 0x1f

	item := &Item{Parent: parent}
	var err error
	switch major {
	case 0:
		err = d.decodeUint(item, info)
	case 1:
		err = d.decodeNegInt(item, info)
	case 2:
		err = d.decodeBytes(item, info)
	case 3:
		err = d.decodeString(item, info)
	case 4:
		err = d.decodeArray(item, info)
	case 5:
		err = d.decodeMap(item, info)
	case 6:
		err = d.decodeTag(item, info)
	case 7:
		err = d.decodeSimpleOrFloat(item, info)
	default:
		err = d.fail(ErrInvalidItemHeader, parent)
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// readHeaderArg reads the argument that follows a major-type/info byte:
// info<24 is the literal value; 24/25/26/27 mean 1/2/4/8 following
// bytes; 31 signals indefinite length; anything else is invalid.
// indefinite is true (and val is 0) for the indefinite-length sentinel.
func (d *Decoder) readHeaderArg(info byte) (val uint64, indefinite bool, err error) {
	d.pos++ // consume the head byte
	switch {
	case info < 24:
		return uint64(info), false, nil
	case info == 24:
		if !d.need(1) {
			return 0, false, d.fail(ErrTruncated, nil)
		}
		v := uint64(d.data[d.pos])
		d.pos++
		return v, false, nil
	case info == 25:
		if !d.need(2) {
			return 0, false, d.fail(ErrTruncated, nil)
		}
		v := uint64(d.data[d.pos])<<8 | uint64(d.data[d.pos+1])
		d.pos += 2
		return v, false, nil
	case info == 26:
		if !d.need(4) {
			return 0, false, d.fail(ErrTruncated, nil)
		}
		v := uint64(0)
		for i := 0; i < 4; i++ {
			v = v<<8 | uint64(d.data[d.pos+i])
		}
		d.pos += 4
		return v, false, nil
	case info == 27:
		if !d.need(8) {
			return 0, false, d.fail(ErrTruncated, nil)
		}
		v := uint64(0)
		for i := 0; i < 8; i++ {
			v = v<<8 | uint64(d.data[d.pos+i])
		}
		d.pos += 8
		return v, false, nil
	case info == 31:
		return 0, true, nil
	default:
		return 0, false, d.fail(ErrInvalidItemHeader, nil)
	}
}
