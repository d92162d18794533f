package a1c

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// DumpJSON renders item as ASCII-only JSON for debugging and logging.
// The mapping is lossy and intentionally non-roundtrippable: bytes are
// base64-encoded, and types with no natural JSON counterpart (float16,
// simple, tag, undefined) are wrapped in a {"type": ...} object so a
// reader can tell what was collapsed. Decode(DumpJSON(x)) is not a
// supported operation.
func DumpJSON(item *Item) string {
	var sb strings.Builder
	writeJSON(&sb, item)
	return sb.String()
}

func writeJSON(sb *strings.Builder, item *Item) {
	if item == nil {
		sb.WriteString("null")
		return
	}
	switch item.Type {
	case TypeInt64:
		sb.WriteString(strconv.FormatInt(item.Int64, 10))
	case TypeBoolean:
		if item.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case TypeNull:
		sb.WriteString("null")
	case TypeUndefined:
		sb.WriteString(`{"type":"undefined"}`)
	case TypeBytes:
		sb.WriteString(`"`)
		sb.WriteString(base64.StdEncoding.EncodeToString(item.Bytes))
		sb.WriteString(`"`)
	case TypeString:
		writeJSONString(sb, item.Str)
	case TypeFloat16:
		fmt.Fprintf(sb, `{"type":"float16","bits":%d}`, item.Float16)
	case TypeFloat32:
		fmt.Fprintf(sb, "%v", float64(item.Float32))
	case TypeFloat64:
		fmt.Fprintf(sb, "%v", item.Float64)
	case TypeSimple:
		fmt.Fprintf(sb, `{"type":"simple","value":%d}`, item.Simple)
	case TypeArray:
		sb.WriteByte('[')
		for i := range item.Array {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSON(sb, &item.Array[i])
		}
		sb.WriteByte(']')
	case TypeMap:
		sb.WriteByte('{')
		for i := range item.Map {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeJSONString(sb, mapKeyString(&item.Map[i].Key))
			sb.WriteByte(':')
			writeJSON(sb, &item.Map[i].Val)
		}
		sb.WriteByte('}')
	case TypeTag:
		fmt.Fprintf(sb, `{"type":"tag","number":%d,"value":`, item.TagVal.Number)
		writeJSON(sb, item.TagVal.Item)
		sb.WriteByte('}')
	default:
		sb.WriteString("null")
	}
}

// mapKeyString renders a map key as a JSON object-key string even when
// the source key wasn't itself a CBOR text string (JSON requires
// string keys; A1C maps do not).
func mapKeyString(key *Item) string {
	if key.Type == TypeString {
		return key.Str
	}
	return DumpJSON(key)
}

func writeJSONString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r > 0xffff:
			// JSON \u escapes carry exactly four hex digits; runes past
			// the BMP need a UTF-16 surrogate pair.
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(sb, `\u%04x\u%04x`, hi, lo)
		case r < 0x20 || r > 0x7e:
			fmt.Fprintf(sb, `\u%04x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
}
