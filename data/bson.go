package data

import (
	"encoding/binary"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// parseBSON reads one or more length-prefixed BSON documents laid end
// to end (the output of mongodump or a single-document export).
func parseBSON(raw []byte) ([]Row, error) {
	var rows []Row
	offset := 0
	for offset+4 <= len(raw) {
		size := int(int32(binary.LittleEndian.Uint32(raw[offset : offset+4])))
		if size <= 0 || offset+size > len(raw) {
			break
		}

		var doc bson.D
		if err := bson.Unmarshal(raw[offset:offset+size], &doc); err != nil {
			break
		}
		if row, ok := normalizeBSON(doc).(map[string]any); ok {
			rows = append(rows, Row(row))
		}
		offset += size
	}

	if len(rows) == 0 {
		return nil, errors.New("could not parse BSON data")
	}
	return rows, nil
}

// normalizeBSON converts driver types into plain Go values that encode
// cleanly as JSON.
func normalizeBSON(v any) any {
	switch x := v.(type) {
	case primitive.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = normalizeBSON(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]any, len(x))
		for k, val := range x {
			m[k] = normalizeBSON(val)
		}
		return m
	case primitive.A:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = normalizeBSON(val)
		}
		return out
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Timestamp:
		return time.Unix(int64(x.T), 0).UTC()
	case primitive.Decimal128:
		return x.String()
	case primitive.Binary:
		return x.Data
	case primitive.Regex:
		return x.String()
	case primitive.Null, primitive.Undefined:
		return nil
	case int32:
		return int64(x)
	default:
		return x
	}
}
