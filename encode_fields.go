package budget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// orderedObject builds a JSON object whose keys keep their insertion order.
// The first marshalling error sticks and is returned by MarshalJSON.
type orderedObject struct {
	buf bytes.Buffer
	err error
}

// Set appends key with value, even when value is zero.
func (o *orderedObject) Set(key string, value any) *orderedObject {
	if o.err != nil {
		return o
	}
	data, err := json.Marshal(value)
	if err != nil {
		o.err = fmt.Errorf("cannot encode %q: %w", key, err)
		return o
	}
	if o.buf.Len() > 0 {
		o.buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	o.buf.Write(k)
	o.buf.WriteByte(':')
	o.buf.Write(data)
	return o
}

// SetNonZero appends key unless value is zero, a nil pointer included.
func (o *orderedObject) SetNonZero(key string, value any) *orderedObject {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return o
	}
	return o.Set(key, value)
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	out := make([]byte, 0, o.buf.Len()+2)
	out = append(out, '{')
	out = append(out, o.buf.Bytes()...)
	return append(out, '}'), nil
}
