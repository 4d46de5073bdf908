// Package snapshot encodes the durable-storage envelope: a JSON object
// holding the serialized database as an array of unsigned byte values,
// `{"data":[104,101,...]}`. The shape is fixed by the storage slot contract;
// previously saved envelopes must keep decoding.
package snapshot

import (
	"encoding/json"
	"fmt"
)

// envelope carries bytes as JSON numbers. A []byte field would marshal to
// base64, which existing saved slots do not use.
type envelope struct {
	Data []int `json:"data"`
}

// Encode wraps snapshot bytes in the storage envelope.
func Encode(data []byte) []byte {
	env := envelope{Data: make([]int, len(data))}
	for i, b := range data {
		env.Data[i] = int(b)
	}
	// Marshaling a struct of ints cannot fail.
	out, _ := json.Marshal(env)
	return out
}

// Decode unwraps a storage envelope back into snapshot bytes. Values outside
// the unsigned byte range mark the envelope as corrupt.
func Decode(raw []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse envelope: %w", err)
	}

	data := make([]byte, len(env.Data))
	for i, v := range env.Data {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("envelope byte %d out of range: %d", i, v)
		}
		data[i] = byte(v)
	}
	return data, nil
}
