// Package jsoncodec centralises JSON encoding so every component of the
// service serialises payloads the same way.
package jsoncodec

import "github.com/bytedance/sonic"

var codec = sonic.ConfigStd

// Marshal encodes v using the shared codec configuration.
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// Unmarshal decodes data into v using the shared codec configuration.
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}

// Valid reports whether data is syntactically valid JSON.
func Valid(data []byte) bool {
	return codec.Valid(data)
}
