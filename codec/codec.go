// Package codec defines value (de)serialization used by the engine's
// compressed storage path and by sync transports.
package codec

// Codec encodes/decodes values V to []byte.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
