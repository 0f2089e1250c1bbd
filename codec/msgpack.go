package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes values with vmihailenco/msgpack/v5. It is the frame
// format of the redis sync bus and a compact alternative to JSON for the
// engine's compressed storage path. The zero value is ready to use.
//
// Struct tags differ from JSON; use `msgpack:"name"` tags when field names
// must be explicit (SyncMessage carries both).
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) { return msgpack.Marshal(v) }
func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
