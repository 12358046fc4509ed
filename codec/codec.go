// Package codec turns snapshot payloads into bytes and back.
//
// The name of the codec is stored in every snapshot header and selects
// the decoder on load. A name must keep producing the same format once
// snapshots written with it exist.
package codec

import "slices"

// Codec is a named, concurrency-safe value encoding.
type Codec interface {
	Name() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Default encodes new snapshots.
var Default Codec = GoJSON{}

var builtin = []Codec{JSON{}, GoJSON{}}

// ByName looks up a built-in codec.
func ByName(name string) (Codec, bool) {
	i := slices.IndexFunc(builtin, func(c Codec) bool { return c.Name() == name })
	if i < 0 {
		return nil, false
	}
	return builtin[i], true
}

// Names lists the built-in codecs.
func Names() []string {
	names := make([]string, len(builtin))
	for i, c := range builtin {
		names[i] = c.Name()
	}
	return names
}
