package strintern

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/RowanDark/strintern/symbol"
)

// ErrDuplicateEntry is returned when decoding a string list that repeats a
// value. Symbols are positional, so such a list cannot be restored.
var ErrDuplicateEntry = errors.New("strintern: duplicate entry in encoded interner")

// Serialized forms carry only the ordered strings; symbols are derived from
// positions when decoding. Decoding replaces the receiver's contents and
// keeps its hashing strategy.

// MarshalJSON encodes the interner as a JSON array of strings.
func (in *StringInterner[S]) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.Strings())
}

// UnmarshalJSON restores an interner encoded by MarshalJSON.
func (in *StringInterner[S]) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	return in.restore(values)
}

// MarshalYAML encodes the interner as a YAML sequence.
func (in *StringInterner[S]) MarshalYAML() (interface{}, error) {
	return in.Strings(), nil
}

// UnmarshalYAML restores an interner encoded by MarshalYAML.
func (in *StringInterner[S]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("strintern: expected YAML sequence, got %s", value.ShortTag())
	}
	var values []string
	if err := value.Decode(&values); err != nil {
		return err
	}
	return in.restore(values)
}

// EncodeMsgpack encodes the interner as a msgpack array of strings.
func (in *StringInterner[S]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(in.Len()); err != nil {
		return err
	}
	for s := range in.Values() {
		if err := enc.EncodeString(s); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack restores an interner encoded by EncodeMsgpack.
func (in *StringInterner[S]) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	in.init()
	in.Clear()
	if n <= 0 {
		return nil
	}
	in.Reserve(n)
	for i := 0; i < n; i++ {
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		if err := in.push(s, i); err != nil {
			return err
		}
	}
	return nil
}

func (in *StringInterner[S]) restore(values []string) error {
	in.init()
	in.Clear()
	in.Reserve(len(values))
	for i, s := range values {
		if err := in.push(s, i); err != nil {
			return err
		}
	}
	return nil
}

// push interns s and checks that it landed at position want.
func (in *StringInterner[S]) push(s string, want int) error {
	if _, err := symbol.FromCount[S](want); err != nil {
		in.Clear()
		return err
	}
	if got := in.GetOrIntern(s); int(got) != want {
		in.Clear()
		return fmt.Errorf("%w: %q at positions %d and %d", ErrDuplicateEntry, s, got, want)
	}
	return nil
}

// init makes a zero-value interner usable, so decoders can target a
// StringInterner that was declared rather than built with New.
func (in *StringInterner[S]) init() {
	if in.arena == nil {
		*in = *New[S]()
	}
}
