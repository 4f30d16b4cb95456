package types

import (
	"encoding/json"
	"fmt"

	collcodec "cosmossdk.io/collections/codec"
)

// JSONValue is a collections value codec for plain Go state types. The stored
// form is canonical JSON, which is deterministic for the struct and slice
// shapes used by this module.
func JSONValue[T any](name string) collcodec.ValueCodec[T] {
	return jsonValueCodec[T]{name: name}
}

type jsonValueCodec[T any] struct {
	name string
}

func (c jsonValueCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (c jsonValueCodec[T]) Decode(b []byte) (T, error) {
	var value T
	if err := json.Unmarshal(b, &value); err != nil {
		return value, fmt.Errorf("decode %s: %w", c.name, err)
	}
	return value, nil
}

func (c jsonValueCodec[T]) EncodeJSON(value T) ([]byte, error) {
	return c.Encode(value)
}

func (c jsonValueCodec[T]) DecodeJSON(b []byte) (T, error) {
	return c.Decode(b)
}

func (c jsonValueCodec[T]) Stringify(value T) string {
	bz, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%s(%v)", c.name, err)
	}
	return string(bz)
}

func (c jsonValueCodec[T]) ValueType() string {
	return "json/" + c.name
}

var (
	ParamsValue            = JSONValue[Params]("distance.Params")
	EvaluationPoolValue    = JSONValue[EvaluationPool]("distance.EvaluationPool")
	EvaluationRequestValue = JSONValue[EvaluationRequest]("distance.EvaluationRequest")
	DistanceStatusValue    = JSONValue[DistanceStatus]("distance.DistanceStatus")
)
