package bridge

import (
	"fmt"
	"reflect"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Decode converts an opaque bridge payload into out, which must be a pointer.
// In-process transports hand over typed structs; networked ones deliver
// map[string]any from JSON. Both are accepted.
func Decode(payload any, out any) error {
	if payload == nil {
		return fmt.Errorf("%w: empty payload", domain.ErrMalformedPayload)
	}

	target := reflect.ValueOf(out)
	if target.Kind() != reflect.Pointer || target.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", out)
	}

	src := reflect.ValueOf(payload)
	if src.Kind() == reflect.Pointer && !src.IsNil() {
		src = src.Elem()
	}
	if src.Type() == target.Elem().Type() {
		target.Elem().Set(src)
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return nil
}
