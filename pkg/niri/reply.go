package niri

import (
	"fmt"

	"codeberg.org/miketth/keebect/pkg/keebect"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const keyboardLayoutsRequest = `"KeyboardLayouts"`

// parseLayouts reads {"names": [...], "current_idx": n}.
func parseLayouts(raw []byte) (keebect.Layouts, error) {
	if !gjson.ValidBytes(raw) {
		return keebect.Layouts{}, fmt.Errorf("%w: invalid json: %q", ErrMalformedResponse, raw)
	}

	res := gjson.ParseBytes(raw)
	names := res.Get("names")
	current := res.Get("current_idx")
	if !names.IsArray() || current.Type != gjson.Number {
		return keebect.Layouts{}, fmt.Errorf("%w: %s", ErrMalformedResponse, res.Raw)
	}

	out := keebect.Layouts{
		Names:   make([]string, 0, len(names.Array())),
		Current: uint32(current.Uint()),
	}
	for _, n := range names.Array() {
		out.Names = append(out.Names, n.String())
	}

	return out, nil
}

// unwrapReply returns the "Ok" payload of a socket reply, or the "Err" message
// as an error.
func unwrapReply(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%w: invalid json: %q", ErrMalformedResponse, raw)
	}

	res := gjson.ParseBytes(raw)
	if e := res.Get("Err"); e.Exists() {
		return gjson.Result{}, fmt.Errorf("niri: %s", e.String())
	}

	ok := res.Get("Ok")
	if !ok.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: %s", ErrMalformedResponse, res.Raw)
	}

	return ok, nil
}

func switchLayoutRequest(layout string) (string, error) {
	req, err := sjson.Set("", "Action.SwitchLayout.layout", layout)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	return req, nil
}
