package keebect

import (
	"fmt"
	"strconv"
	"strings"
)

// evdev event type and value for a key going down.
const (
	evKey      = 0x01
	valuePress = 1
)

// Identity is the vendor/product pair of a keyboard. Display names are not unique
// across devices and are never used as a key.
type Identity struct {
	Vendor  uint16
	Product uint16
}

func (i Identity) String() string {
	return fmt.Sprintf("%04x:%04x", i.Vendor, i.Product)
}

func (i Identity) VendorHex() string {
	return fmt.Sprintf("%04x", i.Vendor)
}

func (i Identity) ProductHex() string {
	return fmt.Sprintf("%04x", i.Product)
}

// ParseIdentity parses hex vendor and product ids, with or without a 0x prefix.
func ParseIdentity(vendor, product string) (Identity, error) {
	v, err := parseHex16(vendor)
	if err != nil {
		return Identity{}, fmt.Errorf("parse vendor id %q: %w", vendor, err)
	}

	p, err := parseHex16(product)
	if err != nil {
		return Identity{}, fmt.Errorf("parse product id %q: %w", product, err)
	}

	return Identity{Vendor: v, Product: p}, nil
}

func parseHex16(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(n), nil
}

// DiscoveredKeyboard is a snapshot from one enumeration call.
type DiscoveredKeyboard struct {
	Identity Identity
	Name     string
	Path     string
}

// Binding maps a keyboard to the layout index it should switch to.
type Binding struct {
	Identity    Identity
	Name        string
	LayoutIndex uint32
}

// RawEvent is an evdev input_event without its timestamp.
type RawEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// IsKeyPress reports whether the event is a key going down. Releases (0) and
// autorepeat (2) are not presses.
func (e RawEvent) IsKeyPress() bool {
	return e.Type == evKey && e.Value == valuePress
}

type ActivationEvent struct {
	Identity Identity
	// Name is the display name of the keyboard that was pressed; identities
	// are not unique across physical devices.
	Name        string
	LayoutIndex uint32
}

// DedupeBindings keeps one binding per identity; later entries win.
func DedupeBindings(bindings []Binding) []Binding {
	index := make(map[Identity]int, len(bindings))
	out := make([]Binding, 0, len(bindings))
	for _, b := range bindings {
		if i, ok := index[b.Identity]; ok {
			out[i] = b
			continue
		}
		index[b.Identity] = len(out)
		out = append(out, b)
	}
	return out
}
