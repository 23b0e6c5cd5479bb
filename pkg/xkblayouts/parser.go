package xkblayouts

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

const DefaultPath = "/usr/share/X11/xkb/rules/evdev.xml"

// Registry maps the human-readable layout descriptions the compositor reports
// back to xkb codes.
type Registry struct {
	byDescription map[string]Code
}

func ParseLayouts(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

func Parse(r io.Reader) (*Registry, error) {
	var raw xkbConfigRegistry
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	reg := &Registry{byDescription: make(map[string]Code)}
	for _, l := range raw.LayoutList.Layout {
		reg.add(l.ConfigItem.Description, Code{Layout: l.ConfigItem.Name})
		for _, v := range l.VariantList.Variant {
			reg.add(v.ConfigItem.Description, Code{Layout: l.ConfigItem.Name, Variant: v.ConfigItem.Name})
		}
	}

	return reg, nil
}

// first definition wins, matching xkb's lookup order
func (r *Registry) add(description string, code Code) {
	if _, ok := r.byDescription[description]; ok {
		return
	}
	r.byDescription[description] = code
}

// Lookup returns the code for a layout description such as "English (US)".
func (r *Registry) Lookup(description string) (Code, bool) {
	if r == nil {
		return Code{}, false
	}
	code, ok := r.byDescription[description]
	return code, ok
}
