// Package bindingstore holds the on-disk shape of keyboard bindings shared by
// the file-backed stores.
package bindingstore

import (
	"fmt"

	"codeberg.org/miketth/keebect/pkg/keebect"
)

// Record is one configured keyboard. Ids are 4-digit lower-case hex.
type Record struct {
	Name        string `toml:"name" json:"name"`
	VendorID    string `toml:"vendor_id" json:"vendor_id"`
	ProductID   string `toml:"product_id" json:"product_id"`
	LayoutIndex uint32 `toml:"layout_index" json:"layout_index"`
}

type File struct {
	Keyboards []Record `toml:"keyboards" json:"keyboards"`
}

func FromBindings(bindings []keebect.Binding) File {
	bindings = keebect.DedupeBindings(bindings)

	f := File{Keyboards: make([]Record, 0, len(bindings))}
	for _, b := range bindings {
		f.Keyboards = append(f.Keyboards, Record{
			Name:        b.Name,
			VendorID:    b.Identity.VendorHex(),
			ProductID:   b.Identity.ProductHex(),
			LayoutIndex: b.LayoutIndex,
		})
	}
	return f
}

// Bindings converts records. The layout index is not checked against the
// compositor's layouts here.
func (f File) Bindings() ([]keebect.Binding, error) {
	out := make([]keebect.Binding, 0, len(f.Keyboards))
	for i, r := range f.Keyboards {
		id, err := keebect.ParseIdentity(r.VendorID, r.ProductID)
		if err != nil {
			return nil, fmt.Errorf("keyboard %d (%s): %w", i, r.Name, err)
		}

		out = append(out, keebect.Binding{
			Identity:    id,
			Name:        r.Name,
			LayoutIndex: r.LayoutIndex,
		})
	}
	return keebect.DedupeBindings(out), nil
}
