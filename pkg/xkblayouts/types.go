package xkblayouts

import "encoding/xml"

type xkbConfigRegistry struct {
	XMLName    xml.Name   `xml:"xkbConfigRegistry"`
	LayoutList layoutList `xml:"layoutList"`
}

type configItem struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

type variant struct {
	ConfigItem configItem `xml:"configItem"`
}

type variantList struct {
	Variant []variant `xml:"variant"`
}

type layout struct {
	ConfigItem  configItem  `xml:"configItem"`
	VariantList variantList `xml:"variantList"`
}

type layoutList struct {
	Layout []layout `xml:"layout"`
}

// Code is an xkb layout with an optional variant, e.g. "us" or "us(dvorak)".
type Code struct {
	Layout  string
	Variant string
}

func (c Code) String() string {
	if c.Variant == "" {
		return c.Layout
	}
	return c.Layout + "(" + c.Variant + ")"
}
