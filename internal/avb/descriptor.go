package avb

import (
	"fmt"
	"strconv"
)

type DescriptorClass string

const (
	DescriptorMedia     DescriptorClass = "media"
	DescriptorMediaFile DescriptorClass = "media_file"
	DescriptorTape      DescriptorClass = "tape"
	DescriptorFilm      DescriptorClass = "film"
	DescriptorSoundroll DescriptorClass = "soundroll"
	DescriptorImport    DescriptorClass = "import"
	DescriptorMulti     DescriptorClass = "multi"
)

type LocatorClass string

const (
	// LocatorMSM points into Avid managed media storage.
	LocatorMSM  LocatorClass = "msm"
	LocatorFile LocatorClass = "file"
	LocatorURL  LocatorClass = "url"
)

type Locator struct {
	Class LocatorClass
	Path  string
}

// Descriptor describes the essence or physical source behind a source mob.
// MobKind is Avid's source kind code (1 essence ... 5 imported file).
type Descriptor struct {
	Class         DescriptorClass
	MobKind       int
	Locator       *Locator
	PhysicalMedia *Descriptor
	Descriptors   []*Descriptor
}

// IsMediaFile reports whether the descriptor describes file essence.
func (d *Descriptor) IsMediaFile() bool {
	return d.Class == DescriptorMediaFile || d.Class == DescriptorMulti
}

// Flatten returns the sub-descriptors of a multi descriptor, or d itself.
func (d *Descriptor) Flatten() []*Descriptor {
	if d == nil {
		return nil
	}
	if d.Class == DescriptorMulti {
		return d.Descriptors
	}
	return []*Descriptor{d}
}

// LocatorIs reports whether the descriptor's own locator is of class c.
func (d *Descriptor) LocatorIs(c LocatorClass) bool {
	return d != nil && d.Locator != nil && d.Locator.Class == c
}

// Attributes is a mob or component's attribute dictionary. Bin column values
// entered by users live in the nested "_USER" map.
type Attributes map[string]any

const (
	AttrUser    = "_USER"
	AttrMarkers = "_TMP_CRM"
)

// User returns the "_USER" attribute namespace.
func (a Attributes) User() Attributes {
	switch u := a[AttrUser].(type) {
	case Attributes:
		return u
	case map[string]any:
		return Attributes(u)
	}
	return nil
}

// String returns a string attribute.
func (a Attributes) String(key string) (string, bool) {
	switch v := a[key].(type) {
	case string:
		return v, true
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// Int returns an integral attribute, accepting the numeric types decoders produce.
func (a Attributes) Int(key string) (int64, bool) {
	switch v := a[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Markers returns the component markers stored under "_TMP_CRM".
func (a Attributes) Markers() []*Marker {
	m, _ := a[AttrMarkers].([]*Marker)
	return m
}

// Marker is a locator attached to a component at CompOffset frames.
type Marker struct {
	CompOffset int64
	Attrs      Attributes
}
