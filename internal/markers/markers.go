// Package markers lists the locators placed on a track, with their
// positions expressed in the track's timeline.
package markers

import (
	"errors"
	"fmt"
	"time"

	"github.com/agentic-research/avbmatch/internal/avb"
)

var ErrUnknownMarkerColor = errors.New("unknown marker color")

const (
	attrUser     = "_ATN_CRM_USER"
	attrComment  = "_ATN_CRM_COM"
	attrColor    = "_ATN_CRM_COLOR"
	attrCreated  = "_ATN_CRM_LONG_CREATE_DATE"
	attrModified = "_ATN_CRM_LONG_MOD_DATE"
)

type Color string

const (
	Red     Color = "Red"
	Green   Color = "Green"
	Blue    Color = "Blue"
	Cyan    Color = "Cyan"
	Magenta Color = "Magenta"
	Yellow  Color = "Yellow"
	Black   Color = "Black"
	White   Color = "White"
)

var Colors = []Color{Red, Green, Blue, Cyan, Magenta, Yellow, Black, White}

// ParseColor accepts the color names Avid writes.
func ParseColor(s string) (Color, error) {
	for _, c := range Colors {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMarkerColor, s)
}

// Info is one marker as shown in the marker list.
type Info struct {
	Offset   int64     `json:"offset"`
	User     string    `json:"user"`
	Comment  string    `json:"comment"`
	Color    Color     `json:"color"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// FromMarker reads a marker's attributes. offset is the marker's position
// in the track.
func FromMarker(offset int64, m *avb.Marker) (Info, error) {
	name, _ := m.Attrs.String(attrColor)
	color, err := ParseColor(name)
	if err != nil {
		return Info{}, err
	}
	info := Info{Offset: offset, Color: color}
	info.User, _ = m.Attrs.String(attrUser)
	info.Comment, _ = m.Attrs.String(attrComment)
	if ts, ok := m.Attrs.Int(attrCreated); ok {
		info.Created = time.Unix(ts, 0).UTC()
	}
	if ts, ok := m.Attrs.Int(attrModified); ok {
		info.Modified = time.Unix(ts, 0).UTC()
	}
	return info, nil
}

// FromTrack collects the markers on a track. Positions count from start
// and step back over transitions the way the sequence plays them.
func FromTrack(track *avb.Track, start int64) ([]Info, error) {
	if track.Component == nil {
		return nil, nil
	}
	components := []avb.Component{track.Component}
	if seq, ok := track.Component.(*avb.Sequence); ok {
		components = seq.Components
	}

	var out []Info
	pos := start
	for _, c := range components {
		_, isTransition := c.(*avb.TransitionEffect)
		if isTransition {
			pos -= c.Length()
		}
		for _, m := range componentMarkers(c) {
			info, err := FromMarker(pos+m.CompOffset, m)
			if err != nil {
				return out, err
			}
			out = append(out, info)
		}
		if !isTransition {
			pos += c.Length()
		}
	}
	return out, nil
}

// componentMarkers returns the markers on c and everything nested under it.
func componentMarkers(c avb.Component) []*avb.Marker {
	var out []*avb.Marker
	out = append(out, c.Attributes().Markers()...)

	switch v := c.(type) {
	case *avb.Sequence:
		for _, sub := range v.Components {
			out = append(out, componentMarkers(sub)...)
		}
	case avb.Grouped:
		if _, isMob := v.(*avb.Mob); isMob {
			break
		}
		for _, t := range v.GroupTracks() {
			if t.Component != nil {
				out = append(out, componentMarkers(t.Component)...)
			}
		}
	}
	return out
}
