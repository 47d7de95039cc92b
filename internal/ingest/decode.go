package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/agentic-research/avbmatch/api"
	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/ohler55/ojg/oj"
)

var (
	ErrMalformedRecord       = errors.New("malformed record")
	ErrUnknownComponentClass = errors.New("unknown component class")
)

// DecodeRecord parses one stored mob record.
func DecodeRecord(record []byte) (*avb.Mob, error) {
	v, err := oj.Parse(record)
	if err != nil {
		return nil, fmt.Errorf("parse record json: %w", err)
	}
	return DecodeMob(v)
}

// DecodeMob builds a mob from its parsed export object. Components inherit
// the edit rate and media kind of their parent when they omit them.
func DecodeMob(v any) (*avb.Mob, error) {
	o, err := object(v, "mob")
	if err != nil {
		return nil, err
	}
	m := &avb.Mob{
		ID:   avb.MobID(str(o, "mob_id")),
		Name: str(o, "name"),
	}
	if m.ID == "" {
		return nil, fmt.Errorf("%w: mob %q has no mob_id", ErrMalformedRecord, m.Name)
	}
	wrap := func(err error) error { return fmt.Errorf("mob %q (%s): %w", m.Name, m.ID, err) }

	if m.Rate, err = avb.ParseEditRate(o["edit_rate"]); err != nil {
		return nil, wrap(err)
	}
	if m.Len, err = integer(o, "length"); err != nil {
		return nil, wrap(err)
	}
	typ, err := integer(o, "mob_type_id")
	if err != nil {
		return nil, wrap(err)
	}
	usage, err := integer(o, "usage_code")
	if err != nil {
		return nil, wrap(err)
	}
	m.MobTypeID, m.UsageCode = int(typ), int(usage)

	if m.Attrs, err = decodeAttributes(o["attributes"]); err != nil {
		return nil, wrap(err)
	}
	if d, ok := o["descriptor"]; ok && d != nil {
		if m.Descriptor, err = decodeDescriptor(d); err != nil {
			return nil, wrap(err)
		}
	}
	if m.CreationTime, err = timestamp(o, "creation_time"); err != nil {
		return nil, wrap(err)
	}
	if m.LastModified, err = timestamp(o, "last_modified"); err != nil {
		return nil, wrap(err)
	}

	if m.Tracks, err = decodeTracks(o, m.Rate); err != nil {
		return nil, wrap(err)
	}
	return m, nil
}

func decodeTrack(v any, rate avb.EditRate) (*avb.Track, error) {
	o, err := object(v, "track")
	if err != nil {
		return nil, err
	}
	index, err := integer(o, "index")
	if err != nil {
		return nil, err
	}
	t := &avb.Track{Kind: avb.MediaKind(str(o, "media_kind")), Index: int(index)}
	if c, ok := o["component"]; ok && c != nil {
		if t.Component, err = decodeComponent(c, t.Kind, rate); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeTracks(o map[string]any, rate avb.EditRate) ([]*avb.Track, error) {
	raw, err := list(o, "tracks")
	if err != nil {
		return nil, err
	}
	tracks := make([]*avb.Track, 0, len(raw))
	for i, tv := range raw {
		t, err := decodeTrack(tv, rate)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func decodeComponent(v any, kind avb.MediaKind, rate avb.EditRate) (avb.Component, error) {
	o, err := object(v, "component")
	if err != nil {
		return nil, err
	}
	base := avb.ComponentBase{Kind: kind, Rate: rate}
	if k := str(o, "media_kind"); k != "" {
		base.Kind = avb.MediaKind(k)
	}
	if r, ok := o["edit_rate"]; ok && r != nil {
		if base.Rate, err = avb.ParseEditRate(r); err != nil {
			return nil, err
		}
	}
	if base.Len, err = integer(o, "length"); err != nil {
		return nil, err
	}
	if base.Attrs, err = decodeAttributes(o["attributes"]); err != nil {
		return nil, err
	}

	class := str(o, "class")
	switch class {
	case api.ClassSequence:
		raw, err := list(o, "components")
		if err != nil {
			return nil, err
		}
		seq := &avb.Sequence{ComponentBase: base, Components: make([]avb.Component, 0, len(raw))}
		for i, cv := range raw {
			c, err := decodeComponent(cv, base.Kind, base.Rate)
			if err != nil {
				return nil, fmt.Errorf("component %d: %w", i, err)
			}
			seq.Components = append(seq.Components, c)
		}
		return seq, nil

	case api.ClassSourceClip:
		trackID, err := integer(o, "track_id")
		if err != nil {
			return nil, err
		}
		start, err := integer(o, "start_time")
		if err != nil {
			return nil, err
		}
		return &avb.SourceClip{ComponentBase: base, MobID: avb.MobID(str(o, "mob_id")), TrackID: int(trackID), StartTime: start}, nil

	case api.ClassFiller:
		return &avb.Filler{ComponentBase: base}, nil

	case api.ClassTimecode:
		start, err := integer(o, "start")
		if err != nil {
			return nil, err
		}
		fps, err := integer(o, "fps")
		if err != nil {
			return nil, err
		}
		drop, _ := o["drop"].(bool)
		return &avb.Timecode{ComponentBase: base, Start: start, FPS: int(fps), Drop: drop}, nil

	case api.ClassTrackGroup, api.ClassTrackEffect, api.ClassTransition, api.ClassSelector, api.ClassEssenceGroup:
		tracks, err := decodeTracks(o, base.Rate)
		if err != nil {
			return nil, err
		}
		group := avb.TrackGroup{ComponentBase: base, Tracks: tracks}
		switch class {
		case api.ClassTrackEffect:
			return &avb.TrackEffect{TrackGroup: group}, nil
		case api.ClassTransition:
			cut, err := integer(o, "cutpoint")
			if err != nil {
				return nil, err
			}
			return &avb.TransitionEffect{TrackGroup: group, CutPoint: cut}, nil
		case api.ClassSelector:
			sel, err := integer(o, "selected")
			if err != nil {
				return nil, err
			}
			return &avb.Selector{TrackGroup: group, Selected: int(sel)}, nil
		case api.ClassEssenceGroup:
			return &avb.EssenceGroup{TrackGroup: group}, nil
		}
		return &group, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownComponentClass, class)
}

func decodeDescriptor(v any) (*avb.Descriptor, error) {
	o, err := object(v, "descriptor")
	if err != nil {
		return nil, err
	}
	kind, err := integer(o, "mob_kind")
	if err != nil {
		return nil, err
	}
	d := &avb.Descriptor{Class: avb.DescriptorClass(str(o, "class")), MobKind: int(kind)}
	if lv, ok := o["locator"]; ok && lv != nil {
		lo, err := object(lv, "locator")
		if err != nil {
			return nil, err
		}
		d.Locator = &avb.Locator{Class: avb.LocatorClass(str(lo, "class")), Path: str(lo, "path")}
	}
	if pv, ok := o["physical_media"]; ok && pv != nil {
		if d.PhysicalMedia, err = decodeDescriptor(pv); err != nil {
			return nil, fmt.Errorf("physical_media: %w", err)
		}
	}
	subs, err := list(o, "descriptors")
	if err != nil {
		return nil, err
	}
	for _, sv := range subs {
		sub, err := decodeDescriptor(sv)
		if err != nil {
			return nil, err
		}
		d.Descriptors = append(d.Descriptors, sub)
	}
	return d, nil
}

// decodeAttributes keeps attribute values as parsed, except markers under
// _TMP_CRM, which become *avb.Marker values.
func decodeAttributes(v any) (avb.Attributes, error) {
	if v == nil {
		return nil, nil
	}
	o, err := object(v, "attributes")
	if err != nil {
		return nil, err
	}
	attrs := make(avb.Attributes, len(o))
	for k, val := range o {
		attrs[k] = val
	}
	if raw, ok := o[avb.AttrMarkers]; ok {
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T", ErrMalformedRecord, avb.AttrMarkers, raw)
		}
		markers := make([]*avb.Marker, 0, len(items))
		for _, mv := range items {
			mo, err := object(mv, "marker")
			if err != nil {
				return nil, err
			}
			off, err := integer(mo, "comp_offset")
			if err != nil {
				return nil, err
			}
			ma, err := decodeAttributes(mo["attributes"])
			if err != nil {
				return nil, err
			}
			markers = append(markers, &avb.Marker{CompOffset: off, Attrs: ma})
		}
		attrs[avb.AttrMarkers] = markers
	}
	return attrs, nil
}

func object(v any, what string) (map[string]any, error) {
	o, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T, want object", ErrMalformedRecord, what, v)
	}
	return o, nil
}

func list(o map[string]any, key string) ([]any, error) {
	switch v := o[key].(type) {
	case nil:
		return nil, nil
	case []any:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %s is %T, want array", ErrMalformedRecord, key, v)
	}
}

func str(o map[string]any, key string) string {
	switch v := o[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// integer reads a whole number. Missing keys read as zero.
func integer(o map[string]any, key string) (int64, error) {
	switch v := o[key].(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%w: %s = %v is not whole", ErrMalformedRecord, key, v)
		}
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s = %q", ErrMalformedRecord, key, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: %s is %T", ErrMalformedRecord, key, v)
	}
}

func timestamp(o map[string]any, key string) (time.Time, error) {
	switch v := o[key].(type) {
	case nil:
		return time.Time{}, nil
	case string:
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, key, err)
		}
		return t, nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s is %T", ErrMalformedRecord, key, v)
	}
}
