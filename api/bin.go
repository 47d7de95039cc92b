package api

// Bin is the JSON export of one Avid bin. Any .avb parser can produce it;
// avbmatch reads it directly or snapshots it into SQLite.
type Bin struct {
	// Version of the export schema.
	Version     string `json:"version"`
	Name        string `json:"name"`
	DisplayMode string `json:"display_mode,omitempty"`
	Mobs        []Mob  `json:"mobs"`
	Items       []Item `json:"items,omitempty"`
}

// Item places a mob in the bin window.
type Item struct {
	MobID      string `json:"mob_id"`
	UserPlaced bool   `json:"user_placed"`
	X          int    `json:"x,omitempty"`
	Y          int    `json:"y,omitempty"`
	Keyframe   int64  `json:"keyframe,omitempty"`
}

// Mob is a composition, master or source mob.
type Mob struct {
	MobID     string `json:"mob_id"`
	Name      string `json:"name"`
	EditRate  any    `json:"edit_rate"` // "24", "24000/1001" or a number
	Length    int64  `json:"length"`
	MobTypeID int    `json:"mob_type_id"`
	UsageCode int    `json:"usage_code"`
	// Attributes holds bin column values under "_USER".
	Attributes   map[string]any `json:"attributes,omitempty"`
	Descriptor   *Descriptor    `json:"descriptor,omitempty"`
	Tracks       []Track        `json:"tracks"`
	CreationTime string         `json:"creation_time,omitempty"` // RFC 3339
	LastModified string         `json:"last_modified,omitempty"` // RFC 3339
}

type Track struct {
	MediaKind string     `json:"media_kind"`
	Index     int        `json:"index,omitempty"`
	Component *Component `json:"component,omitempty"`
}

// Component is a union over every component class; Class selects which
// fields apply.
type Component struct {
	Class      string         `json:"class"`
	Length     int64          `json:"length"`
	EditRate   any            `json:"edit_rate,omitempty"`
	MediaKind  string         `json:"media_kind,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`

	// sequence
	Components []Component `json:"components,omitempty"`
	// source_clip
	MobID     string `json:"mob_id,omitempty"`
	TrackID   int    `json:"track_id,omitempty"`
	StartTime int64  `json:"start_time,omitempty"`
	// timecode
	Start int64 `json:"start,omitempty"`
	FPS   int   `json:"fps,omitempty"`
	Drop  bool  `json:"drop,omitempty"`
	// track_group, track_effect, transition, selector, essence_group
	Tracks   []Track `json:"tracks,omitempty"`
	Selected int     `json:"selected,omitempty"`
	CutPoint int64   `json:"cutpoint,omitempty"`
}

// Component classes.
const (
	ClassSequence     = "sequence"
	ClassSourceClip   = "source_clip"
	ClassFiller       = "filler"
	ClassTimecode     = "timecode"
	ClassTrackGroup   = "track_group"
	ClassTrackEffect  = "track_effect"
	ClassTransition   = "transition"
	ClassSelector     = "selector"
	ClassEssenceGroup = "essence_group"
)

// Descriptor describes a source mob's essence or physical source.
type Descriptor struct {
	Class         string       `json:"class"`
	MobKind       int          `json:"mob_kind,omitempty"`
	Locator       *Locator     `json:"locator,omitempty"`
	PhysicalMedia *Descriptor  `json:"physical_media,omitempty"`
	Descriptors   []Descriptor `json:"descriptors,omitempty"`
}

type Locator struct {
	Class string `json:"class"` // msm, file or url
	Path  string `json:"path,omitempty"`
}

// Marker is stored in a component's attributes under "_TMP_CRM".
type Marker struct {
	CompOffset int64          `json:"comp_offset"`
	Attributes map[string]any `json:"attributes"`
}
