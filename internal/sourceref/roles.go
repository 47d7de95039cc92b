package sourceref

import (
	"errors"
	"fmt"

	"github.com/agentic-research/avbmatch/internal/avb"
	"github.com/agentic-research/avbmatch/internal/classify"
)

var (
	ErrNotASourceMob          = errors.New("not a source mob")
	ErrUnrecognizedSourceRole = errors.New("unrecognized source mob kind")
	ErrInconsistentLinkage    = errors.New("essence references a file but its source does not")
	ErrNotEssence             = errors.New("not file essence")
)

// SourceMobRole is the kind of source a source mob's descriptor describes.
type SourceMobRole int

const (
	// Essence is managed OP-Atom MXF media.
	Essence    SourceMobRole = 1
	Tape       SourceMobRole = 2
	Film       SourceMobRole = 3
	Soundroll  SourceMobRole = 4
	SourceFile SourceMobRole = 5
)

func (r SourceMobRole) String() string {
	switch r {
	case Essence:
		return "Essence"
	case Tape:
		return "Tape"
	case Film:
		return "Film"
	case Soundroll:
		return "Soundroll"
	case SourceFile:
		return "Source File"
	}
	return fmt.Sprintf("SourceMobRole(%d)", int(r))
}

// IsPhysical reports whether the role is anything but file essence.
func (r SourceMobRole) IsPhysical() bool { return r != Essence }

// RoleOfDescriptor reads the mob kind code off a descriptor.
func RoleOfDescriptor(d *avb.Descriptor) (SourceMobRole, error) {
	if d == nil {
		return 0, fmt.Errorf("%w: no descriptor", ErrNotASourceMob)
	}
	role := SourceMobRole(d.MobKind)
	if role < Essence || role > SourceFile {
		return 0, fmt.Errorf("%w: %d", ErrUnrecognizedSourceRole, d.MobKind)
	}
	return role, nil
}

// RoleOfSourceMob classifies a source mob by its descriptor. The mob must
// classify as a plain source mob and carry a descriptor.
func RoleOfSourceMob(m *avb.Mob) (SourceMobRole, error) {
	role, err := classify.Classify(m)
	if err != nil || role != classify.RoleSourceMob {
		return 0, fmt.Errorf("%w: %q", ErrNotASourceMob, m.Name)
	}
	if m.Descriptor == nil {
		return 0, fmt.Errorf("%w: %q has no descriptor", ErrNotASourceMob, m.Name)
	}
	return RoleOfDescriptor(m.Descriptor)
}

// sourceRoleIfSourceMob skips mobs that are not plain source mobs and
// reports the role of those that are.
func sourceRoleIfSourceMob(m *avb.Mob) (SourceMobRole, bool, error) {
	if !classify.Is(m, classify.RoleSourceMob) {
		return 0, false, nil
	}
	role, err := RoleOfSourceMob(m)
	if err != nil {
		return 0, false, err
	}
	return role, true, nil
}

// LinkType describes how a clip's file essence relates to its source.
type LinkType int

const (
	UMELinked LinkType = iota + 1
	HardImported
	PhysicalMediaReferred
)

func (l LinkType) String() string {
	switch l {
	case UMELinked:
		return "UME Linked"
	case HardImported:
		return "Hard Imported"
	case PhysicalMediaReferred:
		return "Physical Media Referred"
	}
	return fmt.Sprintf("LinkType(%d)", int(l))
}

// LinkTypeOf compares the file essence mob with the physical source mob
// behind it. physical may be nil when the chain has no physical source.
func LinkTypeOf(essence, physical *avb.Mob) (LinkType, error) {
	role, err := RoleOfSourceMob(essence)
	if err != nil {
		return 0, err
	}
	if role != Essence {
		return 0, fmt.Errorf("%w: %q is %s", ErrNotEssence, essence.Name, role)
	}

	essenceHasFile := DescriptorHasFileReference(essence.Descriptor)

	sourceHasFile := false
	if physical != nil {
		prole, err := RoleOfSourceMob(physical)
		if err != nil {
			return 0, err
		}
		sourceHasFile = prole == SourceFile && DescriptorHasFileReference(physical.Descriptor)
	}

	switch {
	case essenceHasFile && sourceHasFile:
		return UMELinked, nil
	case sourceHasFile:
		return HardImported, nil
	case essenceHasFile:
		return 0, fmt.Errorf("%w: %q", ErrInconsistentLinkage, essence.Name)
	default:
		return PhysicalMediaReferred, nil
	}
}

// DescriptorHasFileReference reports whether any (sub-)descriptor points at
// an external file, directly or through its physical media.
func DescriptorHasFileReference(d *avb.Descriptor) bool {
	for _, sub := range d.Flatten() {
		if sub.LocatorIs(avb.LocatorFile) || sub.PhysicalMedia.LocatorIs(avb.LocatorFile) {
			return true
		}
	}
	return false
}

// HasManagedMedia reports whether any sub-descriptor references managed
// media storage with no file-based physical media behind it.
func HasManagedMedia(d *avb.Descriptor) bool {
	for _, sub := range d.Flatten() {
		if !sub.LocatorIs(avb.LocatorMSM) {
			continue
		}
		if sub.PhysicalMedia == nil || sub.PhysicalMedia.LocatorIs(avb.LocatorURL) {
			return true
		}
	}
	return false
}

// HasLinkedMedia reports whether any sub-descriptor is managed media whose
// physical media is a linked file (UME).
func HasLinkedMedia(d *avb.Descriptor) bool {
	for _, sub := range d.Flatten() {
		if sub.LocatorIs(avb.LocatorMSM) && sub.PhysicalMedia.LocatorIs(avb.LocatorFile) {
			return true
		}
	}
	return false
}

// EssenceDescriptor returns a source mob's file essence descriptor.
func EssenceDescriptor(m *avb.Mob) (*avb.Descriptor, error) {
	if m.Descriptor == nil || !m.Descriptor.IsMediaFile() {
		return nil, fmt.Errorf("%w: %q has no essence descriptor", ErrNotEssence, m.Name)
	}
	return m.Descriptor, nil
}
