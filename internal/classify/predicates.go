package classify

import "github.com/agentic-research/avbmatch/internal/avb"

// The predicates below look at one code at a time, the way bin display
// filters do. They are looser than RoleOf: a precompute source mob is
// both IsSourceMob and IsPrecompute.

func typeOf(m *avb.Mob) MobType   { return MobType(m.MobTypeID) }
func usageOf(m *avb.Mob) MobUsage { return MobUsage(m.UsageCode) }

// IsTimeline reports whether m is a top-level sequence.
func IsTimeline(m *avb.Mob) bool {
	return typeOf(m) == CompositionMob && usageOf(m) == UsageUndefined
}

// IsMasterClip reports whether m is a regular master clip.
func IsMasterClip(m *avb.Mob) bool {
	return typeOf(m) == MasterMob && usageOf(m) == UsageUndefined
}

// IsMasterMob covers master clips as well as precompute and other master mobs.
func IsMasterMob(m *avb.Mob) bool {
	return typeOf(m) == MasterMob
}

func IsSubclip(m *avb.Mob) bool {
	return typeOf(m) == CompositionMob && usageOf(m) == UsageSubclip
}

func IsSourceMob(m *avb.Mob) bool {
	return typeOf(m) == SourceMob
}

func IsEffect(m *avb.Mob) bool {
	return usageOf(m) == UsageEffect
}

func IsGroupClip(m *avb.Mob) bool {
	return usageOf(m) == UsageGroupClip
}

// IsGroupOofter: seems to accompany group clips one to one.
func IsGroupOofter(m *avb.Mob) bool {
	return usageOf(m) == UsageGroupOofter
}

func IsMotionEffect(m *avb.Mob) bool {
	return usageOf(m) == UsageMotion
}

func IsPrecompute(m *avb.Mob) bool {
	switch usageOf(m) {
	case UsagePrecompute, UsagePrecomputeFile, UsagePrecomputeSourceMob:
		return true
	}
	return false
}

// ClipColor is a bin item's clip color.
type ClipColor struct {
	R, G, B int
}

// ClipColorOf returns the clip color set on a mob, if any.
func ClipColorOf(m *avb.Mob) (ClipColor, bool) {
	r, okR := m.Attrs.Int("_COLOR_R")
	g, okG := m.Attrs.Int("_COLOR_G")
	b, okB := m.Attrs.Int("_COLOR_B")
	if !okR || !okG || !okB {
		return ClipColor{}, false
	}
	return ClipColor{R: int(r), G: int(g), B: int(b)}, true
}
