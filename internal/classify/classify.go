// Package classify maps a mob's type and usage codes to the role it plays in
// a bin, following Media Composer's own conventions.
package classify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/avbmatch/internal/avb"
)

// MobType is the mob_type code of a composition.
type MobType int

const (
	CompositionMob MobType = 1
	MasterMob      MobType = 2
	SourceMob      MobType = 3
)

func (t MobType) String() string {
	switch t {
	case CompositionMob:
		return "Composition Mob"
	case MasterMob:
		return "Master Mob"
	case SourceMob:
		return "Source Mob"
	}
	return fmt.Sprintf("MobType(%d)", int(t))
}

// MobUsage is the usage code of a composition. The codes come from OMF.
type MobUsage int

const (
	UsageUndefined           MobUsage = 0
	UsagePrecompute          MobUsage = 1
	UsageSubclip             MobUsage = 2
	UsageEffect              MobUsage = 3
	UsageGroupClip           MobUsage = 4
	UsageGroupOofter         MobUsage = 5
	UsageMotion              MobUsage = 6
	UsageMasterMob           MobUsage = 7
	UsagePrecomputeFile      MobUsage = 9
	UsagePrecomputeSourceMob MobUsage = 14
)

var usageNames = map[MobUsage]string{
	UsageUndefined:           "Undefined",
	UsagePrecompute:          "Precompute",
	UsageSubclip:             "Subclip",
	UsageEffect:              "Effect",
	UsageGroupClip:           "Group Clip",
	UsageGroupOofter:         "Group Oofter",
	UsageMotion:              "Motion",
	UsageMasterMob:           "Master Mob",
	UsagePrecomputeFile:      "Precompute File",
	UsagePrecomputeSourceMob: "Precompute Source Mob",
}

func (u MobUsage) String() string {
	if s, ok := usageNames[u]; ok {
		return s
	}
	return fmt.Sprintf("MobUsage(%d)", int(u))
}

// Role is the semantic role of a mob.
type Role int

const (
	RoleUnknown Role = iota
	RoleTimeline
	RoleMasterClip
	RoleSubclip
	RoleEffect
	RoleGroupClip
	RoleGroupOofter
	RoleMotionEffect
	RolePrecomputeClip
	RolePrecomputeSource
	RoleSourceMob
	RoleMasterMob
)

// Roles lists every recognized role in table order.
var Roles = []Role{
	RoleTimeline, RoleMasterClip, RoleSubclip, RoleEffect, RoleGroupClip, RoleGroupOofter,
	RoleMotionEffect, RolePrecomputeClip, RolePrecomputeSource, RoleSourceMob, RoleMasterMob,
}

var roleNames = map[Role]string{
	RoleUnknown:          "Unknown",
	RoleTimeline:         "Timeline",
	RoleMasterClip:       "Master Clip",
	RoleSubclip:          "Subclip",
	RoleEffect:           "Effect",
	RoleGroupClip:        "Group Clip",
	RoleGroupOofter:      "Group Oofter",
	RoleMotionEffect:     "Motion Effect",
	RolePrecomputeClip:   "Precompute Clip",
	RolePrecomputeSource: "Precompute Source",
	RoleSourceMob:        "Source Mob",
	RoleMasterMob:        "Master Mob",
}

func (r Role) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Slug is a lowercase, underscore-separated role name for machine output.
func (r Role) Slug() string {
	return strings.ReplaceAll(strings.ToLower(r.String()), " ", "_")
}

// ErrUnrecognizedMobRole matches any *UnrecognizedMobRoleError.
var ErrUnrecognizedMobRole = errors.New("unrecognized mob role")

// UnrecognizedMobRoleError carries the codes that matched no rule.
type UnrecognizedMobRoleError struct {
	MobType MobType
	Usage   MobUsage
}

func (e *UnrecognizedMobRoleError) Error() string {
	return fmt.Sprintf("unrecognized mob role: mob type %d, usage %d", int(e.MobType), int(e.Usage))
}

func (e *UnrecognizedMobRoleError) Is(target error) bool {
	return target == ErrUnrecognizedMobRole
}

// RoleOf classifies a (mob type, usage) pair. Rules are tried in order and
// the first match wins: codes are reused across roles.
func RoleOf(t MobType, u MobUsage) (Role, error) {
	switch {
	case t == CompositionMob && u == UsageUndefined:
		return RoleTimeline, nil
	case t == MasterMob && u == UsageUndefined:
		return RoleMasterClip, nil
	case t == CompositionMob && u == UsageSubclip:
		return RoleSubclip, nil
	case u == UsageEffect:
		return RoleEffect, nil
	case t == CompositionMob && u == UsageGroupClip:
		return RoleGroupClip, nil
	case t == CompositionMob && u == UsageGroupOofter:
		return RoleGroupOofter, nil
	case u == UsageMotion:
		return RoleMotionEffect, nil
	case t == MasterMob && u == UsagePrecompute:
		return RolePrecomputeClip, nil
	case t == SourceMob && (u == UsagePrecomputeFile || u == UsagePrecomputeSourceMob):
		return RolePrecomputeSource, nil
	case t == SourceMob && u == UsageUndefined:
		return RoleSourceMob, nil
	case t == MasterMob:
		return RoleMasterMob, nil
	}
	return RoleUnknown, &UnrecognizedMobRoleError{MobType: t, Usage: u}
}

// Classify returns the role of a mob.
func Classify(m *avb.Mob) (Role, error) {
	return RoleOf(MobType(m.MobTypeID), MobUsage(m.UsageCode))
}

// Is reports whether m classifies as role. Unrecognized mobs are never any role.
func Is(m *avb.Mob, role Role) bool {
	if m == nil {
		return false
	}
	r, err := Classify(m)
	return err == nil && r == role
}
