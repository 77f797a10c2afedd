package game

import (
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/systems/physics"
)

// Field geometry for a 60-foot youth diamond. Home plate sits at the origin,
// the first-base line runs along +X, the third-base line along +Y, Z is up.
// Second base is therefore at (D, D) and the mound at the diamond center.
const (
	// BaseDistance is the distance between consecutive bases in meters (60 ft).
	BaseDistance = 18.288

	// HomePlateWidth is the width of the plate; half of it bounds the strike
	// zone horizontally.
	HomePlateWidth = 0.432

	// FenceRadius is the outfield fence distance from home plate. Anything
	// landing past it is a home run.
	FenceRadius = 52.0
)

// Base identifies one of the four bases, in running order.
type Base int

const (
	HomePlate Base = iota
	FirstBase
	SecondBase
	ThirdBase
)

var baseNames = [...]string{"home", "first", "second", "third"}

func (b Base) String() string {
	if b < HomePlate || b > ThirdBase {
		return "unknown"
	}
	return baseNames[b]
}

// Position returns the bag's anchor on the field.
func (b Base) Position() physics.Vec3 {
	switch b {
	case FirstBase:
		return physics.Vec3{X: BaseDistance}
	case SecondBase:
		return physics.Vec3{X: BaseDistance, Y: BaseDistance}
	case ThirdBase:
		return physics.Vec3{Y: BaseDistance}
	default:
		return physics.Vec3{}
	}
}

// Next returns the base a runner advances to from b. Advancing past third
// wraps to home.
func (b Base) Next() Base {
	if b == ThirdBase {
		return HomePlate
	}
	return b + 1
}

// Role is an agent's job on the field.
type Role string

const (
	RolePitcher       Role = "pitcher"
	RoleCatcher       Role = "catcher"
	RoleFirstBaseman  Role = "first_baseman"
	RoleSecondBaseman Role = "second_baseman"
	RoleShortstop     Role = "shortstop"
	RoleThirdBaseman  Role = "third_baseman"
	RoleLeftFielder   Role = "left_fielder"
	RoleCenterFielder Role = "center_fielder"
	RoleRightFielder  Role = "right_fielder"
	RoleBatter        Role = "batter"
	RoleRunner        Role = "runner"
)

// DefensiveRoles lists the nine fielding assignments in conventional order.
var DefensiveRoles = []Role{
	RolePitcher, RoleCatcher,
	RoleFirstBaseman, RoleSecondBaseman, RoleShortstop, RoleThirdBaseman,
	RoleLeftFielder, RoleCenterFielder, RoleRightFielder,
}

var defensiveSpots = map[Role]physics.Vec3{
	RolePitcher:       MoundPosition,
	RoleCatcher:       {X: 0, Y: -1.2},
	RoleFirstBaseman:  {X: BaseDistance + 2.0, Y: 1.0},
	RoleSecondBaseman: {X: BaseDistance - 2.0, Y: BaseDistance + 2.0},
	RoleShortstop:     {X: 2.0, Y: BaseDistance - 2.0},
	RoleThirdBaseman:  {X: -1.5, Y: BaseDistance + 1.5},
	RoleLeftFielder:   {X: -12.0, Y: 30.0},
	RoleCenterFielder: {X: 9.0, Y: 36.0},
	RoleRightFielder:  {X: 30.0, Y: 24.0},
}

// DefensiveSpot returns the ready position for a fielding role. The batter's
// box is returned for non-defensive roles so every agent has a home.
func DefensiveSpot(r Role) physics.Vec3 {
	if spot, ok := defensiveSpots[r]; ok {
		return spot
	}
	return BatterBox
}

// MoundPosition is the pitching rubber at the center of the diamond.
var MoundPosition = physics.Vec3{X: BaseDistance / 2, Y: BaseDistance / 2}

// BatterBox is where the batter stands, just off the plate.
var BatterBox = physics.Vec3{Y: -0.2}

// StrikeZoneTarget is the point over the plate pitchers aim at.
var StrikeZoneTarget = physics.Vec3{Z: 0.85}

// StrikeZone is the legal pitch window over the plate.
type StrikeZone struct {
	HalfWidth float64
	Bottom    float64
	Top       float64
}

// DefaultStrikeZone matches a youth batter's stance.
var DefaultStrikeZone = StrikeZone{HalfWidth: HomePlateWidth / 2, Bottom: 0.45, Top: 1.25}

// Contains reports whether a pitch crossing the plate at p is a strike.
func (z StrikeZone) Contains(p physics.Vec3) bool {
	return p.X >= -z.HalfWidth && p.X <= z.HalfWidth && p.Z >= z.Bottom && p.Z <= z.Top
}

// InFairTerritory reports whether p is between the foul lines, which run
// along the +X and +Y axes.
func InFairTerritory(p physics.Vec3) bool {
	return p.X >= 0 && p.Y >= 0
}
