package game

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks a programming error such as an unknown team name
// or player ID. Operations returning it leave state untouched.
var ErrInvalidArgument = errors.New("invalid argument")

// TeamSide identifies one of the two sides of a match
type TeamSide string

const (
	TeamA TeamSide = "team_a" // attacks toward x = 105
	TeamB TeamSide = "team_b" // attacks toward x = 0
)

// Teams lists both sides in processing order
var Teams = [2]TeamSide{TeamA, TeamB}

// Opponent returns the other side
func (t TeamSide) Opponent() TeamSide {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Valid reports whether t is one of the two fixed labels
func (t TeamSide) Valid() bool {
	return t == TeamA || t == TeamB
}

// ParseTeam validates a team label
func ParseTeam(s string) (TeamSide, error) {
	t := TeamSide(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown team %q", ErrInvalidArgument, s)
	}
	return t, nil
}

// Role is a player's tactical role, fixed at setup
type Role string

const (
	RoleGoalkeeper Role = "goalkeeper"
	RoleDefender   Role = "defender"
	RoleMidfielder Role = "midfielder"
	RoleAttacker   Role = "attacker"
)

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleAttacker:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidArgument, s)
}

// UnmarshalText lets roles be decoded straight from YAML/JSON
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
