// Package levels tracks which difficulty levels are eligible for random draws.
package levels

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const (
	// Min is the lowest difficulty level.
	Min = 1
	// Max is the highest difficulty level.
	Max = 6
)

// Universe lists every difficulty level in ascending order.
var Universe = []int{1, 2, 3, 4, 5, 6}

// Set is a membership set over the fixed level universe. The zero value is empty.
type Set uint8

// All returns a set containing every level.
func All() Set {
	return Of(Universe...)
}

// None returns the empty set.
func None() Set {
	return 0
}

// Of builds a set from the given levels, ignoring values outside the universe.
func Of(values ...int) Set {
	var s Set
	for _, v := range values {
		if Valid(v) {
			s |= bit(v)
		}
	}
	return s
}

// Valid reports whether level is inside the universe.
func Valid(level int) bool {
	return level >= Min && level <= Max
}

// Contains reports whether level is a member.
func (s Set) Contains(level int) bool {
	if !Valid(level) {
		return false
	}
	return s&bit(level) != 0
}

// Toggle flips membership of level.
func (s *Set) Toggle(level int) error {
	if !Valid(level) {
		return fmt.Errorf("level %d out of range %d-%d", level, Min, Max)
	}
	*s ^= bit(level)
	return nil
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.Members())
}

// Empty reports whether no level is selected.
func (s Set) Empty() bool {
	return s == 0
}

// Members returns the selected levels in ascending order.
func (s Set) Members() []int {
	return lo.Filter(Universe, func(level int, _ int) bool {
		return s.Contains(level)
	})
}

// Draw picks a member uniformly at random. ok is false for an empty set.
func (s Set) Draw(rnd *rand.Rand) (level int, ok bool) {
	members := s.Members()
	if len(members) == 0 {
		return 0, false
	}
	return members[rnd.Intn(len(members))], true
}

// String renders the set as a comma separated list, e.g. "1,3,5".
func (s Set) String() string {
	parts := lo.Map(s.Members(), func(level int, _ int) string {
		return strconv.Itoa(level)
	})
	return strings.Join(parts, ",")
}

// Parse reads a comma separated level list. Whitespace and duplicates are allowed.
func Parse(value string) (Set, error) {
	var s Set
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid level %q", part)
		}
		if !Valid(level) {
			return 0, fmt.Errorf("level %d out of range %d-%d", level, Min, Max)
		}
		s |= bit(level)
	}
	return s, nil
}

func bit(level int) Set {
	return 1 << uint(level-Min)
}
