package baseline

import (
	"fmt"
	"strings"

	"github.com/georgepadayatti/adesverdict/validation/signature"
)

// Flags are the four baseline profile predicates of a signature.
type Flags struct {
	B   bool `json:"b"`
	T   bool `json:"t"`
	LT  bool `json:"lt"`
	LTA bool `json:"lta"`
}

// Evaluate runs every predicate of checker.
func Evaluate(checker Checker) Flags {
	return Flags{
		B:   checker.HasBaselineBProfile(),
		T:   checker.HasBaselineTProfile(),
		LT:  checker.HasBaselineLTProfile(),
		LTA: checker.HasBaselineLTAProfile(),
	}
}

// Level is a baseline level.
type Level int

const (
	LevelNone Level = iota
	LevelB
	LevelT
	LevelLT
	LevelLTA
)

var levelNames = map[Level]string{
	LevelNone: "NONE",
	LevelB:    "B",
	LevelT:    "T",
	LevelLT:   "LT",
	LevelLTA:  "LTA",
}

// String returns NONE, B, T, LT or LTA.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Name returns the full level name for a format, e.g. PAdES-BASELINE-LT.
// LevelNone is reported as the plain format name.
func (l Level) Name(format signature.Format) string {
	if l == LevelNone {
		return string(format)
	}
	return fmt.Sprintf("%s-BASELINE-%s", format, l)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLevel parses B, T, LT or LTA (case-insensitive).
func ParseLevel(s string) (Level, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for l, name := range levelNames {
		if l != LevelNone && name == upper {
			return l, nil
		}
	}
	return LevelNone, fmt.Errorf("baseline: unknown level %q", s)
}

// LevelOf returns the highest level whose predicates and all lower ones hold.
func LevelOf(f Flags) Level {
	switch {
	case !f.B:
		return LevelNone
	case !f.T:
		return LevelB
	case !f.LT:
		return LevelT
	case !f.LTA:
		return LevelLT
	}
	return LevelLTA
}
