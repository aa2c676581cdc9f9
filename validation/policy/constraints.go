// Package policy defines validation policies: which checks run and how a
// failing check affects the verdict.
package policy

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level is the severity bound to a check.
type Level string

const (
	// LevelFail makes a failing check terminate its chain with the check's indication.
	LevelFail Level = "FAIL"
	// LevelWarn records a warning and continues.
	LevelWarn Level = "WARN"
	// LevelInform records an information and continues.
	LevelInform Level = "INFORM"
	// LevelIgnore skips the check.
	LevelIgnore Level = "IGNORE"
)

// AnyValue accepts every non-empty value in value constraints.
const AnyValue = "*"

// ParseLevel parses a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", fmt.Errorf("%w: unknown level %q", ErrInvalidPolicy, s)
	}
	return l, nil
}

// IsValid reports whether l is one of the four levels.
func (l Level) IsValid() bool {
	switch l {
	case LevelFail, LevelWarn, LevelInform, LevelIgnore:
		return true
	}
	return false
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Level) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*l = parsed
	return nil
}

// Constraint is anything carrying a level. A nil constraint means IGNORE.
type Constraint interface {
	GetLevel() Level
}

// LevelOf returns the level of c, IGNORE for a nil constraint.
func LevelOf(c Constraint) Level {
	if c == nil {
		return LevelIgnore
	}
	return c.GetLevel()
}

// LevelConstraint is a constraint with a level only.
type LevelConstraint struct {
	Level Level `yaml:"level"`
}

// NewLevelConstraint creates a LevelConstraint.
func NewLevelConstraint(level Level) *LevelConstraint {
	return &LevelConstraint{Level: level}
}

// GetLevel implements Constraint.
func (c *LevelConstraint) GetLevel() Level {
	if c == nil {
		return LevelIgnore
	}
	return c.Level
}

// ValueConstraint expects a single value. An empty or "*" value accepts any
// present value.
type ValueConstraint struct {
	Level Level  `yaml:"level"`
	Value string `yaml:"value,omitempty"`
}

// GetLevel implements Constraint.
func (c *ValueConstraint) GetLevel() Level {
	if c == nil {
		return LevelIgnore
	}
	return c.Level
}

// Accepts reports whether value satisfies the constraint.
func (c *ValueConstraint) Accepts(value string) bool {
	if value == "" {
		return false
	}
	if c == nil || c.Value == "" || c.Value == AnyValue {
		return true
	}
	return c.Value == value
}

// MultiValuesConstraint lists acceptable values. The values found must be
// non-empty, and unless the list holds "*" at least one of them must be
// listed.
type MultiValuesConstraint struct {
	Level Level    `yaml:"level"`
	IDs   []string `yaml:"id,omitempty"`
}

// GetLevel implements Constraint.
func (c *MultiValuesConstraint) GetLevel() Level {
	if c == nil {
		return LevelIgnore
	}
	return c.Level
}

// Accepts reports whether values satisfy the constraint.
func (c *MultiValuesConstraint) Accepts(values []string) bool {
	if len(values) == 0 {
		return false
	}
	if c == nil || len(c.IDs) == 0 || slices.Contains(c.IDs, AnyValue) {
		return true
	}
	for _, v := range values {
		if slices.Contains(c.IDs, v) {
			return true
		}
	}
	return false
}

// BaselineConstraint requires a minimum baseline level (B, T, LT or LTA).
type BaselineConstraint struct {
	Level   Level  `yaml:"level"`
	Minimum string `yaml:"minimum"`
}

// GetLevel implements Constraint.
func (c *BaselineConstraint) GetLevel() Level {
	if c == nil {
		return LevelIgnore
	}
	return c.Level
}

// ExpressionConstraint is a custom check written as a CEL expression over
// the signature facts. The expression must evaluate to a boolean.
type ExpressionConstraint struct {
	ID            string `yaml:"id"`
	Description   string `yaml:"description,omitempty"`
	Expression    string `yaml:"expression"`
	Level         Level  `yaml:"level"`
	Indication    string `yaml:"indication,omitempty"`
	SubIndication string `yaml:"sub-indication,omitempty"`
}

// GetLevel implements Constraint.
func (c *ExpressionConstraint) GetLevel() Level {
	if c == nil {
		return LevelIgnore
	}
	return c.Level
}
