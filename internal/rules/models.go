package rules

import (
	"fmt"
	"regexp"
)

type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeBool
	TypeDate
	TypeDateTime
)

func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "str"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "str":
		return TypeString, nil
	case "int":
		return TypeInt, nil
	case "bool":
		return TypeBool, nil
	case "date":
		return TypeDate, nil
	case "datetime":
		return TypeDateTime, nil
	default:
		return 0, fmt.Errorf("unknown field type %q (supported: str, int, bool, date, datetime)", s)
	}
}

// Rule constrains one record field. Pattern is compiled once at load and
// anchored so matching is against the whole string form.
type Rule struct {
	Field    string
	Type     FieldType
	Pattern  *regexp.Regexp
	Required bool
}

// RuleSet is an immutable, ordered collection of rules. Order follows the
// rule document, which makes rejection short-circuiting deterministic.
type RuleSet struct {
	ordered []Rule
	byField map[string]Rule
}

func newRuleSet(rules []Rule) *RuleSet {
	byField := make(map[string]Rule, len(rules))
	for _, r := range rules {
		byField[r.Field] = r
	}
	return &RuleSet{ordered: rules, byField: byField}
}

func (s *RuleSet) Len() int {
	return len(s.ordered)
}

// Ordered returns the rules in document order. The returned slice is a copy.
func (s *RuleSet) Ordered() []Rule {
	out := make([]Rule, len(s.ordered))
	copy(out, s.ordered)
	return out
}

func (s *RuleSet) Get(field string) (Rule, bool) {
	r, ok := s.byField[field]
	return r, ok
}

func (s *RuleSet) Fields() []string {
	fields := make([]string, len(s.ordered))
	for i, r := range s.ordered {
		fields[i] = r.Field
	}
	return fields
}
