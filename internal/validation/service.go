package validation

import (
	"normas/internal/record"
	"normas/internal/rules"
)

// Validator applies a loaded rule set to raw records. It is stateless apart
// from the rule set, so one instance serves a whole run.
type Validator struct {
	rules []rules.Rule
}

func NewValidator(ruleSet *rules.RuleSet) *Validator {
	return &Validator{rules: ruleSet.Ordered()}
}

// Validate decides accept or reject for one document. Acceptance returns a
// copy with every ruled field coerced to its declared type; rejection
// returns the first failing rule's reason, in rule-set order, so the same
// bad record always yields the same reason. Fields without a rule pass
// through untouched.
func (v *Validator) Validate(doc record.Document) (record.Document, *Rejection) {
	out := doc.Clone()

	for _, rule := range v.rules {
		value, present := doc.Fields.Get(rule.Field)

		if !present || value.IsNull() || value.IsBlank() {
			if rule.Required {
				return record.Document{}, &Rejection{Code: MissingRequired, Field: rule.Field}
			}
			// Optional and effectively missing: stays absent.
			delete(out.Fields, rule.Field)
			continue
		}

		coerced, stringForm, ok := coerce(value, rule.Type)
		if !ok {
			return record.Document{}, &Rejection{
				Code:     TypeMismatch,
				Field:    rule.Field,
				Expected: rule.Type.String(),
			}
		}

		if rule.Pattern != nil && !rule.Pattern.MatchString(stringForm) {
			return record.Document{}, &Rejection{Code: PatternMismatch, Field: rule.Field}
		}

		out.Fields[rule.Field] = coerced
	}

	return out, nil
}

func coerce(v record.Value, t rules.FieldType) (record.Value, string, bool) {
	switch t {
	case rules.TypeString:
		return record.AsString(v)
	case rules.TypeInt:
		return record.AsInt(v)
	case rules.TypeBool:
		return record.AsBool(v)
	case rules.TypeDate:
		return record.AsDate(v)
	case rules.TypeDateTime:
		return record.AsDateTime(v)
	default:
		return record.Value{}, "", false
	}
}
