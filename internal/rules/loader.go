package rules

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	apperrors "normas/pkg/errors"
)

// ruleSpec is the YAML shape of one field entry in the rule document.
type ruleSpec struct {
	Type     string `yaml:"type"`
	Regex    string `yaml:"regex"`
	Required bool   `yaml:"required"`
}

// Load reads the rule document and produces an immutable RuleSet. The
// document is decoded through yaml.Node so field order is preserved; plain
// map decoding would randomize it and with it the rejection order.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrConfig.WithMessagef("failed to read rule document %s", path).WithCause(err)
	}
	return Parse(data)
}

// Parse builds a RuleSet from the raw YAML rule document.
func Parse(data []byte) (*RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.ErrConfig.WithMessage("rule document is not valid YAML").WithCause(err)
	}

	fieldsNode, err := fieldsMapping(&doc)
	if err != nil {
		return nil, apperrors.ErrConfig.WithMessage("malformed rule document").WithCause(err)
	}

	parsed := make([]Rule, 0, len(fieldsNode.Content)/2)
	seen := make(map[string]struct{})

	// Mapping nodes hold key/value pairs flattened into Content.
	for i := 0; i+1 < len(fieldsNode.Content); i += 2 {
		keyNode := fieldsNode.Content[i]
		valueNode := fieldsNode.Content[i+1]

		field := keyNode.Value
		if _, dup := seen[field]; dup {
			return nil, apperrors.ErrConfig.WithMessagef("duplicate rule for field %q", field)
		}
		seen[field] = struct{}{}

		var spec ruleSpec
		if err := valueNode.Decode(&spec); err != nil {
			return nil, apperrors.ErrConfig.WithMessagef("malformed rule for field %q", field).WithCause(err)
		}

		rule, err := buildRule(field, spec)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, rule)
	}

	return newRuleSet(parsed), nil
}

func fieldsMapping(doc *yaml.Node) (*yaml.Node, error) {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "fields" {
			node := root.Content[i+1]
			if node.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("'fields' must be a mapping of field names to rules")
			}
			return node, nil
		}
	}

	return nil, fmt.Errorf("missing top-level 'fields' key")
}

func buildRule(field string, spec ruleSpec) (Rule, error) {
	fieldType, err := ParseFieldType(spec.Type)
	if err != nil {
		return Rule{}, apperrors.ErrConfig.WithMessagef("rule for field %q", field).WithCause(err)
	}

	rule := Rule{
		Field:    field,
		Type:     fieldType,
		Required: spec.Required,
	}

	if spec.Regex != "" {
		// Anchor so the whole string form must match, not a prefix.
		pattern, err := regexp.Compile(`\A(?:` + spec.Regex + `)\z`)
		if err != nil {
			return Rule{}, apperrors.ErrConfig.WithMessagef("rule for field %q has invalid regex", field).WithCause(err)
		}
		rule.Pattern = pattern
	}

	return rule, nil
}
