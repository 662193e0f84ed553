package regulation

import (
	"fmt"
	"strings"
	"time"

	"normas/internal/constants"
	"normas/internal/record"
)

// Regulation is one row of the regulations table plus its component
// associations. Rows are insert-only for this pipeline.
type Regulation struct {
	ID               int64
	CreatedAt        string // canonical yyyy-mm-dd
	UpdateAt         time.Time
	IsActive         bool
	Title            string
	GType            *string
	Entity           string
	ExternalLink     *string
	RTypeID          *int64
	Summary          *string
	ClassificationID *int64
	Components       []int64
}

// Key is the idempotency triple. NULL links normalize to the empty string
// and titles are compared trimmed, so keys match across runs and against
// what storage reports.
type Key struct {
	Title        string
	CreatedAt    string
	ExternalLink string
}

func (k Key) String() string {
	return k.Title + "|" + k.CreatedAt + "|" + k.ExternalLink
}

func (r *Regulation) Key() Key {
	link := ""
	if r.ExternalLink != nil {
		link = *r.ExternalLink
	}
	return Key{
		Title:        strings.TrimSpace(r.Title),
		CreatedAt:    r.CreatedAt,
		ExternalLink: link,
	}
}

// FromDocument maps a validated document onto a Regulation. The validator
// guarantees required fields are present and typed; anything still missing
// here means the rule document does not cover the storage contract.
func FromDocument(doc record.Document) (Regulation, error) {
	title, ok := stringField(doc.Fields, "title")
	if !ok {
		return Regulation{}, fmt.Errorf("document has no usable title")
	}

	createdAt, ok := stringField(doc.Fields, "created_at")
	if !ok {
		return Regulation{}, fmt.Errorf("document has no usable created_at")
	}

	entity, ok := stringField(doc.Fields, "entity")
	if !ok {
		return Regulation{}, fmt.Errorf("document has no usable entity")
	}

	reg := Regulation{
		CreatedAt:        createdAt,
		IsActive:         true,
		Title:            strings.TrimSpace(title),
		Entity:           entity,
		GType:            optionalString(doc.Fields, "gtype"),
		ExternalLink:     optionalString(doc.Fields, "external_link"),
		RTypeID:          optionalInt(doc.Fields, "rtype_id"),
		Summary:          optionalString(doc.Fields, "summary"),
		ClassificationID: optionalInt(doc.Fields, "classification_id"),
		Components:       append([]int64(nil), doc.Components...),
	}

	if active, ok := doc.Fields.Get("is_active"); ok {
		if b, isBool := active.BoolValue(); isBool {
			reg.IsActive = b
		}
	}

	reg.UpdateAt = time.Now()
	if raw, ok := stringField(doc.Fields, "update_at"); ok {
		if t, err := time.Parse(constants.DateTimeLayout, raw); err == nil {
			reg.UpdateAt = t
		}
	}

	return reg, nil
}

func stringField(fields record.Record, name string) (string, bool) {
	v, ok := fields.Get(name)
	if !ok || v.IsNull() {
		return "", false
	}
	s, ok := v.StringValue()
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func optionalString(fields record.Record, name string) *string {
	s, ok := stringField(fields, name)
	if !ok {
		return nil
	}
	return &s
}

func optionalInt(fields record.Record, name string) *int64 {
	v, ok := fields.Get(name)
	if !ok || v.IsNull() {
		return nil
	}
	f, ok := v.NumberValue()
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}
