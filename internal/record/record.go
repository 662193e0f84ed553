package record

// Record maps field names to untyped scalar values, as produced by the
// fetch step. Fields absent from the map are absent from the record.
type Record map[string]Value

func (r Record) Get(field string) (Value, bool) {
	v, ok := r[field]
	return v, ok
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Document is one raw record plus its component associations. The scalar
// fields go through validation; component ids ride alongside untouched.
type Document struct {
	Fields     Record
	Components []int64
}

func (d Document) Clone() Document {
	comps := make([]int64, len(d.Components))
	copy(comps, d.Components)
	return Document{
		Fields:     d.Fields.Clone(),
		Components: comps,
	}
}
