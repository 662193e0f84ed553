package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueBasics(t *testing.T) {
	assert.True(t, Null().IsNull())
	assert.False(t, String("x").IsNull())

	assert.True(t, String("").IsBlank())
	assert.True(t, String("   \t").IsBlank())
	assert.False(t, String("a").IsBlank())
	assert.False(t, Number(0).IsBlank())
	assert.False(t, Bool(false).IsBlank())
}

func TestAsString(t *testing.T) {
	tests := []struct {
		name  string
		in    Value
		want  string
		valid bool
	}{
		{name: "string passthrough", in: String("Decreto 123"), want: "Decreto 123", valid: true},
		{name: "integral number", in: Number(13), want: "13", valid: true},
		{name: "bool", in: Bool(true), want: "true", valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, str, ok := AsString(tt.in)
			require.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, str)

			s, isStr := got.StringValue()
			require.True(t, isStr)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name  string
		in    Value
		want  string
		valid bool
	}{
		{name: "numeric string", in: String("15"), want: "15", valid: true},
		{name: "integral float", in: Number(14), want: "14", valid: true},
		{name: "fractional float", in: Number(14.5), valid: false},
		{name: "non numeric string", in: String("resolución"), valid: false},
		{name: "bool is not int", in: Bool(true), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, str, ok := AsInt(tt.in)
			require.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, str)
			}
		})
	}
}

func TestAsBool(t *testing.T) {
	tests := []struct {
		name  string
		in    Value
		want  bool
		valid bool
	}{
		{name: "native bool", in: Bool(true), want: true, valid: true},
		{name: "true string", in: String("true"), want: true, valid: true},
		{name: "one", in: String("1"), want: true, valid: true},
		{name: "zero", in: String("0"), want: false, valid: true},
		{name: "false string", in: String("false"), want: false, valid: true},
		{name: "arbitrary string", in: String("yes"), valid: false},
		{name: "number", in: Number(2), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, ok := AsBool(tt.in)
			require.Equal(t, tt.valid, ok)
			if tt.valid {
				b, isBool := got.BoolValue()
				require.True(t, isBool)
				assert.Equal(t, tt.want, b)
			}
		})
	}
}

func TestAsDate(t *testing.T) {
	tests := []struct {
		name  string
		in    Value
		want  string
		valid bool
	}{
		{name: "canonical", in: String("2024-01-01"), want: "2024-01-01", valid: true},
		{name: "wrong order", in: String("01-01-2024"), valid: false},
		{name: "not a date", in: String("mañana"), valid: false},
		{name: "datetime is not a date", in: String("2024-01-01 10:00:00"), valid: false},
		{name: "number", in: Number(20240101), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, str, ok := AsDate(tt.in)
			require.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, str)
			}
		})
	}
}

func TestAsDateTime(t *testing.T) {
	tests := []struct {
		name  string
		in    Value
		valid bool
	}{
		{name: "canonical", in: String("2024-01-01 10:30:00"), valid: true},
		{name: "rfc3339", in: String("2024-01-01T10:30:00Z"), valid: true},
		{name: "date only", in: String("2024-01-01"), valid: false},
		{name: "garbage", in: String("later"), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := AsDateTime(tt.in)
			require.Equal(t, tt.valid, ok)
		})
	}
}
