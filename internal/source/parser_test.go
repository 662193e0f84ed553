package source

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"normas/internal/record"
)

const listingPage = `
<html><body><table><tbody>
  <tr>
    <td class="views-field views-field-title">
      <a href="/sites/default/files/resolucion_123.pdf">“Resolución 20251234”</a>
    </td>
    <td class="views-field views-field-body">POR LA CUAL SE ADOPTA EL PLAN</td>
    <td class="views-field views-field-field-fecha--1">
      <span class="date-display-single" content="2024-03-15T00:00:00-05:00">15/03/2024</span>
    </td>
  </tr>
  <tr>
    <td class="views-field views-field-title">
      <a href="https://example.org/decreto_45.pdf">Decreto 45</a>
    </td>
    <td class="views-field views-field-body"></td>
    <td class="views-field views-field-field-fecha--1">5/3/2024</td>
  </tr>
  <tr>
    <td class="views-field views-field-title">
      <a href="/too-long">Listado completo de todos los documentos normativos expedidos durante la vigencia</a>
    </td>
    <td class="views-field views-field-field-fecha--1">01/01/2024</td>
  </tr>
  <tr>
    <td class="views-field views-field-title">Sin enlace</td>
    <td class="views-field views-field-field-fecha--1">01/01/2024</td>
  </tr>
</tbody></table></body></html>`

func testOptions() ParseOptions {
	fetchedAt, _ := time.Parse("2006-01-02 15:04:05", "2024-03-20 08:00:00")
	return ParseOptions{
		Entity:       "Agencia Nacional de Infraestructura",
		LinkBase:     "https://www.ani.gov.co",
		ComponentIDs: []int64{7},
		FetchedAt:    fetchedAt,
	}
}

func fieldString(t *testing.T, doc record.Document, name string) string {
	t.Helper()
	v, ok := doc.Fields.Get(name)
	require.True(t, ok, "field %s missing", name)
	s, ok := v.StringValue()
	require.True(t, ok, "field %s is not a string", name)
	return s
}

func fieldNumber(t *testing.T, doc record.Document, name string) float64 {
	t.Helper()
	v, ok := doc.Fields.Get(name)
	require.True(t, ok, "field %s missing", name)
	n, ok := v.NumberValue()
	require.True(t, ok, "field %s is not a number", name)
	return n
}

func TestParseListing(t *testing.T) {
	docs, err := ParseListing(strings.NewReader(listingPage), testOptions())
	require.NoError(t, err)

	// The over-long title and the anchorless row are skipped.
	require.Len(t, docs, 2)

	first := docs[0]
	assert.Equal(t, "Resolución 20251234", fieldString(t, first, "title"))
	assert.Equal(t, "https://www.ani.gov.co/sites/default/files/resolucion_123.pdf",
		fieldString(t, first, "external_link"))
	assert.Equal(t, "Por la cual se adopta el plan", fieldString(t, first, "summary"))
	assert.Equal(t, "2024-03-15", fieldString(t, first, "created_at"))
	assert.Equal(t, float64(15), fieldNumber(t, first, "rtype_id"))
	assert.Equal(t, float64(13), fieldNumber(t, first, "classification_id"))
	assert.Equal(t, "Agencia Nacional de Infraestructura", fieldString(t, first, "entity"))
	assert.Equal(t, "2024-03-20 08:00:00", fieldString(t, first, "update_at"))
	assert.Equal(t, []int64{7}, first.Components)

	second := docs[1]
	assert.Equal(t, "Decreto 45", fieldString(t, second, "title"))
	// Absolute hrefs are kept as-is.
	assert.Equal(t, "https://example.org/decreto_45.pdf", fieldString(t, second, "external_link"))
	assert.Equal(t, "2024-03-05", fieldString(t, second, "created_at"))
	assert.Equal(t, float64(14), fieldNumber(t, second, "rtype_id"))

	summary, ok := second.Fields.Get("summary")
	require.True(t, ok)
	assert.True(t, summary.IsNull())
}

func TestParseListing_NoTable(t *testing.T) {
	docs, err := ParseListing(strings.NewReader("<html><body><p>mantenimiento</p></body></html>"), testOptions())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{name: "iso timestamp", in: "2024-03-15T00:00:00-05:00", want: "2024-03-15", valid: true},
		{name: "slash date", in: "15/03/2024", want: "2024-03-15", valid: true},
		{name: "slash date single digits", in: "5/3/2024", want: "2024-03-05", valid: true},
		{name: "already canonical", in: "2024-03-15", want: "2024-03-15", valid: true},
		{name: "blank", in: "   ", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeDate(tt.in)
			require.Equal(t, tt.valid, ok)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCleanQuotes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `"Resolución 123"`, want: "Resolución 123"},
		{in: "“Decreto  45”", want: "Decreto 45"},
		{in: "  spaced   out  ", want: "spaced out"},
		{in: "«guillemets»", want: "guillemets"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanQuotes(tt.in))
	}
}

func TestRTypeID(t *testing.T) {
	tests := []struct {
		title string
		want  int64
	}{
		{title: "Resolución 20251234", want: 15},
		{title: "RESOLUCION 17", want: 15},
		{title: "Decreto 45", want: 14},
		{title: "Circular 9", want: 14},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rtypeID(tt.title))
	}
}

func TestRTypeID_DualKeywordIsStable(t *testing.T) {
	// Resolución outranks decreto when a title carries both, on every call.
	title := "Resolución que modifica el Decreto 123"
	for i := 0; i < 500; i++ {
		assert.Equal(t, int64(15), rtypeID(title))
	}
}
