package constants

import "time"

const (
	// EntityName is the issuing entity for every record this pipeline ingests.
	EntityName = "Agencia Nacional de Infraestructura"

	// FixedClassificationID is stamped on every scraped record.
	FixedClassificationID = 13

	// DefaultComponentID associates each regulation with the standard component.
	DefaultComponentID = 7
)

// Regulation type ids derived from title keywords.
const (
	RTypeResolution int64 = 15
	RTypeDecree     int64 = 14
	DefaultRTypeID  int64 = 14
)

// RTypeKeyword pairs a lowercase title keyword with its regulation type id.
type RTypeKeyword struct {
	Keyword string
	ID      int64
}

// RTypeKeywords is matched in order, so a title carrying several keywords
// always resolves to the same type.
var RTypeKeywords = []RTypeKeyword{
	{Keyword: "resolución", ID: RTypeResolution},
	{Keyword: "resolucion", ID: RTypeResolution},
	{Keyword: "decreto", ID: RTypeDecree},
}

// MaxFetchTitleLength caps titles accepted at the fetch step. Longer rows on
// the portal listing are navigation noise, not documents.
const MaxFetchTitleLength = 65

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

const (
	DefaultHTTPTimeout = 15 * time.Second
	ShutdownTimeout    = 5 * time.Second
)
