package domain

// FetchKind identifies what a network fetch was for.
type FetchKind string

const (
	FetchKindAsset    FetchKind = "asset"
	FetchKindExtended FetchKind = "extended"
)

// FetchOutcome is the result class of a single fetch attempt.
type FetchOutcome string

const (
	FetchOutcomeOK        FetchOutcome = "ok"
	FetchOutcomeError     FetchOutcome = "error"
	FetchOutcomeMalformed FetchOutcome = "malformed"
)

// FetchEvent records one network attempt made by the caches.
// Corresponds to fetch_events table in ClickHouse.
type FetchEvent struct {
	URI         string
	Kind        FetchKind
	Mode        string // prefer-cache / bypass-cache
	Outcome     FetchOutcome
	Bytes       int64
	DurationMs  int64
	TimestampMs int64
}
