package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingEventFields marks an upstream event that still lacks required
// fields after normalization and must be dropped.
var ErrMissingEventFields = errors.New("upstream event is missing required fields")

// ProductEvent is a normalized upstream event. SourceID may be empty when
// the upstream carried no usable identifier; the reconciler synthesizes
// one in that case.
type ProductEvent struct {
	SourceID    string
	EventType   string
	OriginLat   float64
	OriginLong  float64
	CityCode    string
	CountryCode string
}

// coordinate tolerates both JSON numbers and the string-encoded decimals
// some upstreams emit for lat/long values.
type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid coordinate %q: %w", s, err)
	}
	*c = coordinate(f)
	return nil
}

// rawEvent captures every identifier spelling seen across upstream
// revisions. Priority order for the event identity is documented in
// normalize below.
type rawEvent struct {
	ID            string     `json:"id"`
	SourceID      string     `json:"source_id"`
	SourceIDDash  string     `json:"source-id"`
	SourceIDCamel string     `json:"sourceId"`
	EventType     string     `json:"event_type"`
	OriginLat     coordinate `json:"origin_lat"`
	OriginLong    coordinate `json:"origin_long"`
	CityCode      string     `json:"city_code"`
	CountryCode   string     `json:"country_code"`
}

var validEventTypes = map[string]bool{
	"user_created":           true,
	"download_started":       true,
	"subscription_activated": true,
}

// normalize converts a raw upstream event into a ProductEvent. The event
// identifier is taken from the first present of source_id, source-id,
// sourceId, id; nothing beyond that order is guessed. Events without a
// valid event type or location codes fail with ErrMissingEventFields.
func normalize(raw rawEvent) (ProductEvent, error) {
	sourceID := raw.SourceID
	if sourceID == "" {
		sourceID = raw.SourceIDDash
	}
	if sourceID == "" {
		sourceID = raw.SourceIDCamel
	}
	if sourceID == "" {
		sourceID = raw.ID
	}

	if !validEventTypes[raw.EventType] {
		return ProductEvent{}, fmt.Errorf("%w: event_type %q", ErrMissingEventFields, raw.EventType)
	}
	if len(raw.CityCode) != 3 || len(raw.CountryCode) != 3 {
		return ProductEvent{}, fmt.Errorf("%w: city/country codes", ErrMissingEventFields)
	}

	return ProductEvent{
		SourceID:    sourceID,
		EventType:   raw.EventType,
		OriginLat:   float64(raw.OriginLat),
		OriginLong:  float64(raw.OriginLong),
		CityCode:    strings.ToUpper(raw.CityCode),
		CountryCode: strings.ToUpper(raw.CountryCode),
	}, nil
}

// normalizeBatch decodes and normalizes a raw event array one entry at a
// time so a single malformed event never poisons the whole batch.
func normalizeBatch(rawList []json.RawMessage) ([]ProductEvent, int) {
	events := make([]ProductEvent, 0, len(rawList))
	dropped := 0

	for _, msg := range rawList {
		var raw rawEvent
		if err := json.Unmarshal(msg, &raw); err != nil {
			dropped++
			continue
		}
		event, err := normalize(raw)
		if err != nil {
			dropped++
			continue
		}
		events = append(events, event)
	}
	return events, dropped
}
