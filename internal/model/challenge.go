package model

import (
	"bytes"
	"encoding/json"
)

// ChallengeID uniquely identifies a challenge in the pool
type ChallengeID string

// Topology describes how many parties take part in a challenge
type Topology string

const (
	TopologySolo     Topology = "solo"       // The current-turn participant alone
	TopologyPairwise Topology = "pairwise"   // One-on-one
	TopologyTeam     Topology = "team"       // Team against team
	TopologyAllVsAll Topology = "all_vs_all" // Everyone plays
)

// IsValid returns true for known topologies
func (t Topology) IsValid() bool {
	switch t {
	case TopologySolo, TopologyPairwise, TopologyTeam, TopologyAllVsAll:
		return true
	default:
		return false
	}
}

// ChallengeSettings is the per-challenge payload. The engine never inspects it
// beyond the variant tag; Raw is round-tripped byte for byte.
type ChallengeSettings struct {
	Variant string          // Value of the "type" key, empty if absent
	Raw     json.RawMessage // Original JSON object, nil when there is no payload
}

// NewChallengeSettings wraps a raw JSON payload, extracting its variant tag
func NewChallengeSettings(raw json.RawMessage) ChallengeSettings {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ChallengeSettings{}
	}
	var tag struct {
		Type string `json:"type"`
	}
	// Non-object payloads are kept opaque with no variant
	_ = json.Unmarshal(raw, &tag)
	return ChallengeSettings{
		Variant: tag.Type,
		Raw:     append(json.RawMessage(nil), raw...),
	}
}

// IsEmpty returns true if there is no payload
func (s ChallengeSettings) IsEmpty() bool {
	return len(s.Raw) == 0
}

// MarshalJSON writes the raw payload unchanged
func (s ChallengeSettings) MarshalJSON() ([]byte, error) {
	if s.IsEmpty() {
		return []byte("null"), nil
	}
	return s.Raw, nil
}

// UnmarshalJSON keeps the payload opaque
func (s *ChallengeSettings) UnmarshalJSON(data []byte) error {
	*s = NewChallengeSettings(data)
	return nil
}

// Challenge is an opaque typed challenge record
type Challenge struct {
	ID         ChallengeID       `json:"id"`
	Title      string            `json:"title"`
	Topology   Topology          `json:"topology"`
	PointValue int               `json:"point_value"`
	Reusable   bool              `json:"reusable"`
	Quiz       bool              `json:"quiz"` // Quiz challenges report final per-participant totals
	Settings   ChallengeSettings `json:"settings"`
}

// Clone returns a copy that shares no memory with the original
func (c Challenge) Clone() Challenge {
	if c.Settings.Raw != nil {
		c.Settings.Raw = append(json.RawMessage(nil), c.Settings.Raw...)
	}
	return c
}
