package catalog

import (
	"bytes"
	"encoding/json"
	"math"
)

// Skip reasons reported by the rank batch.
const (
	ReasonInvalidEntry = "Invalid id or rank"
	ReasonNotFound     = "Product not found"
	ReasonUpdateFailed = "Update failed"
)

// RankUpdate is one validated entry of a rank batch.
type RankUpdate struct {
	Index int  `json:"-"`
	ID    uint `json:"id"`
	Rank  int  `json:"rank"`
}

// SkippedRank reports an entry of the batch that was not applied.
type SkippedRank struct {
	Index  int             `json:"index"`
	Entry  json.RawMessage `json:"entry"`
	Reason string          `json:"reason"`
}

// RankReport is the response of the rank batch endpoint.
type RankReport struct {
	Updated []RankUpdate  `json:"updated"`
	Skipped []SkippedRank `json:"skipped"`
}

// ParseRankBatch validates each raw entry. An entry is valid when it is an
// object with a positive integer "id" and an integral numeric "rank".
// Invalid entries are returned as skipped, in input order.
func ParseRankBatch(entries []json.RawMessage) ([]RankUpdate, []SkippedRank) {
	valid := []RankUpdate{}
	skipped := []SkippedRank{}
	for i, raw := range entries {
		u, ok := parseRankEntry(raw)
		if !ok {
			skipped = append(skipped, SkippedRank{Index: i, Entry: raw, Reason: ReasonInvalidEntry})
			continue
		}
		u.Index = i
		valid = append(valid, u)
	}
	return valid, skipped
}

func parseRankEntry(raw json.RawMessage) (RankUpdate, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return RankUpdate{}, false
	}

	id, ok := integral(fields["id"])
	if !ok || id <= 0 || id > math.MaxUint32 {
		return RankUpdate{}, false
	}
	rank, ok := integral(fields["rank"])
	if !ok || rank < math.MinInt32 || rank > math.MaxInt32 {
		return RankUpdate{}, false
	}
	return RankUpdate{ID: uint(id), Rank: int(rank)}, true
}

// integral decodes a JSON number with no fractional part. Strings, booleans
// and null are rejected.
func integral(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	num, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if n, err := num.Int64(); err == nil {
		return n, true
	}
	f, err := num.Float64()
	if err != nil || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}
