package bookstore

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseCategoryIDs converts the store's loosely-serialized category-id
// field into a typed id list. Well-formed JSON arrays are taken as-is;
// anything else falls back to extracting digit runs, so missing brackets
// or stray characters degrade gracefully instead of failing. Non-positive
// ids (including the cache layer's empty-set placeholder) are dropped and
// the result is deduplicated in order of first appearance.
func ParseCategoryIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parsed []int64
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return dedupePositive(parsed)
	}

	var ids []int64
	start := -1
	for i := 0; i <= len(raw); i++ {
		if i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			if v, err := strconv.ParseInt(raw[start:i], 10, 64); err == nil {
				ids = append(ids, v)
			}
			start = -1
		}
	}
	return dedupePositive(ids)
}

// FormatCategoryIDs renders ids in the serialized array form the store
// keeps, the inverse of ParseCategoryIDs for well-formed input.
func FormatCategoryIDs(ids []int64) string {
	ids = dedupePositive(ids)
	if len(ids) == 0 {
		return "[]"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// DiffIDs returns the ids present in a but not in b, preserving a's order.
func DiffIDs(a, b []int64) []int64 {
	if len(a) == 0 {
		return nil
	}
	drop := make(map[int64]struct{}, len(b))
	for _, id := range b {
		drop[id] = struct{}{}
	}
	var out []int64
	for _, id := range a {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func dedupePositive(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
