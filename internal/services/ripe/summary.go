package ripe

import (
	"strconv"

	"github.com/buger/jsonparser"
)

// summaryKeys are the attribute names surfaced as summary tags, in output order.
var summaryKeys = []string{"netname", "descr", "country"}

// attributePath locates the attribute list of the first object in a search response.
var attributePath = []string{"objects", "object", "[0]", "attributes", "attribute"}

// ExtractSummary returns up to three tags (netname, descr, country, in that
// order) from the first object in a registry search response. For each key
// the first attribute with that name wins; keys that are missing or whose
// value is empty are skipped. Any missing or malformed level of the path
// yields an empty, non-nil slice.
func ExtractSummary(body []byte) []string {
	tags := make([]string, 0, len(summaryKeys))

	attrs, typ, _, err := jsonparser.Get(body, attributePath...)
	if err != nil || typ != jsonparser.Array {
		return tags
	}

	first := make(map[string]string, len(summaryKeys))
	seen := make(map[string]bool, len(summaryKeys))
	_, _ = jsonparser.ArrayEach(attrs, func(attr []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		name, err := jsonparser.GetString(attr, "name")
		if err != nil || !isSummaryKey(name) || seen[name] {
			return
		}
		seen[name] = true
		first[name] = attributeValue(attr)
	})

	for _, key := range summaryKeys {
		if v := first[key]; v != "" {
			tags = append(tags, v)
		}
	}
	return tags
}

func isSummaryKey(name string) bool {
	for _, k := range summaryKeys {
		if k == name {
			return true
		}
	}
	return false
}

// attributeValue renders an attribute's value as a tag. Falsy values
// (null, false, 0, "") render as "" and are dropped by the caller.
func attributeValue(attr []byte) string {
	value, typ, _, err := jsonparser.Get(attr, "value")
	if err != nil {
		return ""
	}
	switch typ {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return string(value)
		}
		return s
	case jsonparser.Boolean:
		if string(value) == "true" {
			return "true"
		}
		return ""
	case jsonparser.Number:
		if f, err := strconv.ParseFloat(string(value), 64); err == nil && f == 0 {
			return ""
		}
		return string(value)
	case jsonparser.Object, jsonparser.Array:
		return string(value)
	default:
		return ""
	}
}
