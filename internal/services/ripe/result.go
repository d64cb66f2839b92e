package ripe

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/polarityio/ripe/internal/output"
	"github.com/polarityio/ripe/internal/services"
)

// LookupData is the registry payload for an entity that has a record.
type LookupData struct {
	Summary []string        `json:"summary"`
	Details json.RawMessage `json:"details"`
}

// LookupResult is the outcome for one entity. Data is nil when the registry
// returned no record.
type LookupResult struct {
	Entity services.Entity `json:"entity"`
	Data   *LookupData     `json:"data"`
}

// summaryText joins the summary tags for display, stripped of terminal escapes.
func (r *LookupResult) summaryText() string {
	if r.Data == nil {
		return ""
	}
	tags := make([]string, 0, len(r.Data.Summary))
	for _, t := range r.Data.Summary {
		tags = append(tags, output.StripANSI(t))
	}
	return strings.Join(tags, "; ")
}

// BatchResult is the ordered result list of one DoLookup call.
type BatchResult struct {
	Results []LookupResult
}

// IsEmpty reports whether no entity has a registry record.
func (b BatchResult) IsEmpty() bool {
	for _, r := range b.Results {
		if r.Data != nil {
			return false
		}
	}
	return true
}

// MarshalJSON serializes the batch as a JSON array of results.
func (b BatchResult) MarshalJSON() ([]byte, error) {
	if b.Results == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.Results)
}

// LogValue renders one attribute per entity holding its summary, so debug
// logs stay readable without dumping raw registry bodies.
func (b BatchResult) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(b.Results))
	for i := range b.Results {
		r := &b.Results[i]
		v := "<no record>"
		if r.Data != nil {
			v = "[" + r.summaryText() + "]"
		}
		attrs = append(attrs, slog.String(r.Entity.Value, v))
	}
	return slog.GroupValue(attrs...)
}

// WriteTable renders the batch as an Entity / Type / Summary table.
func (b BatchResult) WriteTable(w io.Writer) error {
	rows := make([][]string, 0, len(b.Results))
	for i := range b.Results {
		r := &b.Results[i]
		summary := r.summaryText()
		if r.Data == nil {
			summary = "no record"
		}
		rows = append(rows, []string{output.StripANSI(r.Entity.Value), string(r.Entity.Type), summary})
	}
	tbl := output.NewWrappingTable(w, 20, 40)
	tbl.Header([]string{"Entity", "Type", "Summary"})
	if err := tbl.Bulk(rows); err != nil {
		return err
	}
	return tbl.Render()
}

// WritePlain writes one line per entity: the entity followed by its summary
// tags separated by "; ", or "-" when there is no record.
func (b BatchResult) WritePlain(w io.Writer) error {
	for i := range b.Results {
		r := &b.Results[i]
		summary := r.summaryText()
		if r.Data == nil || summary == "" {
			summary = "-"
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", output.StripANSI(r.Entity.Value), summary); err != nil {
			return err
		}
	}
	return nil
}
