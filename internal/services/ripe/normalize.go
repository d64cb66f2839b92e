package ripe

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/polarityio/ripe/internal/services"
)

// Record is a successful registry response for one entity.
type Record struct {
	Entity services.Entity
	Body   json.RawMessage
}

// statusKinds maps the registry's documented error statuses to their Kind.
var statusKinds = map[int]Kind{
	http.StatusBadRequest:           BadRequest,
	http.StatusForbidden:            Forbidden,
	http.StatusNotFound:             NotFound,
	http.StatusMethodNotAllowed:     MethodNotAllowed,
	http.StatusConflict:             Conflict,
	http.StatusUnsupportedMediaType: UnsupportedMediaType,
	http.StatusInternalServerError:  InternalServerError,
}

// Classify maps the outcome of a single registry request to a Record or a
// *ClassifiedError. status is 0 when no response was received.
//
// The rules apply in order: a transport error wins; a 200 with a truthy body
// is a success; a documented error status is mapped with the body's
// query_status as detail; everything else, including a 200 whose body is
// absent or falsy (null, false, 0, ""), is an UnexpectedError.
func Classify(transportErr error, status int, body []byte, entity services.Entity) (Record, error) {
	if transportErr != nil {
		return Record{}, &ClassifiedError{
			Kind:   TransportError,
			Detail: detailTransport,
			Entity: &entity,
			Err:    transportErr,
		}
	}

	if status == http.StatusOK && truthy(body) {
		return Record{Entity: entity, Body: asJSON(body)}, nil
	}

	if kind, ok := statusKinds[status]; ok {
		return Record{}, &ClassifiedError{
			Kind:       kind,
			Detail:     queryStatus(body),
			StatusCode: status,
			Entity:     &entity,
		}
	}

	cerr := &ClassifiedError{
		Kind:       UnexpectedError,
		Detail:     detailUnexpected,
		StatusCode: status,
		Entity:     &entity,
	}
	if len(bytes.TrimSpace(body)) > 0 {
		cerr.Body = asJSON(body)
	}
	return Record{}, cerr
}

// truthy reports whether body decodes to a JSON value that is not null,
// false, 0 or the empty string. Non-JSON text counts as a non-empty string.
func truthy(body []byte) bool {
	if len(bytes.TrimSpace(body)) == 0 {
		return false
	}
	value, typ, _, err := jsonparser.Get(body)
	if err != nil {
		return true
	}
	switch typ {
	case jsonparser.Null, jsonparser.NotExist:
		return false
	case jsonparser.Boolean:
		return string(value) == "true"
	case jsonparser.Number:
		f, err := strconv.ParseFloat(string(value), 64)
		return err != nil || f != 0
	case jsonparser.String:
		return len(value) > 0
	default:
		return true
	}
}

// isEmptyRecord reports whether a successful body carries no registry record.
func isEmptyRecord(body []byte) bool {
	value, typ, _, err := jsonparser.Get(body)
	if err != nil {
		return false
	}
	switch typ {
	case jsonparser.Null:
		return true
	case jsonparser.String:
		return len(value) == 0
	case jsonparser.Array:
		return len(bytes.TrimSpace(value[1:len(value)-1])) == 0
	default:
		return false
	}
}

// queryStatus extracts the registry's diagnostic for an error response.
// It prefers the top-level query_status and falls back to the first
// errormessages.errormessage[].text, the shape the RIPE REST API uses.
func queryStatus(body []byte) string {
	if s := scalarText(body, "query_status"); s != "" {
		return s
	}
	return scalarText(body, "errormessages", "errormessage", "[0]", "text")
}

// scalarText returns the value at path as text; strings are unescaped,
// other JSON values are returned verbatim. Missing paths yield "".
func scalarText(body []byte, path ...string) string {
	value, typ, _, err := jsonparser.Get(body, path...)
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
	case jsonparser.Null, jsonparser.NotExist:
		return ""
	default:
		return string(value)
	}
}

// asJSON returns body unchanged when it is valid JSON, otherwise the body
// encoded as a JSON string so it can be embedded in results.
func asJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}
