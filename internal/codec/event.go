package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
	jsoniter "github.com/json-iterator/go"
)

const (
	fieldID        = "id"
	fieldType      = "type"
	fieldTitle     = "title"
	fieldUser      = "user"
	fieldTimestamp = "timestamp"
	fieldWiki      = "wiki"
	fieldComment   = "comment"
)

var requiredFields = []string{fieldID, fieldType, fieldTitle, fieldUser, fieldTimestamp, fieldWiki}

type EventCodec struct {
	api jsoniter.API
}

func New() *EventCodec {
	return &EventCodec{
		api: jsoniter.Config{UseNumber: true}.Froze(),
	}
}

// Decode turns a raw payload into an Event. It fails with *errs.ParseError
// when the payload is not a JSON object and with *errs.ValidationError when
// any required field is absent or null. Present values are always coerced,
// never rejected.
func (c *EventCodec) Decode(raw []byte) (*entity.Event, error) {
	var tree map[string]interface{}

	err := c.api.Unmarshal(raw, &tree)
	if err != nil {
		return nil, &errs.ParseError{Raw: raw, Err: fmt.Errorf("EventCodec - Decode - c.api.Unmarshal: %w", err)}
	}
	if tree == nil {
		return nil, &errs.ParseError{Raw: raw, Err: fmt.Errorf("EventCodec - Decode: payload is not a JSON object")}
	}

	var missing []string
	for _, f := range requiredFields {
		if v, ok := tree[f]; !ok || v == nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &errs.ValidationError{Raw: raw, Missing: missing}
	}

	event := &entity.Event{
		ID:        asText(tree[fieldID]),
		Type:      asText(tree[fieldType]),
		Title:     asText(tree[fieldTitle]),
		User:      asText(tree[fieldUser]),
		Timestamp: asInt64(tree[fieldTimestamp]),
		Wiki:      asText(tree[fieldWiki]),
		Comment:   asText(tree[fieldComment]),
	}

	return event, nil
}

// asText renders a node as text. Containers and null have no text form and become "".
func asText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asInt64 coerces a node to a whole number. Fractions are truncated toward
// zero and out-of-range values saturate; text that is not a number,
// containers and null become 0.
func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case json.Number:
		return parseInt64(t.String())
	case string:
		return parseInt64(strings.TrimSpace(t))
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func parseInt64(lit string) int64 {
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return n
	}

	f, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}

	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
