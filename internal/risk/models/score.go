package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Score is a numeric field that tolerates string-encoded numbers on the
// wire. Questionnaire clients post form values, so "4" and 4 must both parse.
type Score int

// UnmarshalJSON coerces numbers and numeric strings; anything else fails.
func (s *Score) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*s = Score(v)
		return nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return fmt.Errorf("score: empty string")
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return fmt.Errorf("score: not a number: %q", v)
		}
		*s = Score(parsed)
		return nil
	case nil:
		*s = 0
		return nil
	default:
		return fmt.Errorf("score: unsupported type %T", raw)
	}
}
