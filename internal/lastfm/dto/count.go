package dto

import (
	"strconv"
	"strings"
)

// Count is a numeric field that Last.fm encodes either as a JSON number or as
// a quoted string ("playcount": "12345").
type Count int64

// UnmarshalJSON accepts numbers, numeric strings, "" and null.
func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*c = Count(n)
	return nil
}
