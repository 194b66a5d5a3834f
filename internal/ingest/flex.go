package ingest

import (
	"encoding/json"
	"strconv"
)

// FlexString decodes a field that upstream feeds emit either as a JSON
// string or as a bare number. Missing and null both decode to the empty
// string.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// FlexInt64 decodes an integer field that may arrive as a number, a numeric
// string, or a float. Unparseable content decodes to zero rather than failing
// the whole record; zero is treated downstream as missing.
type FlexInt64 int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt64) UnmarshalJSON(data []byte) error {
	*f = 0
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}

	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*f = FlexInt64(v)
		return nil
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		*f = FlexInt64(int64(v))
		return nil
	}
	return nil
}
