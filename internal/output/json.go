package output

import (
	"encoding/json"
	"io"
)

// RenderJSON writes v as indented JSON. HTML escaping is off so plan
// conditions such as "(order_date >= ...)" stay readable.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
