package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as indented JSON. Characters such as & and <
// in file names are written literally.
type JSONFormatter struct{}

// Format formats data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}
