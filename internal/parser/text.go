package parser

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText turns raw file bytes into text the way a browser reads a file as
// text: a UTF-8 or UTF-16 byte order mark selects the encoding and is dropped,
// otherwise the bytes are UTF-8 and invalid sequences become U+FFFD.
func DecodeText(data []byte) string {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "�")
	}
	return string(out)
}
