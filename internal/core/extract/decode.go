package extract

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
)

// decodePlainText decodes raw bytes using the charset declared in the
// MIME type, falling back to UTF-8 when none is declared or the name is
// unknown. Invalid byte sequences are replaced rather than dropped so
// extraction of the same bytes stays deterministic.
func decodePlainText(raw []byte, mimeType string) string {
	if name := declaredCharset(mimeType); name != "" {
		if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
			if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(decoded)
			}
		}
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

// declaredCharset pulls the charset parameter out of a MIME type like
// "text/plain; charset=ISO-8859-1". UTF-8 is treated as undeclared since
// it is the default path anyway.
func declaredCharset(mimeType string) string {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	cs := strings.TrimSpace(params["charset"])
	if strings.EqualFold(cs, "utf-8") {
		return ""
	}
	return cs
}
