package extract

import (
	"bytes"
	"fmt"

	"code.sajari.com/docconv"

	"github.com/obinna-dev/drivesage/internal/core"
)

// pdfText decodes a PDF byte stream into page-ordered glyph text.
// A malformed stream is a decode failure, not an empty result.
func pdfText(raw []byte) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(raw), "application/pdf", false)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrDecodeFailure, err)
	}
	return res.Body, nil
}
