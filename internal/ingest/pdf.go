package ingest

import (
	"bytes"

	"github.com/ledongthuc/pdf"

	"studybuddy/internal/debuglog"
)

// pageCount reports the number of pages of a PDF payload, or 0 when the
// document cannot be parsed.
func pageCount(raw []byte) (pages int) {
	defer func() {
		if r := recover(); r != nil {
			debuglog.Printf("ingest: pdf parser panicked: %v", r)
			pages = 0
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		debuglog.Printf("ingest: pdf page count unavailable: %v", err)
		return 0
	}
	return reader.NumPage()
}
