package mock

import (
	"context"

	"github.com/akarpinski/scrapemd"
)

var _ scrapemd.DocumentWriter = (*DocumentWriter)(nil)

// DocumentWriter is a mock implementation of scrapemd.DocumentWriter.
type DocumentWriter struct {
	WriteDocumentFn func(ctx context.Context, doc *scrapemd.Document) (string, error)
}

func (w *DocumentWriter) WriteDocument(ctx context.Context, doc *scrapemd.Document) (string, error) {
	return w.WriteDocumentFn(ctx, doc)
}
