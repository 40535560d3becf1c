package scrapemd_test

import (
	"testing"

	"github.com/akarpinski/scrapemd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		doc := &scrapemd.Document{
			URL:    "https://example.com/article",
			Source: scrapemd.SourceWeb,
		}

		require.NoError(t, doc.Validate())
	})

	t.Run("missing URL", func(t *testing.T) {
		t.Parallel()

		doc := &scrapemd.Document{Source: scrapemd.SourceWeb}

		err := doc.Validate()

		require.Error(t, err)
		assert.Equal(t, scrapemd.EINVALID, scrapemd.ErrorCode(err))
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		doc := &scrapemd.Document{URL: "https://example.com"}

		err := doc.Validate()

		require.Error(t, err)
		assert.Equal(t, scrapemd.EINVALID, scrapemd.ErrorCode(err))
	})
}

func TestScrapeRequest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https URL", "https://example.com/article", false},
		{"valid http URL", "http://example.com", false},
		{"empty", "", true},
		{"relative path", "/article", true},
		{"missing scheme", "example.com/article", true},
		{"unsupported scheme", "ftp://example.com/file", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := &scrapemd.ScrapeRequest{URL: tt.url}
			err := req.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, scrapemd.EINVALID, scrapemd.ErrorCode(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}
