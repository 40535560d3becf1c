package goquery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpinski/scrapemd/goquery"
)

func TestTitleFromHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "prefers og:title over title element",
			html: `<html><head><title>Raw Title - Site Name</title><meta property="og:title" content="Raw Title"></head></html>`,
			want: "Raw Title",
		},
		{
			name: "falls back to title element",
			html: `<html><head><title>Page Title</title></head><body></body></html>`,
			want: "Page Title",
		},
		{
			name: "ignores empty og:title",
			html: `<html><head><meta property="og:title" content="  "><title>Fallback</title></head></html>`,
			want: "Fallback",
		},
		{
			name: "trims whitespace",
			html: "<html><head><title>\n  Spaced Out  \n</title></head></html>",
			want: "Spaced Out",
		},
		{
			name: "uses first title element",
			html: `<html><head><title>First</title></head><body><svg><title>Icon</title></svg></body></html>`,
			want: "First",
		},
		{
			name: "no title at all",
			html: `<html><body><p>content</p></body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := goquery.TitleFromHTML(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMetaDescription(t *testing.T) {
	t.Parallel()

	t.Run("name attribute", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.MetaDescription(`<html><head><meta name="description" content="A summary."></head></html>`)
		require.NoError(t, err)
		assert.Equal(t, "A summary.", got)
	})

	t.Run("og fallback", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.MetaDescription(`<html><head><meta property="og:description" content="Social summary."></head></html>`)
		require.NoError(t, err)
		assert.Equal(t, "Social summary.", got)
	})

	t.Run("absent", func(t *testing.T) {
		t.Parallel()

		got, err := goquery.MetaDescription(`<html><head></head></html>`)
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})
}
