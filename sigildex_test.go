package sigildex_test

import (
	"testing"

	"github.com/athanor/sigildex"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := sigildex.Errorf(sigildex.ENOTFOUND, "symbol %q not found", "test")

	assert.Equal(t, sigildex.ENOTFOUND, sigildex.ErrorCode(err))
	assert.Equal(t, "symbol \"test\" not found", sigildex.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sigildex.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, sigildex.EINTERNAL, sigildex.ErrorCode(assert.AnError))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sigildex.ErrorMessage(nil))
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Key of Solomon", "key-of-solomon"},
		{"mixed separators", "clavicula_salomonis.1620", "clavicula-salomonis-1620"},
		{"special characters dropped", "Ars Goetia (1904 ed.)", "ars-goetia-1904-ed"},
		{"collapses runs", "a  --  b", "a-b"},
		{"leading separators ignored", "  -seal", "seal"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sigildex.Slugify(tt.input))
		})
	}
}

func TestSourceSlug(t *testing.T) {
	t.Parallel()

	t.Run("title wins", func(t *testing.T) {
		t.Parallel()
		s := &sigildex.Source{Title: "The Black Pullet", LocalPath: "/scans/other.pdf"}
		assert.Equal(t, "the-black-pullet", s.Slug())
	})

	t.Run("falls back to local path stem", func(t *testing.T) {
		t.Parallel()
		s := &sigildex.Source{LocalPath: "/scans/grimorium_verum.pdf"}
		assert.Equal(t, "grimorium-verum", s.Slug())
	})

	t.Run("falls back to url stem", func(t *testing.T) {
		t.Parallel()
		s := &sigildex.Source{URL: "https://archive.example.org/texts/lemegeton.pdf"}
		assert.Equal(t, "lemegeton", s.Slug())
	})
}
