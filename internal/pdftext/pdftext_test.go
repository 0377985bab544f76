package pdftext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	src := &Static{Pages: []string{"page one", "page two"}}

	assert.Equal(t, 2, src.PageCount())

	text, err := src.PageText(1)
	require.NoError(t, err)
	assert.Equal(t, "page two", text)

	all, err := src.Text()
	require.NoError(t, err)
	assert.Equal(t, "page one\npage two", all)

	_, err = src.PageText(2)
	assert.Error(t, err)
	_, err = src.PageText(-1)
	assert.Error(t, err)

	assert.NoError(t, src.Close())
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("/nonexistent/report.pdf")
	assert.Error(t, err)
}
