package display_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/dealchef/internal/display"
	"github.com/tayloree/dealchef/internal/shopping"
)

func TestQRCode(t *testing.T) {
	png, err := display.QRCode(sampleList())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestWriteShoppingListPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, display.WriteShoppingListPDF(&buf, sampleList(), "Boodschappen week 10"))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/Subtype /Image")
	assert.Contains(t, string(out), "%%EOF")
}

func TestWriteShoppingListPDF_EmptyList(t *testing.T) {
	empty := shopping.NewAggregator(nil, "").Build(nil, nil)

	var buf bytes.Buffer
	require.NoError(t, display.WriteShoppingListPDF(&buf, empty, ""))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
