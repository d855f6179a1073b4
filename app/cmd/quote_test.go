package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCartFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestQuoteFile(t *testing.T) {
	path := writeCartFile(t, `{
		"items": [
			{"product": {"id": "b1", "title": "Số đỏ", "price": 45000}, "quantity": 2},
			{"product": {"id": "b2", "title": "Tắt đèn", "price": 60000}, "quantity": 1}
		],
		"appliedPromotion": {
			"id": "p1", "code": "GIAM20K", "discountType": "fixed",
			"discountValue": 20000, "minOrderValue": 100000, "active": true
		}
	}`)

	var out bytes.Buffer
	require.NoError(t, QuoteFile(&out, path))

	text := out.String()
	assert.Contains(t, text, "Số đỏ")
	assert.Contains(t, text, "90.000 ₫")
	assert.Contains(t, text, "Subtotal (3 items)")
	assert.Contains(t, text, "-20.000 ₫")
	assert.Contains(t, text, "Tax (10%)")
	// 150.000 - 20.000 + 15.000 shipping + 15.000 tax
	assert.Contains(t, text, "160.000 ₫")
}

func TestQuoteFile_Errors(t *testing.T) {
	var out bytes.Buffer

	assert.Error(t, QuoteFile(&out, filepath.Join(t.TempDir(), "missing.json")))
	assert.Error(t, QuoteFile(&out, writeCartFile(t, `{"items": [`)))
	assert.Error(t, QuoteFile(&out, writeCartFile(t, `{"items": [{"product": {"id": ""}, "quantity": 1}]}`)))
	assert.Error(t, QuoteFile(&out, writeCartFile(t, `{"items": [{"product": {"id": "a"}, "quantity": 0}]}`)))
}

func TestRunCli_Quote(t *testing.T) {
	path := writeCartFile(t, `{"items": [{"product": {"id": "a", "title": "A", "price": 1000}, "quantity": 1}]}`)

	cli := NewCli()
	var out bytes.Buffer
	cli.Writer = &out
	require.NoError(t, cli.Run(t.Context(), []string{"bookstore", "quote", path}))
	assert.Contains(t, out.String(), "Total")
}
