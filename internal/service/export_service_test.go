package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/williamsps/maintenance-portal/internal/testutil"
)

func TestQuoteRegisterExport(t *testing.T) {
	env := newTestEnv(t)
	env.exports.now = env.clock.Now
	env.quotedQuote(t, nil)
	env.draftQuote(t)

	result, err := env.exports.QuoteRegister(t.Context(), testutil.Principal(env.fx.AcmeAdmin), QuoteListInput{})
	require.NoError(t, err)
	assert.Equal(t, "quotes-acme-properties-20260310.xlsx", result.FileName)

	book, err := excelize.OpenReader(bytes.NewReader(result.Content))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Summary", "Draft", "Quoted", "Breakdown lines"}, book.GetSheetList())

	staffResult, err := env.exports.QuoteRegister(t.Context(), testutil.Principal(env.fx.Staff), QuoteListInput{})
	require.NoError(t, err)
	assert.Equal(t, "quotes-all-clients-20260310.xlsx", staffResult.FileName)

	_, err = env.exports.QuoteRegister(t.Context(), testutil.Principal(env.fx.Staff), QuoteListInput{Status: "Nope"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWorkOrderPDFExport(t *testing.T) {
	env := newTestEnv(t)
	view := env.approvedQuote(t)
	order, err := env.quotes.Convert(t.Context(), testutil.Principal(env.fx.Staff), view.ID, ConvertInput{})
	require.NoError(t, err)

	result, err := env.exports.WorkOrderPDF(t.Context(), testutil.Principal(env.fx.AcmeUser), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "work-order-WO-2026-001.pdf", result.FileName)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF-")))

	_, err = env.exports.WorkOrderPDF(t.Context(), testutil.Principal(env.fx.GlobexAdmin), order.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
