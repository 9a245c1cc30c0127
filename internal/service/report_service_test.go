package service

import (
	"errors"
	"testing"
	"time"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func (f *fixture) reports() ReportService {
	return NewReportService(repository.NewProductRepo(f.db), repository.NewTransactionRepo(f.db), time.UTC)
}

func TestReport_StockWorkbook(t *testing.T) {
	f := newFixture(t)
	f.cement(t)
	f.simple(t, "PKU", "kg", "5000", "0")

	buf, err := f.reports().StockWorkbook()
	require.NoError(t, err)

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Stok"}, wb.GetSheetList())

	rows, err := wb.GetRows("Stok")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "SKU", rows[0][0])

	// Sorted by name: "Produk PKU" before "Semen Tiga Roda 40kg".
	assert.Equal(t, "PKU", rows[1][0])
	assert.Equal(t, "CRITICAL", rows[1][7])

	cement := rows[2]
	assert.Equal(t, "SMN-TR-40", cement[0])
	assert.Equal(t, "Semen", cement[2])
	assert.Equal(t, "sak", cement[4])
	assert.Equal(t, "25", cement[5])
	assert.Equal(t, "NORMAL", cement[7])
	assert.Contains(t, cement[10], "kg @1625")
}

func TestReport_SalesWorkbook(t *testing.T) {
	f := newFixture(t)
	cement := f.cement(t)

	f.sell(t, model.PaymentCash, "150000", line(cement, "sak", "2", "65000"))
	cancelled := f.sell(t, model.PaymentCash, "65000", line(cement, "sak", "1", "65000"))
	_, err := f.txns.Cancel(cancelled.ID, &CancelRequest{Reason: "salah input"}, cashier)
	require.NoError(t, err)
	f.sell(t, model.PaymentDebt, "0", line(cement, "kg", "4", "1625"))

	from := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	buf, err := f.reports().SalesWorkbook(from, from.AddDate(0, 0, 1))
	require.NoError(t, err)

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()

	assert.ElementsMatch(t, []string{"Penjualan", "Ringkasan"}, wb.GetSheetList())

	rows, err := wb.GetRows("Penjualan")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one line per active item")
	assert.Equal(t, "TXN-20260314-000001", rows[1][1])
	assert.Equal(t, "SMN-TR-40", rows[1][5])
	assert.Equal(t, "TXN-20260314-000003", rows[2][1])
	assert.Equal(t, "kg", rows[2][8])

	summary, err := wb.GetRows("Ringkasan")
	require.NoError(t, err)
	require.Len(t, summary, 6)
	assert.Equal(t, "2026-03-14 s/d 2026-03-14", summary[1][1])
	assert.Equal(t, "2", summary[2][1])
	assert.Equal(t, "130000", summary[3][1])
	assert.Equal(t, "6500", summary[4][1])
	assert.Equal(t, "136500", summary[5][1])
}

func TestReport_SalesWorkbookRejectsEmptyRange(t *testing.T) {
	f := newFixture(t)

	_, err := f.reports().SalesWorkbook(saleClock, saleClock)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}
