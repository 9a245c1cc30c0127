package service

import (
	"bytes"
	"fmt"
	"time"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/internal/stock"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type ReportService interface {
	StockWorkbook() (*bytes.Buffer, error)
	SalesWorkbook(from, to time.Time) (*bytes.Buffer, error)
}

type reportService struct {
	productRepo repository.ProductRepository
	txRepo      repository.TransactionRepository
	loc         *time.Location
}

func NewReportService(pRepo repository.ProductRepository, txRepo repository.TransactionRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{productRepo: pRepo, txRepo: txRepo, loc: loc}
}

// sheet writes a header row and data rows onto a named sheet.
type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(f *excelize.File, name string, headers []string) (*sheet, error) {
	index, err := f.NewSheet(name)
	if err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", name, err)
	}
	f.SetActiveSheet(index)

	s := &sheet{f: f, name: name}
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := s.add(values...); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err == nil {
		f.SetRowStyle(name, 1, 1, headerStyle)
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(name, "A", last, 18)
	return s, nil
}

func (s *sheet) add(values ...interface{}) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.f.SetSheetRow(s.name, cell, &values)
}

func finish(f *excelize.File, keep string) (*bytes.Buffer, error) {
	if f.GetSheetName(0) != keep {
		f.DeleteSheet("Sheet1")
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Internal(err, "failed to write workbook")
	}
	return &buf, nil
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// StockWorkbook exports the catalog with live stock and status.
func (s *reportService) StockWorkbook() (*bytes.Buffer, error) {
	products, _, err := s.productRepo.FindAll(repository.ProductQuery{Page: repository.Page{Page: 1, Limit: 100}, SortBy: "name"})
	if err != nil {
		return nil, apperror.Internal(err, "failed to load products")
	}
	// FindAll pages at 100; walk the rest.
	for page := 2; len(products) == (page-1)*100; page++ {
		more, _, err := s.productRepo.FindAll(repository.ProductQuery{Page: repository.Page{Page: page, Limit: 100}, SortBy: "name"})
		if err != nil {
			return nil, apperror.Internal(err, "failed to load products")
		}
		products = append(products, more...)
	}

	f := excelize.NewFile()
	defer f.Close()

	sh, err := newSheet(f, "Stok", []string{
		"SKU", "Produk", "Kategori", "Supplier", "Satuan Dasar", "Stok", "Stok Minimum",
		"Status", "Harga Pokok", "Nilai Stok", "Satuan Jual",
	})
	if err != nil {
		return nil, apperror.Internal(err, "failed to build stock sheet")
	}

	for _, p := range products {
		category, supplier := "", ""
		if p.Category != nil {
			category = p.Category.Name
		}
		if p.Supplier != nil {
			supplier = p.Supplier.Name
		}
		units := ""
		for i, u := range p.Units {
			if i > 0 {
				units += ", "
			}
			units += fmt.Sprintf("%s @%s (x%s)", u.Name, u.Price.StringFixed(0), u.ConversionRate.String())
		}
		err := sh.add(
			p.SKU, p.Name, category, supplier, p.BaseUnit,
			money(p.Stock), money(p.MinStock),
			string(stock.StatusOf(p.Stock, p.MinStock)),
			money(p.Cost), money(p.Stock.Mul(p.Cost).Round(2)),
			units,
		)
		if err != nil {
			return nil, apperror.Internal(err, "failed to write stock row")
		}
	}
	return finish(f, "Stok")
}

// SalesWorkbook exports active sales in [from, to) as one row per line
// item, with a summary sheet.
func (s *reportService) SalesWorkbook(from, to time.Time) (*bytes.Buffer, error) {
	if !from.Before(to) {
		return nil, apperror.Validation([]apperror.FieldError{{Field: "to", Tag: "gtfield", Param: "from"}})
	}
	transactions, err := s.txRepo.FindActiveBetween(from, to)
	if err != nil {
		return nil, apperror.Internal(err, "failed to load transactions")
	}

	f := excelize.NewFile()
	defer f.Close()

	sales, err := newSheet(f, "Penjualan", []string{
		"Tanggal", "No. Nota", "Pelanggan", "Metode", "Lunas", "SKU", "Produk",
		"Jumlah", "Satuan", "Harga", "Subtotal",
	})
	if err != nil {
		return nil, apperror.Internal(err, "failed to build sales sheet")
	}

	var cash, debt float64
	for _, t := range transactions {
		for _, item := range t.Items {
			sku, name := "", ""
			if item.Product != nil {
				sku, name = item.Product.SKU, item.Product.Name
			}
			err := sales.add(
				t.CreatedAt.In(s.loc).Format("2006-01-02 15:04"),
				t.ReceiptNumber, t.CustomerName, string(t.PaymentMethod), t.IsPaid,
				sku, name, money(item.Quantity), item.UnitName,
				money(item.UnitPrice), money(item.Subtotal),
			)
			if err != nil {
				return nil, apperror.Internal(err, "failed to write sales row")
			}
		}
		if t.PaymentMethod == model.PaymentCash {
			cash += money(t.TotalAmount)
		} else {
			debt += money(t.TotalAmount)
		}
	}

	summary, err := newSheet(f, "Ringkasan", []string{"Keterangan", "Nilai"})
	if err != nil {
		return nil, apperror.Internal(err, "failed to build summary sheet")
	}
	rows := [][]interface{}{
		{"Periode", fmt.Sprintf("%s s/d %s", from.In(s.loc).Format("2006-01-02"), to.In(s.loc).AddDate(0, 0, -1).Format("2006-01-02"))},
		{"Jumlah transaksi", len(transactions)},
		{"Penjualan tunai", cash},
		{"Penjualan hutang", debt},
		{"Total penjualan", cash + debt},
	}
	for _, r := range rows {
		if err := summary.add(r...); err != nil {
			return nil, apperror.Internal(err, "failed to write summary row")
		}
	}
	if idx, err := f.GetSheetIndex("Penjualan"); err == nil {
		f.SetActiveSheet(idx)
	}
	return finish(f, "Penjualan")
}
