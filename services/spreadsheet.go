package services

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var productSheetHeaders = []string{
	"ID", "Name", "Description", "Price", "StockQuantity",
	"ImageURL", "CategoryID", "CreatedAt", "UpdatedAt",
}

type ImportResult struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// ExportProducts writes the catalog as an .xlsx workbook with one Products sheet.
func (s *CatalogService) ExportProducts(ctx context.Context, w io.Writer) error {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return apperror.Internal(err, "load products for export")
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return apperror.Internal(err, "create sheet")
	}

	header := sheet.AddRow()
	for _, h := range productSheetHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.ID)
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetInt(p.StockQuantity)
		row.AddCell().SetString(p.ImageURL)
		categoryID := ""
		if p.CategoryID != nil {
			categoryID = *p.CategoryID
		}
		row.AddCell().SetString(categoryID)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	if err := file.Write(w); err != nil {
		return apperror.Internal(err, "write workbook")
	}
	return nil
}

// ImportProducts reads the first sheet of an export-shaped workbook. Rows
// with a known ID update that product, other rows create one. Invalid rows
// are skipped and counted.
func (s *CatalogService) ImportProducts(ctx context.Context, r io.ReaderAt, size int64) (ImportResult, error) {
	xlFile, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return ImportResult{}, apperror.BadRequest("failed to parse Excel file")
	}
	if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
		return ImportResult{}, apperror.BadRequest("Excel file is empty or missing header row")
	}

	db := s.db.WithContext(ctx)
	sheet := xlFile.Sheets[0]
	var res ImportResult

	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		if row == nil || len(row.Cells) < 5 {
			res.Skipped++
			continue
		}
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		price, err := decimal.NewFromString(get(3))
		if err != nil {
			res.Skipped++
			continue
		}
		stock, err := strconv.Atoi(get(4))
		if err != nil {
			res.Skipped++
			continue
		}
		req := ProductRequest{
			Name:          get(1),
			Description:   get(2),
			Price:         price,
			StockQuantity: stock,
			ImageURL:      get(5),
			CategoryID:    get(6),
		}

		if id := get(0); id != "" {
			_, err := s.UpdateProduct(ctx, id, req)
			if err == nil {
				res.Updated++
				continue
			}
			if !apperror.Is(err, apperror.KindNotFound) || !isMissingProduct(db, id) {
				res.Skipped++
				continue
			}
		}

		if _, err := s.CreateProduct(ctx, req); err != nil {
			res.Skipped++
			continue
		}
		res.Created++
	}
	return res, nil
}

// isMissingProduct distinguishes an unknown product ID from an unknown category.
func isMissingProduct(db *gorm.DB, id string) bool {
	err := db.Select("id").First(&models.Product{}, "id = ?", id).Error
	return errors.Is(err, gorm.ErrRecordNotFound)
}
