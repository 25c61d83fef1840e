package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogService owns products and categories.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// -------- Loaders --------

func loadProduct(db *gorm.DB, id string) (models.Product, error) {
	var p models.Product
	if err := db.Preload("Category").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, apperror.NotFound("product not found with id: %s", id)
		}
		return p, apperror.Internal(err, "load product %s", id)
	}
	return p, nil
}

func loadCategory(db *gorm.DB, id string) (models.Category, error) {
	var c models.Category
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c, apperror.NotFound("category not found with id: %s", id)
		}
		return c, apperror.Internal(err, "load category %s", id)
	}
	return c, nil
}

// -------- Products --------

func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) ([]ProductResponse, error) {
	q := s.db.WithContext(ctx).Preload("Category")

	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.LowStock != nil {
		q = q.Where("stock_quantity <= ?", *f.LowStock)
	}

	var products []models.Product
	if err := q.Order("name ASC").Find(&products).Error; err != nil {
		return nil, apperror.Internal(err, "list products")
	}
	return toProductResponses(products), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (ProductResponse, error) {
	p, err := loadProduct(s.db.WithContext(ctx), id)
	if err != nil {
		return ProductResponse{}, err
	}
	return toProductResponse(p), nil
}

func (s *CatalogService) GetProductByName(ctx context.Context, name string) (ProductResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ProductResponse{}, apperror.BadRequest("name is required")
	}
	var p models.Product
	err := s.db.WithContext(ctx).Preload("Category").
		Where("LOWER(name) = LOWER(?)", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ProductResponse{}, apperror.NotFound("product not found with name: %s", name)
	}
	if err != nil {
		return ProductResponse{}, apperror.Internal(err, "find product by name")
	}
	return toProductResponse(p), nil
}

func (s *CatalogService) ProductsByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]ProductResponse, error) {
	if min.IsNegative() || max.IsNegative() {
		return nil, apperror.BadRequest("price bounds cannot be negative")
	}
	if min.GreaterThan(max) {
		return nil, apperror.BadRequest("min price cannot be greater than max price")
	}
	return s.ListProducts(ctx, ProductFilter{MinPrice: &min, MaxPrice: &max})
}

func (s *CatalogService) LowStockProducts(ctx context.Context, threshold int) ([]ProductResponse, error) {
	if threshold < 0 {
		return nil, apperror.BadRequest("threshold cannot be negative")
	}
	return s.ListProducts(ctx, ProductFilter{LowStock: &threshold})
}

func (s *CatalogService) ProductsByCategory(ctx context.Context, categoryID string) ([]ProductResponse, error) {
	if _, err := loadCategory(s.db.WithContext(ctx), categoryID); err != nil {
		return nil, err
	}
	return s.ListProducts(ctx, ProductFilter{CategoryID: categoryID})
}

func (s *CatalogService) validateProduct(db *gorm.DB, req ProductRequest) (*string, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.BadRequest("product name is required")
	}
	if req.Price.IsNegative() {
		return nil, apperror.BadRequest("price cannot be negative")
	}
	if req.StockQuantity < 0 {
		return nil, apperror.BadRequest("stock quantity cannot be negative")
	}
	if req.CategoryID == "" {
		return nil, nil
	}
	if _, err := loadCategory(db, req.CategoryID); err != nil {
		return nil, err
	}
	id := req.CategoryID
	return &id, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req ProductRequest) (ProductResponse, error) {
	db := s.db.WithContext(ctx)
	categoryID, err := s.validateProduct(db, req)
	if err != nil {
		return ProductResponse{}, err
	}

	p := models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		CategoryID:    categoryID,
	}
	if err := db.Create(&p).Error; err != nil {
		return ProductResponse{}, apperror.Internal(err, "create product")
	}
	return s.GetProduct(ctx, p.ID)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, req ProductRequest) (ProductResponse, error) {
	db := s.db.WithContext(ctx)
	p, err := loadProduct(db, id)
	if err != nil {
		return ProductResponse{}, err
	}
	categoryID, err := s.validateProduct(db, req)
	if err != nil {
		return ProductResponse{}, err
	}

	if err := db.Model(&p).Updates(map[string]interface{}{
		"name":           strings.TrimSpace(req.Name),
		"description":    req.Description,
		"price":          req.Price,
		"stock_quantity": req.StockQuantity,
		"image_url":      req.ImageURL,
		"category_id":    categoryID,
	}).Error; err != nil {
		return ProductResponse{}, apperror.Internal(err, "update product %s", id)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct refuses products that appear on orders; order history keeps its references.
func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadProduct(tx, id); err != nil {
			return err
		}
		var ordered int64
		if err := tx.Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&ordered).Error; err != nil {
			return apperror.Internal(err, "count order items")
		}
		if ordered > 0 {
			return apperror.BadRequest("product %s has been ordered and cannot be deleted", id)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return apperror.Internal(err, "remove product from carts")
		}
		if err := tx.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return apperror.Internal(err, "delete product %s", id)
		}
		return nil
	})
}

// DecrementStock takes qty units in a single conditional update. Zero rows
// affected means the stock was already below qty.
func DecrementStock(tx *gorm.DB, productID string, qty int) (bool, error) {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// -------- Categories --------

func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	var cats []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, apperror.Internal(err, "list categories")
	}
	out := make([]CategoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (CategoryResponse, error) {
	c, err := loadCategory(s.db.WithContext(ctx), id)
	if err != nil {
		return CategoryResponse{}, err
	}
	return toCategoryResponse(c), nil
}

func (s *CatalogService) GetCategoryByName(ctx context.Context, name string) (CategoryResponse, error) {
	var c models.Category
	err := s.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return CategoryResponse{}, apperror.NotFound("category not found with name: %s", name)
	}
	if err != nil {
		return CategoryResponse{}, apperror.Internal(err, "find category by name")
	}
	return toCategoryResponse(c), nil
}

func (s *CatalogService) ensureCategoryNameFree(db *gorm.DB, name, exceptID string) error {
	q := db.Model(&models.Category{}).Where("LOWER(name) = LOWER(?)", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return apperror.Internal(err, "check category name")
	}
	if n > 0 {
		return apperror.Conflict("category with name '%s' already exists", name)
	}
	return nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, req CategoryRequest) (CategoryResponse, error) {
	db := s.db.WithContext(ctx)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CategoryResponse{}, apperror.BadRequest("category name is required")
	}
	if err := s.ensureCategoryNameFree(db, name, ""); err != nil {
		return CategoryResponse{}, err
	}
	c := models.Category{Name: name, Description: req.Description}
	if err := db.Create(&c).Error; err != nil {
		return CategoryResponse{}, apperror.Internal(err, "create category")
	}
	return toCategoryResponse(c), nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, req CategoryRequest) (CategoryResponse, error) {
	db := s.db.WithContext(ctx)
	c, err := loadCategory(db, id)
	if err != nil {
		return CategoryResponse{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return CategoryResponse{}, apperror.BadRequest("category name is required")
	}
	if err := s.ensureCategoryNameFree(db, name, id); err != nil {
		return CategoryResponse{}, err
	}
	c.Name = name
	c.Description = req.Description
	if err := db.Save(&c).Error; err != nil {
		return CategoryResponse{}, apperror.Internal(err, "update category %s", id)
	}
	return toCategoryResponse(c), nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)
	if _, err := loadCategory(db, id); err != nil {
		return err
	}
	var n int64
	if err := db.Model(&models.Product{}).Where("category_id = ?", id).Count(&n).Error; err != nil {
		return apperror.Internal(err, "count category products")
	}
	if n > 0 {
		return apperror.BadRequest("category %s still has %d product(s)", id, n)
	}
	if err := db.Delete(&models.Category{}, "id = ?", id).Error; err != nil {
		return apperror.Internal(err, "delete category %s", id)
	}
	return nil
}
