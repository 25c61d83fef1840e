package services

import (
	"context"

	"github.com/Adarsh0311/shopsphere-backend/apperror"
	"github.com/Adarsh0311/shopsphere-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const recentOrdersLimit = 10

type AdminService struct {
	db                *gorm.DB
	lowStockThreshold int
}

func NewAdminService(db *gorm.DB, lowStockThreshold int) *AdminService {
	if lowStockThreshold < 0 {
		lowStockThreshold = 10
	}
	return &AdminService{db: db, lowStockThreshold: lowStockThreshold}
}

func (s *AdminService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	db := s.db.WithContext(ctx)
	var stats DashboardStats

	counts := []struct {
		model interface{}
		where []interface{}
		dst   *int64
	}{
		{&models.Order{}, nil, &stats.TotalOrders},
		{&models.User{}, nil, &stats.TotalUsers},
		{&models.Product{}, nil, &stats.TotalProducts},
		{&models.Category{}, nil, &stats.TotalCategories},
		{&models.Order{}, []interface{}{"status = ?", models.OrderStatusPending}, &stats.PendingOrders},
		{&models.Product{}, []interface{}{"stock_quantity <= ?", s.lowStockThreshold}, &stats.LowStockProducts},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return DashboardStats{}, apperror.Internal(err, "dashboard count")
		}
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusDelivered).
		Select("SUM(total_amount)").
		Row().Scan(&revenue); err != nil {
		return DashboardStats{}, apperror.Internal(err, "dashboard revenue")
	}
	stats.TotalRevenue = decimal.Zero
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}

	var recent []models.Order
	if err := db.Preload("User").Preload("Items").
		Order("order_date DESC").Limit(recentOrdersLimit).
		Find(&recent).Error; err != nil {
		return DashboardStats{}, apperror.Internal(err, "dashboard recent orders")
	}
	stats.RecentOrders = make([]OrderSummary, 0, len(recent))
	for _, o := range recent {
		stats.RecentOrders = append(stats.RecentOrders, OrderSummary{
			ID:           o.ID,
			CustomerName: o.User.FullName(),
			OrderDate:    o.OrderDate,
			TotalAmount:  o.TotalAmount,
			Status:       string(o.Status),
			ItemCount:    len(o.Items),
		})
	}
	return stats, nil
}
