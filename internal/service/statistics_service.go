package service

import (
	"context"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"gorm.io/gorm"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics aggregates revenue, collection and product rankings for the
// given time range. Revenue and outstanding balance only count delivered
// orders; collected money counts every non-cancelled order.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error) {
	response := model.StatisticsResponse{
		OrdersByStatus:     make(map[string]int),
		TimeRangeStartDate: startDate,
		TimeRangeEndDate:   endDate,
	}

	inRange := func(q *gorm.DB) *gorm.DB {
		return q.Where("orders.deleted_at IS NULL AND orders.created_at >= ? AND orders.created_at <= ?",
			startDate, endDate)
	}

	// Total revenue: delivered orders only
	var revenue struct {
		Value float64
	}
	if err := inRange(s.db.WithContext(ctx).Table("orders").
		Select("COALESCE(SUM(orders.payment_final_amount), 0) as value").
		Where("orders.status = ?", model.StatusDelivered)).
		Scan(&revenue).Error; err != nil {
		return response, err
	}
	response.TotalRevenue = revenue.Value

	// Money collected across every non-cancelled order
	var collected struct {
		Value float64
	}
	if err := inRange(s.db.WithContext(ctx).Table("orders").
		Select("COALESCE(SUM(orders.payment_paid), 0) as value").
		Where("orders.status <> ?", model.StatusCancelled)).
		Scan(&collected).Error; err != nil {
		return response, err
	}
	response.TotalCollected = collected.Value

	// Balance still owed on delivered orders
	var outstanding struct {
		Value float64
	}
	if err := inRange(s.db.WithContext(ctx).Table("orders").
		Select("COALESCE(SUM(orders.payment_remaining), 0) as value").
		Where("orders.status = ?", model.StatusDelivered)).
		Scan(&outstanding).Error; err != nil {
		return response, err
	}
	response.TotalOutstanding = outstanding.Value

	// Order counts per status
	var statusCounts []struct {
		Status string
		Count  int
	}
	if err := inRange(s.db.WithContext(ctx).Table("orders").
		Select("orders.status as status, COUNT(*) as count")).
		Group("orders.status").
		Scan(&statusCounts).Error; err != nil {
		return response, err
	}
	for _, sc := range statusCounts {
		response.OrdersByStatus[sc.Status] = sc.Count
	}

	// Top products ranked by delivered quantity
	var topProducts []model.ProductRanking
	if err := inRange(s.db.WithContext(ctx).Table("order_items").
		Select("COALESCE(order_items.product_id::text, '') as product_id, order_items.product_name as product_name, order_items.product_code as product_code, SUM(order_items.quantity) as total_quantity, SUM(order_items.total) as total_value").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", model.StatusDelivered)).
		Group("order_items.product_id, order_items.product_name, order_items.product_code").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&topProducts).Error; err != nil {
		return response, err
	}
	response.TopProducts = topProducts

	return response, nil
}
