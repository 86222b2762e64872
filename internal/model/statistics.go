package model

import (
	"time"
)

// StatisticsResponse aggregates revenue and order totals for a time range.
// Only delivered orders count toward revenue.
type StatisticsResponse struct {
	TotalRevenue       float64          `json:"total_revenue"`
	TotalCollected     float64          `json:"total_collected"`
	TotalOutstanding   float64          `json:"total_outstanding"`
	OrdersByStatus     map[string]int   `json:"orders_by_status"`
	TopProducts        []ProductRanking `json:"top_products"`
	TimeRangeStartDate time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time        `json:"time_range_end_date"`
}

// ProductRanking represents a ranked product based on delivered quantities
type ProductRanking struct {
	ProductID     string  `json:"product_id"`
	ProductName   string  `json:"product_name"`
	ProductCode   string  `json:"product_code"`
	TotalQuantity int     `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}
