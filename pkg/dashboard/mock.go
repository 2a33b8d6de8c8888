package dashboard

// MockSummary is the canned summary served in mock mode.
func MockSummary() *Summary {
	return &Summary{
		TotalRevenue:    "$48,215.37",
		UnitsSold:       "9,842",
		AvgProfitMargin: "41.3%",
		TopProduct:      "Organic Bananas",
		RecentSales: []Sale{
			{Text: "Tortilla Chips sold 31 units at Maple Street Foods", Value: "$123.69"},
			{Text: "Cold Brew Coffee sold 28 units at Maple Street Foods", Value: "$125.72"},
			{Text: "Sparkling Water 12pk sold 40 units at Maple Street Foods", Value: "$279.60"},
			{Text: "Sourdough Loaf sold 22 units at Maple Street Foods", Value: "$109.78"},
			{Text: "Greek Yogurt sold 35 units at Maple Street Foods", Value: "$192.15"},
		},
	}
}

// MockAnalytics is the canned analytics data served in mock mode.
func MockAnalytics() *Analytics {
	return &Analytics{
		SalesTrend: []TrendPoint{
			{Date: "Oct 25", Sales: 6512.40},
			{Date: "Oct 26", Sales: 7120.85},
			{Date: "Oct 27", Sales: 5893.10},
			{Date: "Oct 28", Sales: 5980.55},
			{Date: "Oct 29", Sales: 6104.20},
			{Date: "Oct 30", Sales: 6233.95},
			{Date: "Oct 31", Sales: 6370.32},
		},
		TopProducts: []ProductRevenue{
			{Name: "Sparkling Water 12pk", Value: 18240.75},
			{Name: "Greek Yogurt", Value: 14310.22},
			{Name: "Sourdough Loaf", Value: 12875.40},
			{Name: "Cold Brew Coffee", Value: 11502.18},
			{Name: "Whole Milk 1gal", Value: 10096.63},
		},
		StorePerformance: []StoreRevenue{
			{Store: "Maple Street Foods", Revenue: 24890.12},
			{Store: "Harbor Fresh", Revenue: 22415.67},
			{Store: "Lakeside Grocers", Revenue: 19987.03},
			{Store: "Downtown Market", Revenue: 17533.48},
		},
		SpoilageData: []SpoilagePoint{
			{Date: "Oct 27", Quantity: 18, Value: 31.40},
			{Date: "Oct 28", Quantity: 12, Value: 22.75},
			{Date: "Oct 29", Quantity: 21, Value: 38.10},
			{Date: "Oct 30", Quantity: 9, Value: 15.60},
			{Date: "Oct 31", Quantity: 15, Value: 27.85},
		},
		CategoryComparison: []CategorySales{
			{Category: "Beverages", Sales: 29742.93},
			{Category: "Dairy", Sales: 24406.85},
			{Category: "Bakery", Sales: 12875.40},
			{Category: "Produce", Sales: 11020.56},
			{Category: "Snacks", Sales: 6779.56},
		},
		PromotionEffectiveness: []PromotionLift{
			{Promotion: "Back to School", WithPromo: 38.6, WithoutPromo: 27.4},
			{Promotion: "Harvest Fest", WithPromo: 40.1, WithoutPromo: 27.4},
			{Promotion: "Summer Savings", WithPromo: 36.9, WithoutPromo: 27.4},
		},
	}
}
