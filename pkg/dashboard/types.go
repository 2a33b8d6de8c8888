package dashboard

// Sale is one line of the recent activity feed.
type Sale struct {
	Text  string `json:"text"`
	Value string `json:"value"`
}

// Summary holds the dashboard KPIs, preformatted for display.
type Summary struct {
	TotalRevenue    string `json:"totalRevenue"`
	UnitsSold       string `json:"unitsSold"`
	AvgProfitMargin string `json:"avgProfitMargin"`
	TopProduct      string `json:"topProduct"`
	RecentSales     []Sale `json:"recentSales"`
}

type TrendPoint struct {
	Date  string  `json:"date"`
	Sales float64 `json:"sales"`
}

type ProductRevenue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type StoreRevenue struct {
	Store   string  `json:"store"`
	Revenue float64 `json:"revenue"`
}

type SpoilagePoint struct {
	Date     string  `json:"date"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
}

type CategorySales struct {
	Category string  `json:"category"`
	Sales    float64 `json:"sales"`
}

// PromotionLift compares average units per store-product-day with and
// without a promotion.
type PromotionLift struct {
	Promotion    string  `json:"promotion"`
	WithPromo    float64 `json:"withPromo"`
	WithoutPromo float64 `json:"withoutPromo"`
}

// Analytics holds the chart series for the analytics page.
type Analytics struct {
	SalesTrend             []TrendPoint     `json:"salesTrend"`
	TopProducts            []ProductRevenue `json:"topProducts"`
	StorePerformance       []StoreRevenue   `json:"storePerformance"`
	SpoilageData           []SpoilagePoint  `json:"spoilageData"`
	CategoryComparison     []CategorySales  `json:"categoryComparison"`
	PromotionEffectiveness []PromotionLift  `json:"promotionEffectiveness"`
}
