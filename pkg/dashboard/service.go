// Package dashboard computes the KPI summary and analytics chart series for
// the retail dashboard. Queries for one request fan out on a bounded worker
// pool over a single warehouse connection.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ekaya-inc/aria-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/aria-engine/pkg/config"
)

const (
	summaryWindowDays   = 7
	analyticsWindowDays = 30
	recentSalesLimit    = 5
	topProductsLimit    = 5
)

// ErrNoData is returned when the sales fact table is empty.
var ErrNoData = errors.New("no sales data available")

// Opener connects to the warehouse. *warehouse.Executor satisfies it.
type Opener interface {
	Open(ctx context.Context) (datasource.Adapter, error)
}

// Service serves dashboard data from the warehouse, or canned data in mock mode.
type Service struct {
	opener   Opener
	pool     pond.ResultPool[*datasource.QueryExecutionResult]
	mock     bool
	fallback bool
	printer  *message.Printer
	logger   *zap.Logger
}

// NewService creates a Service. Call Close to stop its worker pool.
func NewService(opener Opener, cfg config.DashboardConfig, logger *zap.Logger) *Service {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{
		opener:   opener,
		pool:     pond.NewResultPool[*datasource.QueryExecutionResult](concurrency),
		mock:     cfg.MockMode,
		fallback: cfg.MockFallback,
		printer:  message.NewPrinter(language.English),
		logger:   logger.Named("dashboard"),
	}
}

// Close waits for in-flight queries and stops the pool.
func (s *Service) Close() {
	s.pool.StopAndWait()
}

// Summary returns the dashboard KPIs over the last seven days of available data.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	if s.mock {
		return MockSummary(), nil
	}
	summary, err := s.liveSummary(ctx)
	if err != nil && s.fallback {
		s.logger.Warn("Dashboard query failed, serving mock data", zap.Error(err))
		return MockSummary(), nil
	}
	return summary, err
}

// Analytics returns the analytics chart series.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	if s.mock {
		return MockAnalytics(), nil
	}
	analytics, err := s.liveAnalytics(ctx)
	if err != nil && s.fallback {
		s.logger.Warn("Analytics query failed, serving mock data", zap.Error(err))
		return MockAnalytics(), nil
	}
	return analytics, err
}

func (s *Service) liveSummary(ctx context.Context) (*Summary, error) {
	adapter, err := s.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	from, to, err := s.window(ctx, adapter, summaryWindowDays)
	if err != nil {
		return nil, err
	}

	results, err := s.fanOut(ctx, adapter, []query{
		{sql: revenueQuery(from, to), limit: 1},
		{sql: marginQuery(from, to), limit: 1},
		{sql: topProductQuery, limit: 1},
		{sql: recentSalesQuery, limit: recentSalesLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard data: %w", err)
	}
	revenue, margin, top, recent := results[0], results[1], results[2], results[3]

	netSales := cell(revenue, 0, 0)
	summary := &Summary{
		TotalRevenue:    s.printer.Sprintf("$%.2f", netSales),
		UnitsSold:       s.printer.Sprintf("%d", int64(math.Round(cell(revenue, 0, 1)))),
		AvgProfitMargin: formatMargin(cell(margin, 0, 0), cell(margin, 0, 1)),
		TopProduct:      text(top, 0, 0),
		RecentSales:     make([]Sale, 0, len(recent.Rows)),
	}
	for i := range recent.Rows {
		summary.RecentSales = append(summary.RecentSales, Sale{
			Text:  fmt.Sprintf("%s sold %d units at %s", text(recent, i, 0), int64(cell(recent, i, 1)), text(recent, i, 2)),
			Value: fmt.Sprintf("$%.2f", cell(recent, i, 3)),
		})
	}
	return summary, nil
}

func (s *Service) liveAnalytics(ctx context.Context) (*Analytics, error) {
	adapter, err := s.opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer adapter.Close()

	from, to, err := s.window(ctx, adapter, analyticsWindowDays)
	if err != nil {
		return nil, err
	}

	results, err := s.fanOut(ctx, adapter, []query{
		{sql: salesTrendQuery(from, to), limit: analyticsWindowDays},
		{sql: topProductsQuery, limit: topProductsLimit},
		{sql: storePerformanceQuery},
		{sql: spoilageQuery(from, to), limit: analyticsWindowDays},
		{sql: categoryQuery},
		{sql: promotionQuery},
		{sql: baselineQuery, limit: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analytics data: %w", err)
	}

	a := &Analytics{
		SalesTrend:             []TrendPoint{},
		TopProducts:            []ProductRevenue{},
		StorePerformance:       []StoreRevenue{},
		SpoilageData:           []SpoilagePoint{},
		CategoryComparison:     []CategorySales{},
		PromotionEffectiveness: []PromotionLift{},
	}
	trend, products, stores, spoilage, categories, promos := results[0], results[1], results[2], results[3], results[4], results[5]
	baseline := round2(cell(results[6], 0, 0))

	for i := range trend.Rows {
		a.SalesTrend = append(a.SalesTrend, TrendPoint{Date: dateLabel(cell(trend, i, 0)), Sales: round2(cell(trend, i, 1))})
	}
	for i := range products.Rows {
		a.TopProducts = append(a.TopProducts, ProductRevenue{Name: text(products, i, 0), Value: round2(cell(products, i, 1))})
	}
	for i := range stores.Rows {
		a.StorePerformance = append(a.StorePerformance, StoreRevenue{Store: text(stores, i, 0), Revenue: round2(cell(stores, i, 1))})
	}
	for i := range spoilage.Rows {
		a.SpoilageData = append(a.SpoilageData, SpoilagePoint{
			Date:     dateLabel(cell(spoilage, i, 0)),
			Quantity: cell(spoilage, i, 1),
			Value:    round2(cell(spoilage, i, 2)),
		})
	}
	for i := range categories.Rows {
		a.CategoryComparison = append(a.CategoryComparison, CategorySales{Category: text(categories, i, 0), Sales: round2(cell(categories, i, 1))})
	}
	for i := range promos.Rows {
		a.PromotionEffectiveness = append(a.PromotionEffectiveness, PromotionLift{
			Promotion:    text(promos, i, 0),
			WithPromo:    round2(cell(promos, i, 1)),
			WithoutPromo: baseline,
		})
	}
	return a, nil
}

// window returns the DATE_KEY range covering the last days of available data.
func (s *Service) window(ctx context.Context, adapter datasource.Adapter, days int) (int, int, error) {
	res, err := adapter.Query(ctx, latestDateQuery, 1)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to find latest sales date: %w", err)
	}
	if len(res.Rows) == 0 || res.Rows[0][0] == nil {
		return 0, 0, ErrNoData
	}
	latest, err := keyDate(int(cell(res, 0, 0)))
	if err != nil {
		return 0, 0, err
	}
	return dateKey(latest.AddDate(0, 0, -(days - 1))), dateKey(latest), nil
}

type query struct {
	sql   string
	limit int
}

// fanOut runs queries concurrently and returns their results in order.
func (s *Service) fanOut(ctx context.Context, adapter datasource.Adapter, queries []query) ([]*datasource.QueryExecutionResult, error) {
	group := s.pool.NewGroupContext(ctx)
	for _, q := range queries {
		group.SubmitErr(func() (*datasource.QueryExecutionResult, error) {
			return adapter.Query(ctx, q.sql, q.limit)
		})
	}
	return group.Wait()
}

func formatMargin(net, cost float64) string {
	if net == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", (net-cost)/net*100)
}

func dateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func keyDate(key int) (time.Time, error) {
	t, err := time.Parse("20060102", strconv.Itoa(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %d: %w", key, err)
	}
	return t, nil
}

func dateLabel(key float64) string {
	t, err := keyDate(int(key))
	if err != nil {
		return strconv.Itoa(int(key))
	}
	return t.Format("Jan 02")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func text(res *datasource.QueryExecutionResult, row, col int) string {
	if row >= len(res.Rows) || col >= len(res.Rows[row]) || res.Rows[row][col] == nil {
		return ""
	}
	return fmt.Sprint(res.Rows[row][col])
}

// cell reads a numeric value; NULL and out-of-range cells read as zero.
func cell(res *datasource.QueryExecutionResult, row, col int) float64 {
	if row >= len(res.Rows) || col >= len(res.Rows[row]) {
		return 0
	}
	return toFloat(res.Rows[row][col])
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case *big.Int:
		f, _ := new(big.Float).SetInt(n).Float64()
		return f
	case interface{ Float64() float64 }:
		return n.Float64()
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		f, _ := strconv.ParseFloat(fmt.Sprint(n), 64)
		return f
	}
}
