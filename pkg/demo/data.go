package demo

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Span of the generated sales data.
var (
	StartDate = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	EndDate   = time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)
)

// Product is a row of DIM_PRODUCT.
type Product struct {
	Key      int
	SKU      string
	Name     string
	Category string
	Price    float64
	Cost     float64
}

// Store is a row of DIM_STORE.
type Store struct {
	Key    int
	Name   string
	City   string
	Region string
}

// Promotion is a row of DIM_PROMOTION.
type Promotion struct {
	Key      int
	Name     string
	Discount float64 // percent
	Start    time.Time
	End      time.Time
}

// Products in the demo catalog.
var Products = []Product{
	{1, "PRD-1001", "Organic Bananas", "Produce", 0.79, 0.35},
	{2, "PRD-1002", "Hass Avocados", "Produce", 1.99, 1.10},
	{3, "PRD-2001", "Whole Milk 1gal", "Dairy", 3.89, 2.60},
	{4, "PRD-2002", "Greek Yogurt", "Dairy", 5.49, 3.20},
	{5, "PRD-3001", "Sourdough Loaf", "Bakery", 4.99, 2.10},
	{6, "PRD-4001", "Sparkling Water 12pk", "Beverages", 6.99, 4.10},
	{7, "PRD-4002", "Cold Brew Coffee", "Beverages", 4.49, 2.30},
	{8, "PRD-5001", "Tortilla Chips", "Snacks", 3.99, 1.70},
}

// Stores in the demo chain.
var Stores = []Store{
	{1, "Downtown Market", "Austin", "South"},
	{2, "Lakeside Grocers", "Chicago", "Midwest"},
	{3, "Harbor Fresh", "Seattle", "West"},
	{4, "Maple Street Foods", "Boston", "East"},
}

// Promotions run during the demo period.
var Promotions = []Promotion{
	{1, "Summer Savings", 10, date(2025, 7, 4), date(2025, 7, 20)},
	{2, "Back to School", 15, date(2025, 8, 18), date(2025, 9, 7)},
	{3, "Harvest Fest", 20, date(2025, 10, 6), date(2025, 10, 19)},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey returns the YYYYMMDD surrogate key for t.
func DateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// ParseDateKey converts a YYYYMMDD key back to a date.
func ParseDateKey(key int) (time.Time, error) {
	return time.Parse("20060102", strconv.Itoa(key))
}

func perishable(category string) bool {
	return category == "Produce" || category == "Dairy" || category == "Bakery"
}

func promotionOn(d time.Time, p Product) *Promotion {
	// Promotions cover every other product so with/without comparisons have data.
	if p.Key%2 != 0 {
		return nil
	}
	for i := range Promotions {
		if !d.Before(Promotions[i].Start) && !d.After(Promotions[i].End) {
			return &Promotions[i]
		}
	}
	return nil
}

// Dataset holds generated rows as SQL value tuples, one slice per table.
type Dataset struct {
	Tables map[string][]string
}

// tableOrder is the insert order; dimensions first.
var tableOrder = []string{"DIM_DATE", "DIM_PRODUCT", "DIM_STORE", "DIM_PROMOTION", "FACT_SALES_DAILY", "FACT_SPOILAGE_DAILY"}

// Generate builds the deterministic demo dataset for seed.
//
// DIM_DATE intentionally repeats the first day of every month, mirroring the
// production warehouse, so queries joining on DATE_KEY need DISTINCT.
func Generate(seed uint64) *Dataset {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	ds := &Dataset{Tables: make(map[string][]string)}
	add := func(table string, values ...string) {
		ds.Tables[table] = append(ds.Tables[table], "("+strings.Join(values, ", ")+")")
	}

	for d := StartDate; !d.After(EndDate); d = d.AddDate(0, 0, 1) {
		_, week := d.ISOWeek()
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		row := []string{
			strconv.Itoa(DateKey(d)), quote(d.Format(time.DateOnly)),
			quote(d.Weekday().String()), quote(d.Month().String()),
			strconv.Itoa(week), strconv.FormatBool(weekend),
		}
		add("DIM_DATE", row...)
		if d.Day() == 1 {
			add("DIM_DATE", row...)
		}
	}

	for _, p := range Products {
		add("DIM_PRODUCT", strconv.Itoa(p.Key), quote(p.SKU), quote(p.Name), quote(p.Category), money(p.Price), money(p.Cost))
	}
	for _, s := range Stores {
		add("DIM_STORE", strconv.Itoa(s.Key), quote(s.Name), quote(s.City), quote(s.Region))
	}
	for _, pr := range Promotions {
		add("DIM_PROMOTION", strconv.Itoa(pr.Key), quote(pr.Name), money(pr.Discount),
			quote(pr.Start.Format(time.DateOnly)), quote(pr.End.Format(time.DateOnly)))
	}

	for d := StartDate; !d.After(EndDate); d = d.AddDate(0, 0, 1) {
		weekendBoost := 0
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			weekendBoost = 8
		}
		for _, s := range Stores {
			for _, p := range Products {
				qty := 10 + weekendBoost + s.Key*3 + rng.IntN(25)
				promoKey, discount := "NULL", 0.0
				if promo := promotionOn(d, p); promo != nil {
					promoKey = strconv.Itoa(promo.Key)
					discount = promo.Discount
					qty += qty / 3
				}
				gross := float64(qty) * p.Price
				net := gross * (1 - discount/100)
				loadTS := d.Add(20*time.Hour + time.Duration(s.Key*10+p.Key)*time.Minute)

				add("FACT_SALES_DAILY",
					strconv.Itoa(DateKey(d)), strconv.Itoa(s.Key), strconv.Itoa(p.Key), promoKey,
					strconv.Itoa(qty), money(gross), money(net), quote(loadTS.Format(time.DateTime)))

				if perishable(p.Category) && rng.IntN(3) == 0 {
					spoiled := 1 + rng.IntN(6)
					add("FACT_SPOILAGE_DAILY",
						strconv.Itoa(DateKey(d)), strconv.Itoa(s.Key), strconv.Itoa(p.Key),
						strconv.Itoa(spoiled), money(float64(spoiled)*p.Cost))
				}
			}
		}
	}

	return ds
}

// InsertStatements renders the dataset as multi-row INSERT statements of at
// most batch rows each, in dependency order.
func (ds *Dataset) InsertStatements(batch int) []string {
	if batch <= 0 {
		batch = 250
	}

	var stmts []string
	for _, table := range tableOrder {
		rows := ds.Tables[table]
		for start := 0; start < len(rows); start += batch {
			end := min(start+batch, len(rows))
			stmts = append(stmts, fmt.Sprintf("INSERT INTO %s VALUES %s", table, strings.Join(rows[start:end], ", ")))
		}
	}
	return stmts
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
