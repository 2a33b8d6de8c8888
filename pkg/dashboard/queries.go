package dashboard

import "fmt"

// Queries avoid LIMIT/TOP so they run unchanged on every supported warehouse;
// row caps go through the adapter's Query limit instead.

const latestDateQuery = `SELECT MAX(DATE_KEY) FROM FACT_SALES_DAILY`

func revenueQuery(from, to int) string {
	return fmt.Sprintf(`SELECT CAST(SUM(NET_SALES) AS DOUBLE PRECISION), CAST(SUM(QTY_SOLD) AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY
WHERE DATE_KEY BETWEEN %d AND %d`, from, to)
}

func marginQuery(from, to int) string {
	return fmt.Sprintf(`SELECT CAST(SUM(S.NET_SALES) AS DOUBLE PRECISION), CAST(SUM(S.QTY_SOLD * P.UNIT_COST) AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY S
JOIN DIM_PRODUCT P ON S.PRODUCT_KEY = P.PRODUCT_KEY
WHERE S.DATE_KEY BETWEEN %d AND %d`, from, to)
}

const topProductQuery = `SELECT P.PRODUCT_NAME
FROM FACT_SALES_DAILY S
JOIN DIM_PRODUCT P ON S.PRODUCT_KEY = P.PRODUCT_KEY
GROUP BY P.PRODUCT_NAME
ORDER BY SUM(S.QTY_SOLD) DESC`

const recentSalesQuery = `SELECT P.PRODUCT_NAME, S.QTY_SOLD, ST.STORE_NAME, CAST(S.NET_SALES AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY S
JOIN DIM_PRODUCT P ON S.PRODUCT_KEY = P.PRODUCT_KEY
JOIN DIM_STORE ST ON S.STORE_KEY = ST.STORE_KEY
ORDER BY S.LOAD_TS DESC`

func salesTrendQuery(from, to int) string {
	return fmt.Sprintf(`SELECT DATE_KEY, CAST(SUM(NET_SALES) AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY
WHERE DATE_KEY BETWEEN %d AND %d
GROUP BY DATE_KEY
ORDER BY DATE_KEY`, from, to)
}

const topProductsQuery = `SELECT P.PRODUCT_NAME, CAST(SUM(S.NET_SALES) AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY S
JOIN DIM_PRODUCT P ON S.PRODUCT_KEY = P.PRODUCT_KEY
GROUP BY P.PRODUCT_NAME
ORDER BY SUM(S.NET_SALES) DESC`

const storePerformanceQuery = `SELECT ST.STORE_NAME, CAST(SUM(S.NET_SALES) AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY S
JOIN DIM_STORE ST ON S.STORE_KEY = ST.STORE_KEY
GROUP BY ST.STORE_NAME
ORDER BY SUM(S.NET_SALES) DESC`

func spoilageQuery(from, to int) string {
	return fmt.Sprintf(`SELECT DATE_KEY, CAST(SUM(QTY_SPOILED) AS DOUBLE PRECISION), CAST(SUM(SPOILAGE_VALUE) AS DOUBLE PRECISION)
FROM FACT_SPOILAGE_DAILY
WHERE DATE_KEY BETWEEN %d AND %d
GROUP BY DATE_KEY
ORDER BY DATE_KEY`, from, to)
}

const categoryQuery = `SELECT P.CATEGORY, CAST(SUM(S.NET_SALES) AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY S
JOIN DIM_PRODUCT P ON S.PRODUCT_KEY = P.PRODUCT_KEY
GROUP BY P.CATEGORY
ORDER BY SUM(S.NET_SALES) DESC`

const promotionQuery = `SELECT PR.PROMO_NAME, CAST(AVG(S.QTY_SOLD) AS DOUBLE PRECISION)
FROM FACT_SALES_DAILY S
JOIN DIM_PROMOTION PR ON S.PROMO_KEY = PR.PROMO_KEY
GROUP BY PR.PROMO_NAME
ORDER BY PR.PROMO_NAME`

const baselineQuery = `SELECT CAST(AVG(QTY_SOLD) AS DOUBLE PRECISION) FROM FACT_SALES_DAILY WHERE PROMO_KEY IS NULL`
