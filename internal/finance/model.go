package finance

// Summary is the storefront-wide revenue versus cost-of-goods figure.
type Summary struct {
	Revenue     int64 `json:"revenue"`
	COGS        int64 `json:"cogs"`
	GrossProfit int64 `json:"grossProfit"`
}

// DailyStat is one day's slice of a date-range report.
type DailyStat struct {
	Date        string `json:"date"`
	Revenue     int64  `json:"revenue"`
	COGS        int64  `json:"cogs"`
	GrossProfit int64  `json:"grossProfit"`
}

// RangeReport aggregates completed order lines between two dates.
type RangeReport struct {
	TotalRevenue int64       `json:"totalRevenue"`
	TotalCOGS    int64       `json:"totalCOGS"`
	GrossProfit  int64       `json:"grossProfit"`
	DailyStats   []DailyStat `json:"dailyStats"`
}
