package models

// QuoteSnapshot is the current market state of an instrument. It is
// overwritten on each fetch and carries no history.
type QuoteSnapshot struct {
	Symbol               string
	Price                float64
	MarketCap            float64
	SharesOutstanding    float64
	Currency             string
	MarketState          string
	ForwardDividendRate  float64
	TrailingDividendRate float64
}

// CompanyProfile holds the descriptive fundamentals of an issuer.
type CompanyProfile struct {
	Name      string
	Sector    string
	Industry  string
	Employees int64
	Summary   string
}
