package provider

// SeriesType identifies a standard series the tool knows how to fetch.
// Each type maps to a concrete data shape in pkg/models.
type SeriesType string

const (
	// SeriesFederalFundsRate is the effective federal funds rate
	// (policy rate), daily. Data: models.TimeSeries.
	SeriesFederalFundsRate SeriesType = "FederalFundsRate"

	// SeriesYieldCurve is the Treasury constant-maturity yield curve,
	// all maturities over the range. Data: []models.YieldCurvePoint.
	SeriesYieldCurve SeriesType = "YieldCurve"

	// SeriesTreasuryBill3M is the 3-month T-bill secondary market
	// rate, the short leg of the funding spread. Data: models.TimeSeries.
	SeriesTreasuryBill3M SeriesType = "TreasuryBill3M"

	// SeriesReserveBalances is total reserve balances held at Federal
	// Reserve Banks, weekly, in $ billions. Data: models.TimeSeries.
	SeriesReserveBalances SeriesType = "ReserveBalances"

	// SeriesGeneric fetches an arbitrary upstream series by its
	// provider-native ID. Data: models.TimeSeries.
	SeriesGeneric SeriesType = "Generic"
)
