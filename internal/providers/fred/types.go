package fred

import (
	"strconv"
	"time"
)

// fredObservationsResponse mirrors /fred/series/observations.
type fredObservationsResponse struct {
	Count        int               `json:"count"`
	Observations []fredObservation `json:"observations"`
}

// fredObservation is a single dated value. FRED uses "." for periods
// with no data.
type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// Missing reports whether the observation carries no usable value.
func (o fredObservation) Missing() bool {
	return o.Value == "" || o.Value == "."
}

// Float parses the observation value. Callers must check Missing first.
func (o fredObservation) Float() (float64, error) {
	return strconv.ParseFloat(o.Value, 64)
}

func parseFredDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// curveSeriesIDs maps standard maturity labels to their FRED
// constant-maturity Treasury series.
var curveSeriesIDs = map[string]string{
	"1M":  "DGS1MO",
	"3M":  "DGS3MO",
	"6M":  "DGS6MO",
	"1Y":  "DGS1",
	"2Y":  "DGS2",
	"5Y":  "DGS5",
	"10Y": "DGS10",
	"30Y": "DGS30",
}
