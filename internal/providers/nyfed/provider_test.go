package nyfed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/macrolens/liquiditylens/internal/provider"
	"github.com/macrolens/liquiditylens/pkg/models"
)

func TestEFFRFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rates/unsecured/effr/search.json" {
			http.NotFound(w, r)
			return
		}
		// The search endpoint takes MM/DD/YYYY dates.
		if start := r.URL.Query().Get("startDate"); start != "01/01/2024" {
			t.Errorf("startDate = %q, want 01/01/2024", start)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"refRates":[
			{"effectiveDate":"2024-01-02","type":"EFFR","percentRate":5.33},
			{"effectiveDate":"2024-01-03","type":"EFFR","percentRate":5.33}
		]}`)
	}))
	defer srv.Close()

	p := New()
	p.SetBaseURL(srv.URL)
	if err := p.Init(nil); err != nil {
		t.Fatalf("Init: %v", err)
	}

	f := p.Fetcher(provider.SeriesFederalFundsRate)
	if f == nil {
		t.Fatal("no fetcher for FederalFundsRate")
	}

	res, err := f.Fetch(context.Background(), provider.QueryParams{
		provider.ParamStartDate: "2024-01-01",
		provider.ParamEndDate:   "2024-01-31",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	ts, ok := res.Data.(*models.TimeSeries)
	if !ok {
		t.Fatalf("expected *models.TimeSeries, got %T", res.Data)
	}
	if ts.Indicator != models.IndicatorFedFundsRate {
		t.Errorf("indicator = %s", ts.Indicator)
	}
	if ts.Len() != 2 {
		t.Fatalf("len = %d, want 2", ts.Len())
	}
	latest, _ := ts.Latest()
	if latest.Value != 5.33 {
		t.Errorf("latest = %v, want 5.33", latest.Value)
	}
}

func TestEFFRFetchEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"refRates":[]}`)
	}))
	defer srv.Close()

	p := New()
	p.SetBaseURL(srv.URL)

	f := p.Fetcher(provider.SeriesFederalFundsRate)
	_, err := f.Fetch(context.Background(), provider.QueryParams{
		provider.ParamStartDate: "2024-01-01",
		provider.ParamEndDate:   "2024-01-02",
	})
	var emptyErr *provider.ErrEmptyResult
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestEFFRFetchUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New()
	p.SetBaseURL(srv.URL)

	f := p.Fetcher(provider.SeriesFederalFundsRate)
	_, err := f.Fetch(context.Background(), provider.QueryParams{})
	var unavailErr *provider.ErrDataUnavailable
	if !errors.As(err, &unavailErr) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}

func TestNYFedDateParam(t *testing.T) {
	if got := nyfedDateParam("2024-03-05"); got != "03/05/2024" {
		t.Errorf("nyfedDateParam = %q, want 03/05/2024", got)
	}
	// Unparseable input passes through untouched.
	if got := nyfedDateParam("last-week"); got != "last-week" {
		t.Errorf("nyfedDateParam = %q, want last-week", got)
	}
}

func TestNoCredentialsRequired(t *testing.T) {
	p := New()
	if err := p.Init(map[string]string{}); err != nil {
		t.Fatalf("Init should accept empty credentials: %v", err)
	}
	if info := p.Info(); len(info.Credentials) != 0 {
		t.Errorf("credentials = %v, want none", info.Credentials)
	}
}
