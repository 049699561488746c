// Package api provides the HTTP dashboard server for LiquidityLens.
//
// It serves the collected liquidity frame, latest snapshot, SVG charts,
// and a WebSocket stream that announces new data whenever the CSV
// artifact is rewritten.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/macrolens/liquiditylens/internal/config"
	"github.com/macrolens/liquiditylens/internal/liquidity"
	"github.com/macrolens/liquiditylens/internal/report"
	"github.com/macrolens/liquiditylens/pkg/models"
)

// Server is the HTTP dashboard server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	store   *frameStore
	wsHub   *WSHub
	serveUI bool // when true, serve the embedded dashboard page at /
}

// NewServer creates a configured dashboard server reading the CSV
// artifact at the configured output path.
func NewServer(cfg *config.Config) *Server {
	srv := &Server{
		cfg:     cfg,
		store:   newFrameStore(cfg.CSVPath()),
		wsHub:   NewWSHub(),
		serveUI: true,
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded dashboard page is served.
// Must be called before Run.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Run starts the HTTP server and the CSV watcher, stopping both when
// ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return s.watchCSV(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down server...")
		shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutCtx)
	})

	return g.Wait()
}

// watchCSV polls the CSV artifact and broadcasts a snapshot event to
// WebSocket clients whenever its mtime changes.
func (s *Server) watchCSV(ctx context.Context) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			changed, err := s.store.refresh()
			if err != nil || !changed {
				continue
			}
			if snap, err := s.buildSnapshot(); err == nil {
				s.wsHub.Broadcast(WSMessage{Type: "snapshot", Data: snap})
			}
		}
	}
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/frame", s.handleFrame)
		r.Get("/series/{indicator}", s.handleSeries)
		r.Get("/charts/yield-curve.svg", s.handleYieldCurveChart)
		r.Get("/charts/{indicator}.svg", s.handleIndicatorChart)
		r.Get("/config/keys", s.handleConfigKeys)
		r.Get("/ws", s.handleWebSocket)
	})
	r.Get("/ws", s.handleWebSocket)

	if s.serveUI {
		s.mountUI(r)
	}

	return r
}

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// IndicatorReading is the latest observed value of one frame column.
type IndicatorReading struct {
	Indicator string  `json:"indicator"`
	Date      string  `json:"date"`
	Value     float64 `json:"value"`
}

// Snapshot is the latest state of every indicator plus curve metrics.
type Snapshot struct {
	Readings    []IndicatorReading    `json:"readings"`
	Curve       *liquidity.CurveStats `json:"curve,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.buildSnapshot()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no data: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snap})
}

func (s *Server) buildSnapshot() (*Snapshot, error) {
	frame, err := s.store.frame()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{GeneratedAt: time.Now()}
	for _, col := range frame.Columns() {
		date, v, ok := frame.Latest(col)
		if !ok {
			continue
		}
		snap.Readings = append(snap.Readings, IndicatorReading{
			Indicator: col,
			Date:      date.Format("2006-01-02"),
			Value:     v,
		})
	}

	if stats, _, ok := liquidity.LatestCurveStats(curvePoints(frame), models.MaturityLabels()); ok {
		snap.Curve = &stats
	}
	return snap, nil
}

// FrameRow is one date's values keyed by column; absent columns are
// omitted.
type FrameRow struct {
	Date   string             `json:"date"`
	Values map[string]float64 `json:"values"`
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	frame, err := s.store.frame()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no data: "+err.Error())
		return
	}

	cols := frame.Columns()
	rows := make([]FrameRow, 0, frame.Len())
	for _, date := range frame.Dates() {
		row := FrameRow{Date: date.Format("2006-01-02"), Values: make(map[string]float64)}
		for _, col := range cols {
			if v, ok := frame.Value(col, date); ok {
				row.Values[col] = v
			}
		}
		rows = append(rows, row)
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"columns": cols,
			"rows":    rows,
		},
	})
}

// SeriesPoint is one dated value of a single indicator.
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	indicator := chi.URLParam(r, "indicator")

	frame, err := s.store.frame()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no data: "+err.Error())
		return
	}

	if !hasColumn(frame, indicator) {
		writeError(w, http.StatusNotFound, "unknown indicator: "+indicator)
		return
	}

	var points []SeriesPoint
	for _, date := range frame.Dates() {
		if v, ok := frame.Value(indicator, date); ok {
			points = append(points, SeriesPoint{Date: date.Format("2006-01-02"), Value: v})
		}
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"indicator": indicator,
			"points":    points,
		},
	})
}

func (s *Server) handleYieldCurveChart(w http.ResponseWriter, r *http.Request) {
	frame, err := s.store.frame()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no data: "+err.Error())
		return
	}

	stats, snap, ok := liquidity.LatestCurveStats(curvePoints(frame), models.MaturityLabels())
	var svg string
	if ok {
		svg = report.YieldCurveChart(snap, &stats, report.ChartConfig{})
	} else {
		svg = report.YieldCurveChart(nil, nil, report.ChartConfig{})
	}
	writeSVG(w, svg)
}

func (s *Server) handleIndicatorChart(w http.ResponseWriter, r *http.Request) {
	indicator := chi.URLParam(r, "indicator")

	frame, err := s.store.frame()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "no data: "+err.Error())
		return
	}
	if !hasColumn(frame, indicator) {
		writeError(w, http.StatusNotFound, "unknown indicator: "+indicator)
		return
	}

	writeSVG(w, report.IndicatorChart(frame, indicator, report.ChartConfig{}))
}

// handleConfigKeys returns the status of configured API keys, masked.
func (s *Server) handleConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// curvePoints rebuilds yield curve points from the frame's maturity
// columns.
func curvePoints(f *liquidity.Frame) []models.YieldCurvePoint {
	var points []models.YieldCurvePoint
	for _, date := range f.Dates() {
		for _, m := range models.StandardMaturities {
			if v, ok := f.Value(m.Label, date); ok {
				points = append(points, models.YieldCurvePoint{
					Date:     date,
					Maturity: m.Label,
					Years:    m.Years,
					Rate:     v,
				})
			}
		}
	}
	return points
}

func hasColumn(f *liquidity.Frame, name string) bool {
	for _, c := range f.Columns() {
		if c == name {
			return true
		}
	}
	return false
}

// frameStore caches the CSV-backed frame and reloads it when the file
// changes on disk.
type frameStore struct {
	path string

	mu     sync.RWMutex
	cached *liquidity.Frame
	mtime  time.Time
}

func newFrameStore(path string) *frameStore {
	return &frameStore{path: path}
}

// frame returns the current frame, loading it from disk on first use.
func (st *frameStore) frame() (*liquidity.Frame, error) {
	st.mu.RLock()
	cached := st.cached
	st.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	if _, err := st.refresh(); err != nil {
		return nil, err
	}

	st.mu.RLock()
	defer st.mu.RUnlock()
	if st.cached == nil {
		return nil, os.ErrNotExist
	}
	return st.cached, nil
}

// refresh reloads the frame if the file's mtime moved. Returns whether
// a reload happened.
func (st *frameStore) refresh() (bool, error) {
	info, err := os.Stat(st.path)
	if err != nil {
		return false, err
	}

	st.mu.RLock()
	upToDate := st.cached != nil && info.ModTime().Equal(st.mtime)
	st.mu.RUnlock()
	if upToDate {
		return false, nil
	}

	frame, err := report.ReadCSV(st.path)
	if err != nil {
		return false, err
	}

	st.mu.Lock()
	st.cached = frame
	st.mtime = info.ModTime()
	st.mu.Unlock()
	return true, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

func writeSVG(w http.ResponseWriter, svg string) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(svg)); err != nil {
		log.Printf("failed to write SVG response: %v", err)
	}
}

