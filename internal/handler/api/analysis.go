package api

import (
	"errors"
	"net/http"
	"time"

	"TradeTuner/internal/domain/models"
	domrepo "TradeTuner/internal/domain/repository"
	"TradeTuner/internal/service/metrics"
	"TradeTuner/internal/service/ratelimit"
	"TradeTuner/internal/usecase"
	xhttp "TradeTuner/pkg/http"
	xlogger "TradeTuner/pkg/logger"
	"TradeTuner/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnalysisHandler exposes market analysis and parameter optimization over HTTP.
type AnalysisHandler struct {
	logger    *xlogger.Logger
	analyzer  *usecase.MarketAnalyzer
	optimizer *usecase.ParameterOptimizer
	audit     domrepo.AuditStore
	tape      domrepo.TradeTape
	rl        *ratelimit.Limiter
}

func NewAnalysisHandler(logger *xlogger.Logger, analyzer *usecase.MarketAnalyzer, optimizer *usecase.ParameterOptimizer) *AnalysisHandler {
	metrics.Register()
	return &AnalysisHandler{logger: logger, analyzer: analyzer, optimizer: optimizer, rl: ratelimit.New()}
}

// SetAuditStore wires the audit store used by the health endpoint.
func (h *AnalysisHandler) SetAuditStore(s domrepo.AuditStore) { h.audit = s }

// SetTradeTape wires the live trade buffer served by the trades endpoint.
func (h *AnalysisHandler) SetTradeTape(t domrepo.TradeTape) { h.tape = t }

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.POST("/optimize", h.Optimize)
	g.GET("/trades", h.Trades)
	g.GET("/health", h.Health)
}

func (h *AnalysisHandler) Analysis(c echo.Context) error {
	start := time.Now()
	endpoint := "analysis"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analysis", 5, 2) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	snap, err := h.analyzer.Analyze(c.Request().Context(), req.Pair, req.Lookback)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		if errors.Is(err, models.ErrInsufficientData) {
			return xhttp.AppErrorResponse(c,
				xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "pair", err.Error(), http.StatusUnprocessableEntity))
		}
		h.logger.Error("analysis usecase error", xlogger.String("pair", req.Pair), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *AnalysisHandler) Optimize(c echo.Context) error {
	start := time.Now()
	endpoint := "optimize"
	defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.OptimizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":optimize", 3, 1) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	ctx := c.Request().Context()
	snap, err := h.analyzer.Analyze(ctx, req.Pair, req.Lookback)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		if errors.Is(err, models.ErrInsufficientData) {
			return xhttp.AppErrorResponse(c,
				xhttp.NewAppError("ERR_INSUFFICIENT_DATA", "pair", err.Error(), http.StatusUnprocessableEntity))
		}
		h.logger.Error("optimize analysis error", xlogger.String("pair", req.Pair), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	res, err := h.optimizer.Optimize(ctx, req.Pair, req.Params, req.Trades, snap)
	if err != nil {
		metrics.APIErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("optimize usecase error", xlogger.String("pair", req.Pair), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

const defaultTradesLimit = 100

// Trades returns recently streamed trades for a pair, oldest first,
// optionally narrowed to a [from, to) window aligned to timeframe boundaries.
func (h *AnalysisHandler) Trades(c echo.Context) error {
	pair := c.QueryParam("pair")
	if pair == "" {
		return xhttp.BadRequestResponse(c,
			xhttp.NewAppError("ERR_VALIDATION", "pair", "pair is required", http.StatusBadRequest))
	}
	if h.tape == nil {
		return xhttp.SuccessResponse(c, []models.Trade{})
	}
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), defaultTradesLimit)
	trades := h.tape.Recent(pair, limit)

	if from, ok := xhttp.ParseTime(c.QueryParam("from")); ok {
		to := xhttp.ParseTimeDefault(c.QueryParam("to"), time.Now())
		from, to = util.AlignFromTo(from, to, c.QueryParam("tf"))
		windowed := make([]models.Trade, 0, len(trades))
		for _, t := range trades {
			if t.Time.Before(from) || !t.Time.Before(to) {
				continue
			}
			windowed = append(windowed, t)
		}
		trades = windowed
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	return xhttp.SuccessResponse(c, trades)
}

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *AnalysisHandler) Health(c echo.Context) error {
	hs := healthStatus{Status: "ok", Checks: map[string]string{}}
	if h.audit != nil {
		if err := h.audit.Health(c.Request().Context()); err != nil {
			hs.Status = "degraded"
			hs.Checks["audit_store"] = err.Error()
		} else {
			hs.Checks["audit_store"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, hs)
}
