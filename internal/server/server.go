// Package server exposes the projection engine over HTTP.
package server

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/rpgo/household-planner/internal/config"
	"github.com/rpgo/household-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Server routes requests to the engine. It keeps no per-request state.
type Server struct {
	engine *calculation.ProjectionEngine
	parser *config.InputParser
	log    *zap.SugaredLogger
}

// New creates a server. A nil logger disables request logging.
func New(engine *calculation.ProjectionEngine, parser *config.InputParser, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{engine: engine, parser: parser, log: log}
}

// GrossRequest asks for the gross salary behind a monthly net salary.
type GrossRequest struct {
	Net decimal.Decimal `json:"net"`
}

// DebtScheduleResponse carries an amortization schedule and its totals.
type DebtScheduleResponse struct {
	Schedule []calculation.DebtYear  `json:"schedule"`
	Summary  calculation.DebtSummary `json:"summary"`
}

// SimulationRequest asks for a Monte Carlo run over a household.
type SimulationRequest struct {
	Household   domain.Household `json:"household"`
	Simulations int              `json:"simulations"`
	Seed        int64            `json:"seed"`
	Volatility  decimal.Decimal  `json:"volatility"`
}

// maxSimulations bounds the work of a single simulation request.
const maxSimulations = 1000

// PensionScheduleResponse carries a pension schedule.
type PensionScheduleResponse struct {
	Schedule []calculation.PensionYear `json:"schedule"`
}

// Handler returns the request router.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		s.route(ctx)
		s.log.Debugw("request",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"status", ctx.Response.StatusCode(),
			"elapsed", time.Since(start))
	}
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	if path == "/healthz" {
		if !ctx.IsGet() {
			s.methodNotAllowed(ctx, fasthttp.MethodGet)
			return
		}
		s.writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
		return
	}

	var handle func(*fasthttp.RequestCtx) (any, error)
	switch path {
	case "/v1/projection":
		handle = s.handleProjection
	case "/v1/projection/simulate":
		handle = s.handleSimulation
	case "/v1/payroll/gross":
		handle = s.handleGross
	case "/v1/debt/schedule":
		handle = s.handleDebtSchedule
	case "/v1/pension/schedule":
		handle = s.handlePensionSchedule
	default:
		s.writeError(ctx, &APIError{Code: "NOT_FOUND", Message: "no route for " + path, Status: fasthttp.StatusNotFound})
		return
	}
	if !ctx.IsPost() {
		s.methodNotAllowed(ctx, fasthttp.MethodPost)
		return
	}
	body, err := handle(ctx)
	if err != nil {
		s.writeError(ctx, toAPIError(err))
		return
	}
	s.writeJSON(ctx, fasthttp.StatusOK, body)
}

func (s *Server) handleProjection(ctx *fasthttp.RequestCtx) (any, error) {
	var h domain.Household
	if err := json.Unmarshal(ctx.PostBody(), &h); err != nil {
		return nil, badRequest("invalid household: " + err.Error())
	}
	config.AssignIDs(&h)
	if err := s.parser.ValidateHousehold(&h); err != nil {
		return nil, err
	}
	return s.engine.RunProjection(ctx, &h)
}

func (s *Server) handleSimulation(ctx *fasthttp.RequestCtx) (any, error) {
	var req SimulationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		return nil, badRequest("invalid simulation request: " + err.Error())
	}
	if req.Simulations <= 0 || req.Simulations > maxSimulations {
		return nil, badRequest(fmt.Sprintf("simulations must be between 1 and %d", maxSimulations))
	}
	if req.Volatility.IsNegative() {
		return nil, badRequest("volatility must not be negative")
	}
	config.AssignIDs(&req.Household)
	if err := s.parser.ValidateHousehold(&req.Household); err != nil {
		return nil, err
	}
	return s.engine.SimulateReturns(ctx, &req.Household, calculation.MonteCarloConfig{
		NumSimulations: req.Simulations,
		Seed:           req.Seed,
		Volatility:     req.Volatility,
	})
}

func (s *Server) handleGross(ctx *fasthttp.RequestCtx) (any, error) {
	var req GrossRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		return nil, badRequest("invalid request: " + err.Error())
	}
	return s.engine.SolveGross(req.Net)
}

func (s *Server) handleDebtSchedule(ctx *fasthttp.RequestCtx) (any, error) {
	var terms calculation.DebtTerms
	if err := json.Unmarshal(ctx.PostBody(), &terms); err != nil {
		return nil, badRequest("invalid debt terms: " + err.Error())
	}
	rows, summary, err := s.engine.AmortizeDebt(terms)
	if err != nil {
		return nil, err
	}
	return DebtScheduleResponse{Schedule: rows, Summary: summary}, nil
}

func (s *Server) handlePensionSchedule(ctx *fasthttp.RequestCtx) (any, error) {
	var p domain.Pension
	if err := json.Unmarshal(ctx.PostBody(), &p); err != nil {
		return nil, badRequest("invalid pension: " + err.Error())
	}
	rows, err := s.engine.PensionSchedule(p)
	if err != nil {
		return nil, err
	}
	return PensionScheduleResponse{Schedule: rows}, nil
}

func (s *Server) methodNotAllowed(ctx *fasthttp.RequestCtx, allow string) {
	ctx.Response.Header.Set("Allow", allow)
	s.writeError(ctx, &APIError{Code: "METHOD_NOT_ALLOWED", Message: "use " + allow, Status: fasthttp.StatusMethodNotAllowed})
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, e *APIError) {
	if e.Status >= fasthttp.StatusInternalServerError {
		s.log.Errorw("request failed", "path", string(ctx.Path()), "error", e.Message)
	}
	s.writeJSON(ctx, e.Status, e)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Errorw("encode response", "error", err)
		ctx.Error(`{"code":"INTERNAL_ERROR","message":"failed to encode response"}`, fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(data)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "household-planner",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", addr)
		errCh <- srv.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Infow("shutting down")
		return srv.Shutdown()
	}
}
