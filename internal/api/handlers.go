package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"textorder/internal/database"
	"textorder/internal/evaluation"
	"textorder/internal/models"
	"textorder/internal/processing"
)

// ParseRequest is the body of POST /api/v1/orders/parse
type ParseRequest struct {
	Text   string `json:"text"`
	Parser string `json:"parser"`
}

// ParseResponse is the parsed order and how it was produced
type ParseResponse struct {
	RequestID  string                 `json:"request_id"`
	Parser     string                 `json:"parser"`
	Order      *models.Order          `json:"order"`
	DurationMS float64                `json:"duration_ms"`
	Notes      []string               `json:"notes"`
	Comparison *processing.Comparison `json:"comparison,omitempty"`
}

// EvaluateRequest is the body of POST /api/v1/evaluate. An empty scenario
// runs every scenario.
type EvaluateRequest struct {
	Parser   string `json:"parser"`
	Scenario string `json:"scenario"`
}

// RestaurantInfo summarizes one restaurant of the catalog
type RestaurantInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases"`
	ItemCount int      `json:"item_count"`
}

var errStoreDisabled = errors.New("database is not configured")

// statusFor maps an error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInputInvalid), errors.Is(err, processing.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, evaluation.ErrUnknownScenario), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, processing.ErrParserUnavailable), errors.Is(err, errStoreDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request_failed", err, map[string]any{
			"request_id": requestID(c),
			"path":       c.FullPath(),
			"status":     status,
		})
	}
	c.JSON(status, gin.H{"error": err.Error(), "request_id": requestID(c)})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"restaurants": len(s.catalog.Restaurants()),
		"items":       len(s.catalog.Items()),
		"llm_enabled": s.processor.HasLLM(),
		"database":    s.store != nil,
	})
}

func (s *Server) handleParse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": requestID(c)})
		return
	}
	mode, err := processing.ParseMode(req.Parser)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.processor.Process(ctx, req.Text, mode)
	if err != nil {
		s.logParse(c, string(mode), req.Text, nil, 0, err)
		s.fail(c, err)
		return
	}

	resp := ParseResponse{
		RequestID:  requestID(c),
		Parser:     result.PreferredParser(),
		Order:      result.Preferred(),
		DurationMS: float64(result.Duration().Microseconds()) / 1000,
		Notes:      result.Notes,
		Comparison: result.Comparison,
	}
	s.logParse(c, resp.Parser, req.Text, resp.Order, resp.DurationMS, nil)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) logParse(c *gin.Context, parser, text string, order *models.Order, durationMS float64, parseErr error) {
	if s.store == nil {
		return
	}
	if _, err := s.store.SaveParse(requestID(c), parser, text, order, durationMS, parseErr); err != nil {
		s.logger.Error("parse_log_failed", err, map[string]any{"request_id": requestID(c)})
	}
}

func (s *Server) handleListParses(c *gin.Context) {
	if s.store == nil {
		s.fail(c, errStoreDisabled)
		return
	}
	recs, err := s.store.ListParses(queryLimit(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleListRestaurants(c *gin.Context) {
	restaurants := make([]RestaurantInfo, 0, len(s.catalog.Restaurants()))
	for _, r := range s.catalog.Restaurants() {
		aliases := r.Aliases
		if aliases == nil {
			aliases = []string{}
		}
		restaurants = append(restaurants, RestaurantInfo{
			ID:        r.ID,
			Name:      r.Name,
			Aliases:   aliases,
			ItemCount: len(r.Items),
		})
	}
	c.JSON(http.StatusOK, restaurants)
}

func (s *Server) handleMenu(c *gin.Context) {
	r, ok := s.catalog.FindRestaurant(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown restaurant: " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleListScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, s.evaluator.GetScenarios())
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mode, err := processing.ParseMode(req.Parser)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.processor.Parser(mode)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	var results []*evaluation.EvaluationResult
	if req.Scenario != "" {
		result, err := s.evaluator.EvaluateParser(ctx, string(mode), p, req.Scenario)
		if err != nil {
			s.fail(c, err)
			return
		}
		results = append(results, result)
	} else {
		results, err = s.evaluator.EvaluateAll(ctx, string(mode), p)
		if err != nil {
			s.fail(c, err)
			return
		}
	}

	if s.store != nil {
		for _, r := range results {
			if _, err := s.store.SaveEvaluation(r); err != nil {
				s.logger.Error("evaluation_save_failed", err, map[string]any{"scenario": r.Scenario})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"parser":  string(mode),
		"results": results,
		"average": evaluation.Average(results),
	})
}

func (s *Server) handleListEvaluations(c *gin.Context) {
	if s.store == nil {
		s.fail(c, errStoreDisabled)
		return
	}
	recs, err := s.store.ListEvaluations(c.Query("parser"), queryLimit(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}

// queryLimit reads ?limit=, defaulting to 50
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		return 50
	}
	return limit
}
