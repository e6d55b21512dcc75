package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opsgate/opsgate/internal/audit"
	"github.com/opsgate/opsgate/internal/model"
)

// operationRequest is the shared request body for evaluate and decide.
type operationRequest struct {
	Operation string        `json:"operation"`
	Data      any           `json:"data"`
	Context   model.Context `json:"context"`
}

type healthRequest struct {
	Component string             `json:"component"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Server) handleEvaluate(c *gin.Context) {
	var req operationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Operation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing operation"})
		return
	}

	s.mu.RLock()
	evaluator := s.evaluator
	enabled := s.appCfg.PolicyEnabled()
	s.mu.RUnlock()

	if !enabled {
		c.JSON(http.StatusOK, model.Evaluation{Approved: true})
		return
	}

	eval, err := evaluator.Evaluate(c.Request.Context(), req.Operation, req.Data, req.Context)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	recordEvaluation(eval)
	c.JSON(http.StatusOK, eval)
}

func (s *Server) handleDecide(c *gin.Context) {
	var req operationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Operation == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing operation"})
		return
	}

	started := time.Now()
	decision, err := s.composer.Decide(c.Request.Context(), req.Operation, req.Data, req.Context)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.tracker.Record(req.Operation, map[string]float64{
		"duration_ms": float64(time.Since(started).Milliseconds()),
	}, decision.Approved)

	recordDecision(decision)
	if !decision.Approved {
		s.dispatchDenied(decision)
	}

	c.JSON(http.StatusOK, decision)
}

func (s *Server) handleHealthCheck(c *gin.Context) {
	var req healthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Component == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing component"})
		return
	}
	if s.monitor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "resilience monitoring disabled"})
		return
	}

	check, err := s.monitor.Record(c.Request.Context(), req.Component, req.Metrics)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, check)
}

func (s *Server) handleAuditQuery(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit disabled"})
		return
	}

	filter := audit.QueryFilter{
		Start: queryAlias(c, "start_time", "start"),
		End:   queryAlias(c, "end_time", "end"),
		Kind:  audit.Kind(c.Query("kind")),
	}

	entries := s.ledger.Query(filter)
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}

// queryAlias returns the first non-empty value among the named query params.
func queryAlias(c *gin.Context, names ...string) string {
	for _, n := range names {
		if v := c.Query(n); v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleAuditIntegrity(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit disabled"})
		return
	}
	c.JSON(http.StatusOK, s.ledger.VerifyIntegrity())
}

func (s *Server) handleReport(c *gin.Context) {
	report := gin.H{
		"generated_at": time.Now().UTC().Format(audit.TimestampFormat),
		"oversight":    s.composer.Summary(),
		"performance":  s.tracker.Summary(),
	}
	if s.ledger != nil {
		report["compliance"] = s.ledger.Report()
	}
	if s.monitor != nil {
		report["resilience"] = s.monitor.Report()
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleHealthz(c *gin.Context) {
	status := model.StatusUnknown
	if s.monitor != nil {
		status = s.monitor.Overall()
	}
	code := http.StatusOK
	if status == model.StatusCritical {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":         "ok",
		"overall_health": status,
	})
}
