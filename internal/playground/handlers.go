package playground

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ModelInfo represents information about an available LLM backend
type ModelInfo struct {
	Type      string `json:"type"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
	Active    bool   `json:"active"`
}

// ScenarioInfo represents information about an available test scenario
type ScenarioInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Text        string `json:"text"`
}

// handleListModels returns the configured LLM backends
func (s *PlaygroundServer) handleListModels(c *gin.Context) {
	models := s.models
	if models == nil {
		models = []ModelInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"llm_enabled": s.processor.HasLLM(),
		"models":      models,
	})
}

// handleListScenarios returns a list of available test scenarios
func (s *PlaygroundServer) handleListScenarios(c *gin.Context) {
	scenarios := make([]ScenarioInfo, 0)
	for _, sc := range s.evaluator.GetScenarios() {
		scenarios = append(scenarios, ScenarioInfo{
			ID:          sc.ID,
			Name:        sc.Name,
			Type:        sc.Type,
			Description: sc.Description,
			Text:        sc.Text,
		})
	}

	c.JSON(http.StatusOK, scenarios)
}

// handleMetrics returns current parse and evaluation metrics
func (s *PlaygroundServer) handleMetrics(c *gin.Context) {
	metrics := s.monitor.GetMetrics()
	c.JSON(http.StatusOK, metrics)
}
