package database

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/gorm"

	"textorder/internal/evaluation"
	"textorder/internal/models"
)

// SaveEvaluation stores one evaluation result
func (s *Store) SaveEvaluation(result *evaluation.EvaluationResult) (*EvaluationRecord, error) {
	metrics, err := json.Marshal(result.Metrics)
	if err != nil {
		return nil, err
	}
	rec := &EvaluationRecord{
		Parser:      result.Parser,
		Scenario:    result.Scenario,
		MetricsJSON: string(metrics),
		ExactMatch:  result.Metrics[evaluation.MetricExactMatch],
		Error:       result.Error,
	}
	if err := s.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to store evaluation: %w", err)
	}
	return rec, nil
}

// ListEvaluations returns the newest evaluations first. An empty parser
// matches every parser; a limit of zero means no limit.
func (s *Store) ListEvaluations(parser string, limit int) ([]EvaluationRecord, error) {
	q := s.db.Order("id desc")
	if parser != "" {
		q = q.Where("parser = ?", parser)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []EvaluationRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// GetEvaluation returns one stored evaluation
func (s *Store) GetEvaluation(id uint) (*EvaluationRecord, error) {
	var rec EvaluationRecord
	if err := s.db.First(&rec, id).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, fmt.Errorf("%w: evaluation %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &rec, nil
}

// SaveParse logs one parse request with its outcome. A nil order records a failed parse.
func (s *Store) SaveParse(requestID, parser, text string, order *models.Order, durationMS float64, parseErr error) (*ParseRecord, error) {
	rec := &ParseRecord{
		RequestID:  requestID,
		Parser:     parser,
		Text:       text,
		DurationMS: durationMS,
	}
	if parseErr != nil {
		rec.Error = parseErr.Error()
	}
	if order != nil {
		rec.ItemCount = order.ItemCount
		rec.TotalCents = int64(order.Total)
		if order.Restaurant != nil {
			rec.Restaurant = order.Restaurant.ID
		}
	}
	if err := s.db.Create(rec).Error; err != nil {
		return nil, fmt.Errorf("failed to store parse: %w", err)
	}
	return rec, nil
}

// ListParses returns the newest parse records first
func (s *Store) ListParses(limit int) ([]ParseRecord, error) {
	q := s.db.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var recs []ParseRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
