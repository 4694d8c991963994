package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"despacho_app_go/models"
)

// ErrClassificationFailed is returned when the simulated classifier
// decides the document could not be analyzed.
var ErrClassificationFailed = errors.New("document classification failed")

// DocumentClassifier is the asynchronous oracle that extracts
// classification metadata from a captured document. Implementations may
// be slow and may fail; callers must tolerate both.
type DocumentClassifier interface {
	Classify(ctx context.Context, doc Document) (*models.AIAnalysis, error)
}

// SimulatedClassifier fakes a document-understanding service: it waits a
// randomized interval, fails a configurable fraction of calls, and
// derives the result from filename keywords.
type SimulatedClassifier struct {
	MinDelay    time.Duration
	MaxDelay    time.Duration
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedClassifier(minDelay, maxDelay time.Duration, failureRate float64) *SimulatedClassifier {
	return &SimulatedClassifier{
		MinDelay:    minDelay,
		MaxDelay:    maxDelay,
		FailureRate: failureRate,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *SimulatedClassifier) randomFloat() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Classify waits the simulated latency and returns keyword-derived
// metadata, or an error for the simulated failure fraction.
func (s *SimulatedClassifier) Classify(ctx context.Context, doc Document) (*models.AIAnalysis, error) {
	delay := s.MinDelay
	if s.MaxDelay > s.MinDelay {
		delay += time.Duration(s.randomFloat() * float64(s.MaxDelay-s.MinDelay))
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}

	if s.randomFloat() < s.FailureRate {
		return nil, fmt.Errorf("%w: service unavailable", ErrClassificationFailed)
	}

	analysis := s.analyzeName(doc.Name)
	analysis.Confidence = 0.7 + s.randomFloat()*0.28
	return analysis, nil
}

func (s *SimulatedClassifier) analyzeName(name string) *models.AIAnalysis {
	lower := strings.ToLower(name)
	today := time.Now()

	switch {
	case strings.Contains(lower, "demanda"):
		return &models.AIAnalysis{
			Summary:      "Escrito inicial de demanda presentado ante el juzgado.",
			Type:         "Demanda Inicial",
			LegalBasis:   "Art. 255 CPC CDMX",
			Deadline:     "15 días hábiles para contestar",
			DeadlineDate: dateString(today.AddDate(0, 0, 15)),
			NextAction:   "Preparar contestación de demanda",
		}
	case strings.Contains(lower, "amparo"):
		return &models.AIAnalysis{
			Summary:      "Demanda de amparo indirecto contra acto de autoridad.",
			Type:         "Amparo Indirecto",
			LegalBasis:   "Art. 107 Ley de Amparo",
			Deadline:     "Término de 15 días",
			DeadlineDate: dateString(today.AddDate(0, 0, 15)),
			NextAction:   "Revisar admisión y suspensión provisional",
			FilingDate:   dateString(today),
		}
	case strings.Contains(lower, "sentencia"):
		return &models.AIAnalysis{
			Summary:      "Sentencia definitiva dictada en el expediente.",
			Type:         "Sentencia",
			LegalBasis:   "Art. 79 CPC CDMX",
			Deadline:     "9 días para apelar",
			DeadlineDate: dateString(today.AddDate(0, 0, 9)),
			NextAction:   "Valorar recurso de apelación con el cliente",
		}
	case strings.Contains(lower, "notificacion"), strings.Contains(lower, "notificación"), strings.Contains(lower, "acuerdo"):
		return &models.AIAnalysis{
			Summary:      "Notificación de acuerdo emitido por el juzgado.",
			Type:         "Notificación",
			LegalBasis:   "Art. 111 CPC CDMX",
			Deadline:     "3 días para desahogar la vista",
			DeadlineDate: dateString(today.AddDate(0, 0, 3)),
			NextAction:   "Desahogar vista dentro del término",
			FilingDate:   dateString(today),
		}
	default:
		return &models.AIAnalysis{
			Summary:    "Documento legal sin clasificación específica.",
			Type:       "Documento Legal",
			LegalBasis: "",
			Deadline:   "",
			NextAction: "Revisar y asociar a la etapa procesal correspondiente",
		}
	}
}

func dateString(t time.Time) *string {
	s := t.Format("2006-01-02")
	return &s
}
