package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"despacho_app_go/models"
	"despacho_app_go/services"

	"github.com/google/uuid"
)

// ErrDocumentTooLarge is returned when the blob store is unavailable and
// the document exceeds the inline-fallback cap. Encoding arbitrarily
// large files into the local snapshot is rejected rather than bounded
// only by storage quota.
var ErrDocumentTooLarge = errors.New("document too large for inline fallback")

// AddPromotion stages a captured document before it is assigned to a
// case. The upload falls back to an inline data URL (capped) so capture
// never waits on the network; classification runs afterwards in the
// background.
func (s *Store) AddPromotion(ctx context.Context, doc services.Document, onProgress func(float64)) (*models.Promotion, error) {
	url, uploadErr := s.uploadDocument(ctx, doc, services.GeneratePromotionKey(doc.Name), onProgress)
	if uploadErr != nil {
		if s.inlineFallbackMax > 0 && doc.Size() > s.inlineFallbackMax {
			return nil, fmt.Errorf("%w (%d bytes, cap %d)", ErrDocumentTooLarge, doc.Size(), s.inlineFallbackMax)
		}
		log.Printf("[WARNING] Promotion upload failed, storing inline copy: %v", uploadErr)
		url = doc.DataURL()
	}

	promotion := models.Promotion{
		ID:        uuid.New().String(),
		URL:       url,
		Name:      doc.Name,
		DateAdded: today(),
		Status:    models.PromotionStatusAnalyzing,
	}

	s.mu.Lock()
	// Local-only inserts are prepended; remote snapshots resort by
	// dateAdded descending once the write round-trips.
	s.tree.Promotions = append([]models.Promotion{promotion}, s.tree.Promotions...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventPromotionsUpdated})
	s.mirror("promotion create", func(mctx context.Context) error {
		return s.remote.Set(mctx, services.CollectionPromotions, promotion.ID, promotion)
	})

	go s.analyzePromotion(promotion.ID, doc)

	clone := promotion.Clone()
	return &clone, nil
}

// analyzePromotion runs the oracle and resolves the promotion to ready
// or error. The promotion may have been deleted in the interim; the
// result is then dropped.
func (s *Store) analyzePromotion(promotionID string, doc services.Document) {
	if s.oracle == nil {
		return
	}

	analysis, err := s.oracle.Classify(context.Background(), doc)

	s.mu.Lock()
	promotion := s.findPromotionLocked(promotionID)
	if promotion == nil {
		s.mu.Unlock()
		return
	}

	if err != nil {
		log.Printf("[WARNING] Promotion analysis failed for %s: %v", promotionID, err)
		promotion.Status = models.PromotionStatusError
	} else {
		promotion.AIAnalysis = analysis
		promotion.Status = models.PromotionStatusReady
		if analysis.FilingDate != nil {
			s.tree.GeneralEvents = append(s.tree.GeneralEvents, models.GeneralEvent{
				ID:          uuid.New().String(),
				Title:       fmt.Sprintf("Presentación: %s", promotion.Name),
				Date:        *analysis.FilingDate,
				Description: analysis.Summary,
				CaseID:      nil,
			})
		}
	}
	s.persistLocked()
	updated := promotion.Clone()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventPromotionsUpdated})
	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("promotion result", func(ctx context.Context) error {
		return s.remote.Set(ctx, services.CollectionPromotions, updated.ID, updated)
	})
}

// RetryPromotionAnalysis re-runs a failed analysis. The original upload
// is not retained, so the promotion's own stored URL is re-fetched to
// reconstruct the document; a failed re-fetch moves the promotion back
// to error.
func (s *Store) RetryPromotionAnalysis(promotionID string) error {
	s.mu.Lock()
	promotion := s.findPromotionLocked(promotionID)
	if promotion == nil {
		s.mu.Unlock()
		return fmt.Errorf("promotion %s: %w", promotionID, ErrNotFound)
	}
	promotion.Status = models.PromotionStatusAnalyzing
	url, name := promotion.URL, promotion.Name
	retrying := promotion.Clone()
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventPromotionsUpdated})
	s.mirror("promotion retry", func(ctx context.Context) error {
		return s.remote.Set(ctx, services.CollectionPromotions, retrying.ID, retrying)
	})

	go func() {
		doc, err := services.FetchDocument(context.Background(), url, name)
		if err != nil {
			log.Printf("[WARNING] Failed to re-fetch promotion %s: %v", promotionID, err)
			s.failPromotion(promotionID)
			return
		}
		s.analyzePromotion(promotionID, doc)
	}()
	return nil
}

func (s *Store) failPromotion(promotionID string) {
	s.mu.Lock()
	promotion := s.findPromotionLocked(promotionID)
	if promotion == nil {
		s.mu.Unlock()
		return
	}
	promotion.Status = models.PromotionStatusError
	s.persistLocked()
	failed := promotion.Clone()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventPromotionsUpdated})
	s.mirror("promotion result", func(ctx context.Context) error {
		return s.remote.Set(ctx, services.CollectionPromotions, failed.ID, failed)
	})
}

// MovePromotionToCase consumes a promotion: it becomes an image on the
// target case and leaves the staging list. The two remote operations are
// independent; partial failure is only logged and local state stays
// authoritative.
func (s *Store) MovePromotionToCase(promotionID, caseID string) (*models.Image, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.tree.Promotions {
		if s.tree.Promotions[i].ID == promotionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("promotion %s: %w", promotionID, ErrNotFound)
	}
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	promotion := s.tree.Promotions[idx]
	image := models.Image{
		ID:      uuid.New().String(),
		URL:     promotion.URL,
		Type:    "Promoción",
		Summary: promotion.Name,
		Date:    today(),
	}
	if promotion.AIAnalysis != nil {
		image.AIAnalysis = promotion.AIAnalysis.Clone()
		image.Type = promotion.AIAnalysis.Type
		if promotion.AIAnalysis.Summary != "" {
			image.Summary = promotion.AIAnalysis.Summary
		}
		image.NextAction = promotion.AIAnalysis.NextAction
		if promotion.AIAnalysis.DeadlineDate != nil {
			deadline := *promotion.AIAnalysis.DeadlineDate
			image.Deadline = &deadline
		}
	}

	c.Images = append(c.Images, image)
	c.LastUpdate = today()
	s.tree.Promotions = append(s.tree.Promotions[:idx], s.tree.Promotions[idx+1:]...)
	s.persistLocked()

	imagesCopy := cloneImages(c.Images)
	caseCopy := *c.Clone()
	lastUpdate := c.LastUpdate
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventPromotionsUpdated})
	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("promotion move (delete)", func(ctx context.Context) error {
		return s.remote.Delete(ctx, services.CollectionPromotions, promotionID)
	})
	s.mirror("promotion move (case update)", func(ctx context.Context) error {
		return s.writeImagesArray(ctx, caseID, imagesCopy, lastUpdate, caseCopy)
	})

	clone := image.Clone()
	return &clone, nil
}

// DeletePromotion removes a promotion from staging. Valid from any
// state; a missing id returns the failure indicator without changes.
func (s *Store) DeletePromotion(promotionID string) error {
	s.mu.Lock()
	idx := -1
	for i := range s.tree.Promotions {
		if s.tree.Promotions[i].ID == promotionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("promotion %s: %w", promotionID, ErrNotFound)
	}

	s.tree.Promotions = append(s.tree.Promotions[:idx], s.tree.Promotions[idx+1:]...)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventPromotionsUpdated})
	s.mirror("promotion delete", func(ctx context.Context) error {
		return s.remote.Delete(ctx, services.CollectionPromotions, promotionID)
	})
	return nil
}

// findPromotionLocked returns a pointer into the promotions slice, or
// nil. Must be called with the lock held.
func (s *Store) findPromotionLocked(id string) *models.Promotion {
	for i := range s.tree.Promotions {
		if s.tree.Promotions[i].ID == id {
			return &s.tree.Promotions[i]
		}
	}
	return nil
}
