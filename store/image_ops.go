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

// AddImageResult reports the outcome of attaching a document to a case.
// UploadWarning is set when the blob upload failed and the image fell
// back to a local-only URL; the operation itself still succeeded.
type AddImageResult struct {
	Image         models.Image
	UploadWarning error
}

// AddImageToCase uploads the document, appends the resulting image,
// bumps the case's lastUpdate, and fires a background classification
// that later mutates the image in place (if it still exists).
//
// The upload runs outside the store lock: it is a genuine long-running
// suspension point with its own timeout and stall reporting. On upload
// failure the image keeps a local-only data URL; it is not re-uploaded
// later.
func (s *Store) AddImageToCase(ctx context.Context, caseID string, doc services.Document, onProgress func(float64)) (*AddImageResult, error) {
	if s.GetCase(caseID) == nil {
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	url, uploadErr := s.uploadDocument(ctx, doc, services.GenerateCaseImageKey(caseID, doc.Name), onProgress)
	if uploadErr != nil {
		log.Printf("[WARNING] Upload failed for %s, keeping local-only copy: %v", doc.Name, uploadErr)
		url = doc.DataURL()
	}

	image := models.Image{
		ID:      uuid.New().String(),
		URL:     url,
		Type:    "Documento",
		Summary: doc.Name,
		Date:    today(),
	}

	// The case may have been deleted while the upload was in flight
	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	c.Images = append(c.Images, image)
	c.LastUpdate = today()
	s.persistLocked()

	imagesCopy := cloneImages(c.Images)
	caseCopy := *c.Clone()
	lastUpdate := c.LastUpdate
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("image add", func(mctx context.Context) error {
		err := s.remote.ArrayAppend(mctx, services.CollectionCases, caseID, "images", image)
		if err == nil {
			return s.remote.Update(mctx, services.CollectionCases, caseID,
				map[string]interface{}{"lastUpdate": lastUpdate})
		}
		log.Printf("[WARNING] Remote image append failed, rewriting images array: %v", err)
		return s.writeImagesArray(mctx, caseID, imagesCopy, lastUpdate, caseCopy)
	})

	// Fire-and-forget classification; completion tolerates the image
	// having been deleted in the meantime.
	go s.classifyCaseImage(caseID, image.ID, doc)

	return &AddImageResult{Image: image.Clone(), UploadWarning: uploadErr}, nil
}

// classifyCaseImage runs the oracle and merges the result into the image
// if both the case and the image still exist. Failures are logged only;
// the image's analysis simply stays absent.
func (s *Store) classifyCaseImage(caseID, imageID string, doc services.Document) {
	if s.oracle == nil {
		return
	}
	analysis, err := s.oracle.Classify(context.Background(), doc)
	if err != nil {
		log.Printf("[WARNING] Classification failed for image %s: %v", imageID, err)
		return
	}

	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return
	}
	image := c.FindImage(imageID)
	if image == nil {
		s.mu.Unlock()
		return
	}

	image.AIAnalysis = analysis
	image.Type = analysis.Type
	if analysis.Summary != "" {
		image.Summary = analysis.Summary
	}
	image.NextAction = analysis.NextAction
	image.Deadline = analysis.DeadlineDate
	s.persistLocked()

	imagesCopy := cloneImages(c.Images)
	caseCopy := *c.Clone()
	lastUpdate := c.LastUpdate
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventCaseUpdated, CaseID: caseID})
	s.mirror("image classify", func(ctx context.Context) error {
		return s.writeImagesArray(ctx, caseID, imagesCopy, lastUpdate, caseCopy)
	})
}

// DeleteImageFromCase removes one image. Remotely it tries the
// single-element array removal first.
func (s *Store) DeleteImageFromCase(caseID, imageID string) error {
	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	found := false
	for i := range c.Images {
		if c.Images[i].ID == imageID {
			c.Images = append(c.Images[:i], c.Images[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("image %s: %w", imageID, ErrNotFound)
	}
	s.persistLocked()

	imagesCopy := cloneImages(c.Images)
	caseCopy := *c.Clone()
	lastUpdate := c.LastUpdate
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("image delete", func(ctx context.Context) error {
		err := s.remote.ArrayRemove(ctx, services.CollectionCases, caseID, "images", imageID)
		if err == nil {
			return nil
		}
		log.Printf("[WARNING] Remote image removal failed, rewriting images array: %v", err)
		return s.writeImagesArray(ctx, caseID, imagesCopy, lastUpdate, caseCopy)
	})
	return nil
}

// DeleteImages removes a set of images by id. It fails without touching
// anything when no image would be removed. The remote mirror is always a
// full-array rewrite.
func (s *Store) DeleteImages(caseID string, ids []string) error {
	idSet := map[string]bool{}
	for _, id := range ids {
		idSet[id] = true
	}

	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	remaining := make([]models.Image, 0, len(c.Images))
	for _, img := range c.Images {
		if !idSet[img.ID] {
			remaining = append(remaining, img)
		}
	}
	if len(remaining) == len(c.Images) {
		s.mu.Unlock()
		return fmt.Errorf("no matching images: %w", ErrNotFound)
	}

	c.Images = remaining
	s.persistLocked()

	imagesCopy := cloneImages(c.Images)
	caseCopy := *c.Clone()
	lastUpdate := c.LastUpdate
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("bulk image delete", func(ctx context.Context) error {
		return s.writeImagesArray(ctx, caseID, imagesCopy, lastUpdate, caseCopy)
	})
	return nil
}

// ReorderImages rebuilds the image list to match the given id order.
// Local images missing from the requested order are appended at the end,
// never dropped.
func (s *Store) ReorderImages(caseID string, newOrder []string) error {
	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	byID := map[string]models.Image{}
	for _, img := range c.Images {
		byID[img.ID] = img
	}

	reordered := make([]models.Image, 0, len(c.Images))
	placed := map[string]bool{}
	for _, id := range newOrder {
		if img, ok := byID[id]; ok && !placed[id] {
			reordered = append(reordered, img)
			placed[id] = true
		}
	}
	for _, img := range c.Images {
		if !placed[img.ID] {
			reordered = append(reordered, img)
		}
	}

	c.Images = reordered
	s.persistLocked()

	imagesCopy := cloneImages(c.Images)
	caseCopy := *c.Clone()
	lastUpdate := c.LastUpdate
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("image reorder", func(ctx context.Context) error {
		return s.writeImagesArray(ctx, caseID, imagesCopy, lastUpdate, caseCopy)
	})
	return nil
}

// uploadDocument stores the document in the blob store if one is
// configured; the caller decides what to do when it is not.
func (s *Store) uploadDocument(ctx context.Context, doc services.Document, key string, onProgress func(float64)) (string, error) {
	if s.uploads == nil {
		return "", fmt.Errorf("blob store not configured")
	}
	return s.uploads.Upload(ctx, doc, key, onProgress)
}

// writeImagesArray rewrites the full images array (plus lastUpdate),
// creating the remote document from the local case when it is missing.
func (s *Store) writeImagesArray(ctx context.Context, caseID string, images []models.Image, lastUpdate string, full models.Case) error {
	err := s.remote.Update(ctx, services.CollectionCases, caseID,
		map[string]interface{}{"images": images, "lastUpdate": lastUpdate})
	if errors.Is(err, services.ErrDocumentNotFound) {
		log.Printf("[WARNING] Remote case %s missing, creating from local copy", caseID)
		return s.remote.Set(ctx, services.CollectionCases, caseID, remoteCaseDoc{Case: full})
	}
	return err
}

func cloneImages(images []models.Image) []models.Image {
	out := make([]models.Image, 0, len(images))
	for _, img := range images {
		out = append(out, img.Clone())
	}
	return out
}
