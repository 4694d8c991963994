package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

// ErrUploadTimeout is returned when an upload exceeds the configured
// overall timeout. The caller must retry manually; the document falls
// back to a local-only URL and is not re-uploaded later.
var ErrUploadTimeout = errors.New("upload timed out")

// UploadService wraps a StorageProvider with an overall timeout and a
// shorter stall-detection timer. When the transfer stops reporting
// progress the stall timer does not cancel anything; it reports small
// synthetic increments so the UI does not appear hung.
type UploadService struct {
	Provider     StorageProvider
	Timeout      time.Duration
	StallTimeout time.Duration
}

func NewUploadService(provider StorageProvider, timeout, stallTimeout time.Duration) *UploadService {
	return &UploadService{Provider: provider, Timeout: timeout, StallTimeout: stallTimeout}
}

// Upload stores the document under key and returns its URL. onProgress
// receives percentages in [0,100]; it may be nil.
func (u *UploadService) Upload(ctx context.Context, doc Document, key string, onProgress func(float64)) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, u.Timeout)
	defer cancel()

	tracker := newProgressTracker(doc.Size(), onProgress)
	reader := &progressReader{r: doc.Reader(), tracker: tracker}

	stallDone := make(chan struct{})
	defer close(stallDone)
	go u.watchStall(tracker, stallDone)

	result, err := u.Provider.UploadReader(uploadCtx, reader, key, doc.ContentType, doc.Size())
	if err != nil {
		if uploadCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w after %v", ErrUploadTimeout, u.Timeout)
		}
		return "", err
	}

	tracker.report(100)

	url := result.URL
	if url == "" {
		// No public URL configured, fall back to a long-lived signed URL
		signed, err := u.Provider.GetSignedURL(ctx, key, 7*24*time.Hour)
		if err != nil {
			return "", fmt.Errorf("failed to resolve uploaded URL: %w", err)
		}
		url = signed
	}
	return url, nil
}

// watchStall emits synthetic progress while the transfer is quiet
func (u *UploadService) watchStall(tracker *progressTracker, done <-chan struct{}) {
	ticker := time.NewTicker(u.StallTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			tracker.nudgeIfStalled(u.StallTimeout)
		}
	}
}

type progressTracker struct {
	mu         sync.Mutex
	total      int64
	read       int64
	pct        float64
	lastChange time.Time
	onProgress func(float64)
}

func newProgressTracker(total int64, onProgress func(float64)) *progressTracker {
	return &progressTracker{total: total, lastChange: time.Now(), onProgress: onProgress}
}

func (t *progressTracker) add(n int) {
	t.mu.Lock()
	t.read += int64(n)
	pct := 100.0
	if t.total > 0 {
		pct = float64(t.read) / float64(t.total) * 100
	}
	if pct > 100 {
		pct = 100
	}
	t.pct = pct
	t.lastChange = time.Now()
	callback := t.onProgress
	t.mu.Unlock()

	if callback != nil {
		callback(pct)
	}
}

func (t *progressTracker) report(pct float64) {
	t.mu.Lock()
	t.pct = pct
	t.lastChange = time.Now()
	callback := t.onProgress
	t.mu.Unlock()

	if callback != nil {
		callback(pct)
	}
}

// nudgeIfStalled reports a small synthetic increment when no real
// progress arrived within the stall window. Capped below 100 so the
// caller never sees a fake completion.
func (t *progressTracker) nudgeIfStalled(window time.Duration) {
	t.mu.Lock()
	if time.Since(t.lastChange) < window || t.pct >= 95 {
		t.mu.Unlock()
		return
	}
	t.pct++
	if t.pct > 95 {
		t.pct = 95
	}
	pct := t.pct
	t.lastChange = time.Now()
	callback := t.onProgress
	t.mu.Unlock()

	if callback != nil {
		callback(pct)
	}
}

type progressReader struct {
	r       io.Reader
	tracker *progressTracker
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.tracker.add(n)
	}
	return n, err
}
