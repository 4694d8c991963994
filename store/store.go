package store

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"despacho_app_go/models"
	"despacho_app_go/services"
)

// ErrNotFound is the failure indicator for operations that target a
// case, task, image or promotion id that is not in the tree. The tree is
// left untouched when it is returned.
var ErrNotFound = errors.New("entity not found")

const remoteOpTimeout = 15 * time.Second

// SnapshotStore persists the full document tree. Save is best-effort;
// the store logs failures and keeps serving the in-memory tree.
type SnapshotStore interface {
	Load() (*models.DocumentTree, bool, error)
	Save(*models.DocumentTree) error
}

// Uploader stores a captured document in the blob store and returns its
// URL. Implementations enforce the upload timeout and report progress.
type Uploader interface {
	Upload(ctx context.Context, doc services.Document, key string, onProgress func(float64)) (string, error)
}

// PromotionFeed is the realtime push channel for the promotions
// collection.
type PromotionFeed interface {
	Subscribe(ctx context.Context, onSnapshot func([]models.Promotion))
}

// Store owns the in-memory document tree. Every mutation runs a
// synchronous phase under the lock (apply, persist locally, notify) and
// mirrors to the remote store from a goroutine afterwards; remote
// failures never roll back the local state.
type Store struct {
	mu   sync.Mutex
	tree *models.DocumentTree

	local   SnapshotStore
	remote  services.RemoteStore
	uploads Uploader
	oracle  services.DocumentClassifier
	feed    PromotionFeed
	bus     *Bus

	inlineFallbackMax int64
}

// Options carries the store's collaborators. Remote, Uploads and Feed
// may be nil: the store then runs local-only and logs that mirroring is
// disabled.
type Options struct {
	Local             SnapshotStore
	Remote            services.RemoteStore
	Uploads           Uploader
	Oracle            services.DocumentClassifier
	Feed              PromotionFeed
	InlineFallbackMax int64
}

// New loads the persisted tree, or builds the default jurisdiction
// skeleton when nothing was persisted yet. It does not touch the remote
// store; call Start for that.
func New(opts Options) (*Store, error) {
	tree, found, err := opts.Local.Load()
	if err != nil {
		return nil, err
	}
	if !found {
		tree = models.NewDocumentTree()
		log.Println("No local snapshot found, starting with default jurisdiction tree")
	}

	if opts.Remote == nil {
		log.Println("[INFO] Remote store not configured, running local-only")
	}

	return &Store{
		tree:              tree,
		local:             opts.Local,
		remote:            opts.Remote,
		uploads:           opts.Uploads,
		oracle:            opts.Oracle,
		feed:              opts.Feed,
		bus:               NewBus(),
		inlineFallbackMax: opts.InlineFallbackMax,
	}, nil
}

// Start kicks off the one-shot remote reconciliation and the standing
// promotions subscription. Neither blocks; initial rendering proceeds
// from the local tree.
func (s *Store) Start(ctx context.Context) {
	go func() {
		if err := s.SyncRemote(ctx); err != nil {
			log.Printf("[WARNING] Startup sync failed: %v", err)
		}
	}()

	if s.feed != nil {
		s.feed.Subscribe(ctx, s.ApplyPromotionsSnapshot)
	}
}

// Subscribe registers a change listener; returns its unsubscribe func
func (s *Store) Subscribe(fn func(Event)) func() {
	return s.bus.Subscribe(fn)
}

// persistLocked saves the tree to the local store. Must be called with
// the lock held. Persistence failures are logged, not propagated: the
// in-memory tree stays authoritative for the session.
func (s *Store) persistLocked() {
	if err := s.local.Save(s.tree); err != nil {
		log.Printf("[WARNING] Failed to persist local snapshot: %v", err)
	}
}

// mirror runs a remote write in the background, logging failures
func (s *Store) mirror(op string, fn func(ctx context.Context) error) {
	if s.remote == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteOpTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("[WARNING] Remote %s failed: %v", op, err)
		}
	}()
}

// --- Queries ---
// All queries operate on current in-memory state, have no side effects,
// and return nil/empty on miss.

// GetStates returns the jurisdiction tree
func (s *Store) GetStates() []models.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	states := make([]models.State, 0, len(s.tree.States))
	for _, st := range s.tree.States {
		states = append(states, st.Clone())
	}
	return states
}

// GetState returns a state by id, or nil
func (s *Store) GetState(id string) *models.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.tree.States {
		if st.ID == id {
			clone := st.Clone()
			return &clone
		}
	}
	return nil
}

// GetSubject searches all states for a subject by id, or nil
func (s *Store) GetSubject(id string) *models.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, subject := s.findSubjectLocked(id); subject != nil {
		clone := subject.Clone()
		return &clone
	}
	return nil
}

// GetCase returns a case by id, or nil
func (s *Store) GetCase(id string) *models.Case {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Cases[id].Clone()
}

// GetCases returns all cases as a list
func (s *Store) GetCases() []*models.Case {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases := make([]*models.Case, 0, len(s.tree.Cases))
	for _, c := range s.tree.Cases {
		cases = append(cases, c.Clone())
	}
	return cases
}

// GetPromotions returns the current staging list. Order follows the last
// remote snapshot (dateAdded descending) with local-only inserts
// prepended.
func (s *Store) GetPromotions() []models.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()

	promotions := make([]models.Promotion, 0, len(s.tree.Promotions))
	for _, p := range s.tree.Promotions {
		promotions = append(promotions, p.Clone())
	}
	return promotions
}

// GetGeneralEvents returns the standalone calendar entries
func (s *Store) GetGeneralEvents() []models.GeneralEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]models.GeneralEvent, 0, len(s.tree.GeneralEvents))
	for _, e := range s.tree.GeneralEvents {
		events = append(events, e.Clone())
	}
	return events
}

// GetDashboardTasks returns the free-floating tasks
func (s *Store) GetDashboardTasks() []models.DashboardTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.DashboardTask{}, s.tree.DashboardTasks...)
}

// findSubjectLocked returns the owning state and subject for an id.
// Must be called with the lock held.
func (s *Store) findSubjectLocked(id string) (*models.State, *models.Subject) {
	for si := range s.tree.States {
		for sj := range s.tree.States[si].Subjects {
			if s.tree.States[si].Subjects[sj].ID == id {
				return &s.tree.States[si], &s.tree.States[si].Subjects[sj]
			}
		}
	}
	return nil, nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}
