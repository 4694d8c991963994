package store

import (
	"context"
	"testing"

	"despacho_app_go/models"
	"despacho_app_go/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRemoteCase(t *testing.T, remote *fakeRemote, doc remoteCaseDoc) {
	t.Helper()
	require.NoError(t, remote.Set(context.Background(), services.CollectionCases, doc.ID, doc))
}

func TestSyncRemote(t *testing.T) {
	t.Run("RemoteWinsForKnownCases", func(t *testing.T) {
		local := &memSnapshot{}
		tree := models.NewDocumentTree()
		tree.Cases["case-1"] = &models.Case{ID: "case-1", Actor: "Viejo", Title: "Viejo vs B", Status: models.CaseStatusNuevo}
		require.NoError(t, local.Save(tree))

		s, remote, _ := newTestStore(t, Options{Local: local})
		seedRemoteCase(t, remote, remoteCaseDoc{Case: models.Case{
			ID: "case-1", Actor: "Nuevo", Title: "Nuevo vs B", Status: models.CaseStatusEnTramite,
		}})

		require.NoError(t, s.SyncRemote(context.Background()))

		c := s.GetCase("case-1")
		assert.Equal(t, "Nuevo", c.Actor)
		assert.Equal(t, models.CaseStatusEnTramite, c.Status)
	})

	t.Run("LocalOnlyCasesSurvive", func(t *testing.T) {
		s, remote, _ := newTestStore(t, Options{})
		created, err := s.AddCase("cdmx-fam", CaseInput{Actor: "Solo", Demandado: "Local"})
		require.NoError(t, err)
		remote.waitForCall(t, "set", services.CollectionCases, created.ID)

		// Wipe the remote copy so the case is strictly local
		require.NoError(t, remote.Delete(context.Background(), services.CollectionCases, created.ID))
		seedRemoteCase(t, remote, remoteCaseDoc{Case: models.Case{ID: "case-r", Title: "Remoto vs X"}})

		require.NoError(t, s.SyncRemote(context.Background()))

		assert.NotNil(t, s.GetCase(created.ID))
		assert.NotNil(t, s.GetCase("case-r"))
	})

	t.Run("UnknownCaseAttachesToSubject", func(t *testing.T) {
		s, remote, _ := newTestStore(t, Options{})
		seedRemoteCase(t, remote, remoteCaseDoc{
			Case:      models.Case{ID: "case-r", Title: "Remoto vs X"},
			SubjectID: "jal-mer",
		})

		require.NoError(t, s.SyncRemote(context.Background()))

		subject := s.GetSubject("jal-mer")
		assert.Contains(t, subject.Cases, "case-r")
	})

	t.Run("UnknownSubjectLeavesCaseUnattached", func(t *testing.T) {
		s, remote, _ := newTestStore(t, Options{})
		seedRemoteCase(t, remote, remoteCaseDoc{
			Case:      models.Case{ID: "case-r", Title: "Remoto vs X"},
			SubjectID: "zzz-xyz",
		})

		require.NoError(t, s.SyncRemote(context.Background()))
		assert.NotNil(t, s.GetCase("case-r"))
	})

	t.Run("DashboardTasksReplacedWholesale", func(t *testing.T) {
		local := &memSnapshot{}
		tree := models.NewDocumentTree()
		tree.DashboardTasks = []models.DashboardTask{{ID: "old", Title: "Vieja", Date: "2026-01-01"}}
		require.NoError(t, local.Save(tree))

		s, remote, _ := newTestStore(t, Options{Local: local})
		require.NoError(t, remote.Set(context.Background(), services.CollectionTasks, "dt-2",
			models.DashboardTask{ID: "dt-2", Title: "Segunda", Date: "2026-09-02"}))
		require.NoError(t, remote.Set(context.Background(), services.CollectionTasks, "dt-1",
			models.DashboardTask{ID: "dt-1", Title: "Primera", Date: "2026-09-01"}))

		require.NoError(t, s.SyncRemote(context.Background()))

		tasks := s.GetDashboardTasks()
		require.Len(t, tasks, 2)
		assert.Equal(t, "dt-1", tasks[0].ID)
		assert.Equal(t, "dt-2", tasks[1].ID)
	})

	t.Run("MalformedDocsSkipped", func(t *testing.T) {
		s, remote, _ := newTestStore(t, Options{})
		remote.mu.Lock()
		remote.collection(services.CollectionCases)["bad"] = []byte("{not json")
		remote.mu.Unlock()
		seedRemoteCase(t, remote, remoteCaseDoc{Case: models.Case{ID: "good", Title: "G vs H"}})

		require.NoError(t, s.SyncRemote(context.Background()))
		assert.Nil(t, s.GetCase("bad"))
		assert.NotNil(t, s.GetCase("good"))
	})

	t.Run("NilRemoteIsNoOp", func(t *testing.T) {
		s, err := New(Options{Local: &memSnapshot{}})
		require.NoError(t, err)
		assert.NoError(t, s.SyncRemote(context.Background()))
	})
}

func TestApplyPromotionsSnapshot(t *testing.T) {
	s, _, local := newTestStore(t, Options{})

	snapshot := []models.Promotion{
		{ID: "p-old", Name: "viejo.pdf", DateAdded: "2026-08-01", Status: models.PromotionStatusReady},
		{ID: "p-new", Name: "nuevo.pdf", DateAdded: "2026-08-29", Status: models.PromotionStatusAnalyzing},
	}
	s.ApplyPromotionsSnapshot(snapshot)

	promotions := s.GetPromotions()
	require.Len(t, promotions, 2)
	assert.Equal(t, "p-new", promotions[0].ID)
	assert.Equal(t, "p-old", promotions[1].ID)
	assert.Len(t, local.saved().Promotions, 2)

	t.Run("ReplacesExistingList", func(t *testing.T) {
		s.ApplyPromotionsSnapshot([]models.Promotion{{ID: "p-only", DateAdded: "2026-08-15"}})
		got := s.GetPromotions()
		require.Len(t, got, 1)
		assert.Equal(t, "p-only", got[0].ID)
	})

	t.Run("EmptySnapshotClears", func(t *testing.T) {
		s.ApplyPromotionsSnapshot(nil)
		assert.Empty(t, s.GetPromotions())
	})
}

func TestPushDashboardTask(t *testing.T) {
	s, remote, _ := newTestStore(t, Options{})

	task := s.PushDashboardTask(models.DashboardTask{Title: "Suelta", Date: "2026-09-01", Urgent: true})
	assert.NotEmpty(t, task.ID)

	tasks := s.GetDashboardTasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)

	remote.waitForCall(t, "set", services.CollectionTasks, task.ID)

	t.Run("KeepsProvidedID", func(t *testing.T) {
		got := s.PushDashboardTask(models.DashboardTask{ID: "dt-fixed", Title: "Con id", Date: "2026-09-02"})
		assert.Equal(t, "dt-fixed", got.ID)
	})
}
