package implementation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ai-assistant-be/internal/docstore"
	"ai-assistant-be/internal/entity"
)

func newTestRepo() (*docstore.MemoryStore, *ChatRepositoryImpl) {
	store := docstore.NewMemoryStore()
	repo := NewChatRepository(store).(*ChatRepositoryImpl)
	return store, repo
}

func testSession(id string) *entity.ChatSession {
	return &entity.ChatSession{
		Id:    id,
		Title: "שיחה חדשה",
		Date:  time.Now().UTC().Format(time.RFC3339),
		Messages: []entity.Message{
			{Role: "user", Text: "שלום", Timestamp: time.Now().UTC().Format(time.RFC3339)},
		},
	}
}

func TestSaveAndFindOne(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestRepo()

	session := testSession("100")
	if err := repo.Save(ctx, "alice@example.com", session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.FindOne(ctx, "alice@example.com", "100")
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if got == nil {
		t.Fatal("FindOne returned nil for saved session")
	}
	if got.Title != session.Title || len(got.Messages) != 1 {
		t.Errorf("roundtrip mismatch: got %+v", got)
	}

	missing, err := repo.FindOne(ctx, "alice@example.com", "does-not-exist")
	if err != nil {
		t.Fatalf("FindOne on missing id errored: %v", err)
	}
	if missing != nil {
		t.Errorf("FindOne on missing id = %+v, want nil", missing)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestRepo()

	session := testSession("100")
	for i := 0; i < 3; i++ {
		if err := repo.Save(ctx, "alice@example.com", session); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	all, err := repo.FetchAll(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("session count = %d, want 1", len(all))
	}
}

func TestTrashRestoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestRepo()

	session := testSession("100")
	if err := repo.Save(ctx, "alice@example.com", session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := repo.MoveToTrash(ctx, "alice@example.com", "100"); err != nil {
		t.Fatalf("MoveToTrash failed: %v", err)
	}
	got, _ := repo.FindOne(ctx, "alice@example.com", "100")
	if !got.IsTrashed() {
		t.Fatal("session not trashed after MoveToTrash")
	}
	// Soft delete must keep the conversation intact.
	if len(got.Messages) != 1 || got.Title != session.Title {
		t.Errorf("trash mutated session content: %+v", got)
	}

	if err := repo.Restore(ctx, "alice@example.com", "100"); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got, _ = repo.FindOne(ctx, "alice@example.com", "100")
	if got.IsTrashed() {
		t.Error("session still trashed after Restore")
	}
	if len(got.Messages) != 1 {
		t.Errorf("restore lost messages: %+v", got)
	}
}

func TestFetchAllOrdersByDateDesc(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestRepo()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		session := testSession(fmt.Sprintf("%d", 100+i))
		session.Date = base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339)
		if err := repo.Save(ctx, "alice@example.com", session); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	all, err := repo.FetchAll(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("session count = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Date < all[i].Date {
			t.Errorf("sessions out of order: %s before %s", all[i-1].Date, all[i].Date)
		}
	}
}

func TestEmptyTrashChunksCommits(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestRepo()

	tests := []struct {
		name        string
		trashed     int
		kept        int
		wantDeleted int
		wantCommits int
	}{
		{name: "empty trash is a no-op", trashed: 0, kept: 2, wantDeleted: 0, wantCommits: 0},
		{name: "900 trashed sessions take two batches", trashed: 900, kept: 3, wantDeleted: 900, wantCommits: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := fmt.Sprintf("user-%d@example.com", tt.trashed)
			deletedAt := time.Now().UTC().Format(time.RFC3339)
			for i := 0; i < tt.trashed; i++ {
				s := testSession(fmt.Sprintf("t%d", i))
				s.DeletedAt = &deletedAt
				if err := repo.Save(ctx, user, s); err != nil {
					t.Fatalf("Save failed: %v", err)
				}
			}
			for i := 0; i < tt.kept; i++ {
				if err := repo.Save(ctx, user, testSession(fmt.Sprintf("k%d", i))); err != nil {
					t.Fatalf("Save failed: %v", err)
				}
			}

			store.CommitCount = 0
			deleted, err := repo.EmptyTrash(ctx, user)
			if err != nil {
				t.Fatalf("EmptyTrash failed: %v", err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("deleted = %d, want %d", deleted, tt.wantDeleted)
			}
			if store.CommitCount != tt.wantCommits {
				t.Errorf("batch commits = %d, want %d", store.CommitCount, tt.wantCommits)
			}

			remaining, _ := repo.FetchAll(ctx, user)
			if len(remaining) != tt.kept {
				t.Errorf("remaining sessions = %d, want %d", len(remaining), tt.kept)
			}
		})
	}
}

func TestSweepExpiredTrash(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestRepo()

	expired := time.Now().Add(-31 * 24 * time.Hour).UTC().Format(time.RFC3339)
	recent := time.Now().Add(-2 * 24 * time.Hour).UTC().Format(time.RFC3339)

	old := testSession("old")
	old.DeletedAt = &expired
	fresh := testSession("fresh")
	fresh.DeletedAt = &recent
	active := testSession("active")

	for _, s := range []*entity.ChatSession{old, fresh, active} {
		if err := repo.Save(ctx, "alice@example.com", s); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	swept, err := repo.SweepExpiredTrash(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("SweepExpiredTrash failed: %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}

	all, _ := repo.FetchAll(ctx, "alice@example.com")
	if len(all) != 2 {
		t.Fatalf("remaining = %d, want 2", len(all))
	}
	for _, s := range all {
		if s.Id == "old" {
			t.Error("expired session survived the sweep")
		}
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestRepo()

	if err := repo.Save(ctx, "alice@example.com", testSession("100")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var deliveries [][]*entity.ChatSession
	unsubscribe, err := repo.Subscribe(ctx, "alice@example.com", func(sessions []*entity.ChatSession) {
		deliveries = append(deliveries, sessions)
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer unsubscribe()

	if len(deliveries) != 1 || len(deliveries[0]) != 1 {
		t.Fatalf("initial delivery = %v, want one snapshot with one session", deliveries)
	}

	if err := repo.Save(ctx, "alice@example.com", testSession("200")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(deliveries) != 2 || len(deliveries[1]) != 2 {
		t.Fatalf("delivery after save = %v, want second snapshot with two sessions", deliveries)
	}
}

func TestSubscribeErrorDeliversEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestRepo()

	store.FailQuery = true
	var deliveries [][]*entity.ChatSession
	unsubscribe, err := repo.Subscribe(ctx, "alice@example.com", func(sessions []*entity.ChatSession) {
		deliveries = append(deliveries, sessions)
	})
	if err != nil {
		t.Fatalf("Subscribe returned error, want silent empty delivery: %v", err)
	}
	defer unsubscribe()

	if len(deliveries) != 1 || len(deliveries[0]) != 0 {
		t.Fatalf("deliveries = %v, want one empty snapshot", deliveries)
	}
}

func TestSubscribeSetupFailureIsNoop(t *testing.T) {
	ctx := context.Background()
	store, repo := newTestRepo()

	store.FailSubscribe = true
	var deliveries int
	unsubscribe, err := repo.Subscribe(ctx, "alice@example.com", func(sessions []*entity.ChatSession) {
		deliveries++
		if len(sessions) != 0 {
			t.Errorf("delivery = %v, want empty", sessions)
		}
	})
	if err != nil {
		t.Fatalf("Subscribe returned error, want no-op unsubscribe: %v", err)
	}
	if deliveries != 1 {
		t.Errorf("deliveries = %d, want 1", deliveries)
	}
	unsubscribe()
}
