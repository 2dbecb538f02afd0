package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/device"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// fakeUserRepo interprets the specifications it understands and ignores the
// rest, which is enough for the service-level flows under test.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		copied := *u
		r.users[u.Id] = &copied
	}
	return r
}

func matchesSpecs(u *entity.User, specs []specification.Specification) bool {
	for _, s := range specs {
		switch sp := s.(type) {
		case specification.ByID:
			if u.Id != sp.ID {
				return false
			}
		case specification.ByEmail:
			if u.Email != sp.Email {
				return false
			}
		}
	}
	return true
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.Id] = &copied
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	return r.Create(ctx, user)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if matchesSpecs(u, specs) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if matchesSpecs(u, specs) {
			copied := *u
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func TestExportDataIncludesAllSessions(t *testing.T) {
	user := &entity.User{Id: uuid.New(), Email: testUser, Name: "Alice"}
	userRepo := newFakeUserRepo(user)
	chatRepo := newFakeChatRepo()

	trashedAt := time.Now().UTC().Format(time.RFC3339)
	if err := chatRepo.Save(context.Background(), testUser, &entity.ChatSession{
		Id:    "1",
		Title: "שיחה פעילה",
		Date:  time.Now().UTC().Format(time.RFC3339),
		Messages: []entity.Message{
			{Role: "user", Text: "שלום", Timestamp: trashedAt},
		},
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := chatRepo.Save(context.Background(), testUser, &entity.ChatSession{
		Id:        "2",
		Title:     "שיחה באשפה",
		Date:      time.Now().UTC().Format(time.RFC3339),
		DeletedAt: &trashedAt,
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	svc := NewUserService(userRepo, chatRepo, device.NewSessionStore(""), nil)

	resp, err := svc.ExportData(context.Background(), user.Id)
	if err != nil {
		t.Fatalf("ExportData failed: %v", err)
	}
	if resp.User.Email != testUser || resp.User.Name != "Alice" {
		t.Errorf("exported user = %+v", resp.User)
	}
	if _, err := time.Parse(time.RFC3339, resp.ExportedAt); err != nil {
		t.Errorf("exported_at %q is not RFC3339: %v", resp.ExportedAt, err)
	}
	if len(resp.Sessions) != 2 {
		t.Fatalf("exported sessions = %d, want active and trashed", len(resp.Sessions))
	}
	trashed := 0
	for _, s := range resp.Sessions {
		if s.DeletedAt != nil {
			trashed++
		}
	}
	if trashed != 1 {
		t.Errorf("trashed sessions in export = %d, want 1", trashed)
	}
}

func TestExportDataUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), newFakeChatRepo(), device.NewSessionStore(""), nil)

	if _, err := svc.ExportData(context.Background(), uuid.New()); err == nil {
		t.Fatal("ExportData succeeded for an unknown user")
	}
}

func TestDeleteAccountRemovesEverything(t *testing.T) {
	user := &entity.User{Id: uuid.New(), Email: testUser, Name: "Alice"}
	userRepo := newFakeUserRepo(user)
	chatRepo := newFakeChatRepo()
	devices := device.NewSessionStore("")

	if err := chatRepo.Save(context.Background(), testUser, &entity.ChatSession{Id: "1", Title: "שיחה"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := devices.CreateSession(testUser, "Alice"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	svc := NewUserService(userRepo, chatRepo, devices, nil)
	if err := svc.DeleteAccount(context.Background(), user.Id); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	if remaining, _ := userRepo.FindOne(context.Background(), specification.ByID{ID: user.Id}); remaining != nil {
		t.Error("user row survived DeleteAccount")
	}
	if sessions, _ := chatRepo.FetchAll(context.Background(), testUser); len(sessions) != 0 {
		t.Error("chat sessions survived DeleteAccount")
	}
	if _, ok := devices.GetSession(); ok {
		t.Error("device session survived DeleteAccount")
	}
}
