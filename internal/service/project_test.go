package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/services"
)

type projectFixture struct {
	clock         *fakeClock
	projects      *fakeProjectRepo
	documents     *fakeDocumentRepo
	sessions      *fakeSessionRepo
	conversations *fakeConversationRepo
	uploads       *fakeUploadRepo
	invitations   *fakeInvitationRepo
	service       services.ProjectService
	sessionSvc    services.SessionService
}

func newProjectFixture() *projectFixture {
	clock := newFakeClock()
	projects := newFakeProjectRepo(clock)
	documents := newFakeDocumentRepo()
	sessions := newFakeSessionRepo(clock)
	conversations := newFakeConversationRepo(clock)
	uploads := newFakeUploadRepo()
	invitations := newFakeInvitationRepo()

	return &projectFixture{
		clock:         clock,
		projects:      projects,
		documents:     documents,
		sessions:      sessions,
		conversations: conversations,
		uploads:       uploads,
		invitations:   invitations,
		service: NewProjectService(
			projects, documents, sessions, conversations, uploads, invitations,
			&fakeTxManager{}, 5*time.Minute, testLogger(),
		),
		sessionSvc: NewSessionService(sessions, projects, 5*time.Minute, testLogger()),
	}
}

func TestEnsureProjectIdempotent(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()

	if err := f.service.EnsureProject(ctx, "alpha"); err != nil {
		t.Fatalf("EnsureProject failed: %v", err)
	}
	created, err := f.service.GetProject(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}

	if err := f.service.EnsureProject(ctx, "alpha"); err != nil {
		t.Fatalf("re-EnsureProject failed: %v", err)
	}
	again, _ := f.service.GetProject(ctx, "alpha")

	if !created.CreatedAt.Equal(again.CreatedAt) {
		t.Error("re-ensuring must not change created_at")
	}
}

func TestEnsureProjectValidation(t *testing.T) {
	f := newProjectFixture()

	if err := f.service.EnsureProject(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty id: got %v, want ErrValidation", err)
	}
}

func TestGetDocumentDefaultsToEmpty(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()

	if err := f.service.EnsureProject(ctx, "alpha"); err != nil {
		t.Fatalf("EnsureProject failed: %v", err)
	}
	doc, err := f.service.GetDocument(ctx, "alpha")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if doc != "" {
		t.Errorf("document = %q, want empty string for a project with no document", doc)
	}
}

func TestStatusReportsDocumentLength(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()

	_, _ = f.sessionSvc.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})
	if err := f.documents.Replace(ctx, "alpha", "twelve chars"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	status, err := f.service.Status(ctx, "alpha")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.DocumentLength != len("twelve chars") {
		t.Errorf("DocumentLength = %d, want %d", status.DocumentLength, len("twelve chars"))
	}
	if len(status.ActiveUsers) != 1 {
		t.Errorf("ActiveUsers = %d, want 1", len(status.ActiveUsers))
	}
	if status.LastActivity == nil {
		t.Error("LastActivity must be set for an existing project")
	}
}

func TestStatusUnknownProject(t *testing.T) {
	f := newProjectFixture()

	_, err := f.service.Status(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestListProjectsCountsActiveUsers(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()

	_, _ = f.sessionSvc.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})
	_, _ = f.sessionSvc.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Bob"})
	_, _ = f.sessionSvc.Join(ctx, &services.JoinRequest{ProjectID: "beta", UserName: "Carol"})

	summaries, err := f.service.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	counts := make(map[string]int)
	for _, summary := range summaries {
		counts[summary.ID] = summary.ActiveUsers
	}
	if counts["alpha"] != 2 || counts["beta"] != 1 {
		t.Errorf("counts = %v, want alpha:2 beta:1", counts)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newProjectFixture()
	ctx := context.Background()

	session, _ := f.sessionSvc.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})

	convID := ConversationID("alpha", session.ID)
	if err := f.conversations.Ensure(ctx, convID, "alpha", &session.ID); err != nil {
		t.Fatalf("Ensure conversation failed: %v", err)
	}
	if err := f.conversations.AppendMessage(ctx, convID, models.RoleUser, "hello"); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if err := f.documents.Replace(ctx, "alpha", "# Plan"); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if err := f.uploads.Create(ctx, &models.Upload{ID: "u1", ProjectID: "alpha", Filename: "notes.txt", Content: "notes"}); err != nil {
		t.Fatalf("upload Create failed: %v", err)
	}
	if err := f.invitations.Create(ctx, &models.Invitation{ID: "i1", Token: "tok", ProjectID: "alpha", Email: "x@example.com", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("invitation Create failed: %v", err)
	}

	if err := f.service.DeleteProject(ctx, "alpha"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	if exists, _ := f.projects.Exists(ctx, "alpha"); exists {
		t.Error("project record survived deletion")
	}
	if _, err := f.sessions.Get(ctx, session.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("session survived deletion")
	}
	if _, err := f.conversations.Get(ctx, convID); !errors.Is(err, domain.ErrNotFound) {
		t.Error("conversation survived deletion")
	}
	if doc, _ := f.documents.Get(ctx, "alpha"); doc != "" {
		t.Error("document survived deletion")
	}
	if _, err := f.uploads.Get(ctx, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("upload survived deletion")
	}
	if _, err := f.invitations.GetByToken(ctx, "tok"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("invitation survived deletion")
	}
}

func TestDeleteProjectAbsent(t *testing.T) {
	f := newProjectFixture()

	err := f.service.DeleteProject(context.Background(), "never-existed")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
