package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"planner/internal/domain"
	"planner/internal/domain/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionFixture struct {
	clock    *fakeClock
	projects *fakeProjectRepo
	sessions *fakeSessionRepo
	service  services.SessionService
}

func newSessionFixture() *sessionFixture {
	clock := newFakeClock()
	projects := newFakeProjectRepo(clock)
	sessions := newFakeSessionRepo(clock)
	return &sessionFixture{
		clock:    clock,
		projects: projects,
		sessions: sessions,
		service:  NewSessionService(sessions, projects, 5*time.Minute, testLogger()),
	}
}

func TestJoinCreatesProjectAndSession(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if session.ID == "" {
		t.Error("expected a generated session id")
	}
	if session.ProjectID != "alpha" {
		t.Errorf("bound to project %q, want alpha", session.ProjectID)
	}
	if !session.IsActive {
		t.Error("joined session should be active")
	}

	exists, _ := f.projects.Exists(ctx, "alpha")
	if !exists {
		t.Error("join should lazily create the project")
	}
}

func TestJoinIsIdempotentForProject(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	first, err := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})
	if err != nil {
		t.Fatalf("first Join failed: %v", err)
	}
	created, _ := f.projects.Get(ctx, "alpha")

	if _, err := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Bob"}); err != nil {
		t.Fatalf("second Join failed: %v", err)
	}
	again, _ := f.projects.Get(ctx, "alpha")

	if !created.CreatedAt.Equal(again.CreatedAt) {
		t.Error("re-ensuring a project must not change created_at")
	}
	if first.ID == "" {
		t.Error("expected session id")
	}
}

func TestRejoinRebindsExistingSession(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, err := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})
	if err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	if _, err := f.service.Leave(ctx, session.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	rebound, err := f.service.Join(ctx, &services.JoinRequest{SessionID: session.ID, ProjectID: "beta"})
	if err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}

	if rebound.ID != session.ID {
		t.Errorf("rejoin created session %q, want reuse of %q", rebound.ID, session.ID)
	}
	if rebound.ProjectID != "beta" {
		t.Errorf("rejoin bound to %q, want beta", rebound.ProjectID)
	}
	if !rebound.IsActive {
		t.Error("rejoin must reactivate the session")
	}
	if rebound.DisplayName() != "Alice" {
		t.Errorf("rejoin without a name must keep the stored name, got %q", rebound.DisplayName())
	}

	// The old project must no longer list the session
	alphaUsers, _ := f.service.ActiveUsers(ctx, "alpha", false)
	if len(alphaUsers) != 0 {
		t.Errorf("project alpha still lists %d active users after rebind", len(alphaUsers))
	}
	betaUsers, _ := f.service.ActiveUsers(ctx, "beta", false)
	if len(betaUsers) != 1 {
		t.Fatalf("project beta lists %d active users, want 1", len(betaUsers))
	}
}

func TestJoinRejectsInvalidRequests(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  services.JoinRequest
	}{
		{name: "missing project id", req: services.JoinRequest{UserName: "Alice"}},
		{name: "oversized project id", req: services.JoinRequest{ProjectID: string(make([]byte, 300))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Join(ctx, &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

func TestLeaveAbsentSessionIsNoop(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	left, err := f.service.Leave(ctx, "never-joined")
	if err != nil {
		t.Fatalf("Leave returned error for absent session: %v", err)
	}
	if left {
		t.Error("leave of an absent session must report false")
	}

	left, err = f.service.Leave(ctx, "")
	if err != nil || left {
		t.Errorf("leave with empty id = (%v, %v), want (false, nil)", left, err)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	session, _ := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha"})

	first, err := f.service.Leave(ctx, session.ID)
	if err != nil || !first {
		t.Fatalf("first Leave = (%v, %v), want (true, nil)", first, err)
	}
	second, err := f.service.Leave(ctx, session.ID)
	if err != nil || second {
		t.Errorf("second Leave = (%v, %v), want (false, nil)", second, err)
	}
}

func TestActiveUsersFreshnessWindow(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	stale, _ := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Stale"})
	_ = stale

	// Advance the clock past the freshness window, then join someone new
	for i := 0; i < 400; i++ {
		f.clock.next()
	}
	if _, err := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Fresh"}); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	all, err := f.service.ActiveUsers(ctx, "alpha", false)
	if err != nil {
		t.Fatalf("ActiveUsers failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered listing has %d sessions, want 2", len(all))
	}

	fresh, err := f.service.ActiveUsers(ctx, "alpha", true)
	if err != nil {
		t.Fatalf("ActiveUsers(fresh) failed: %v", err)
	}
	if len(fresh) != 1 || fresh[0].DisplayName() != "Fresh" {
		t.Errorf("fresh listing = %+v, want only Fresh", fresh)
	}
}

func TestReconcileDuplicateSessions(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()

	old, _ := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})
	newer, _ := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha", UserName: "Alice"})
	nameless, _ := f.service.Join(ctx, &services.JoinRequest{ProjectID: "alpha"})

	deactivated, err := f.service.ReconcileDuplicateSessions(ctx, "alpha")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if deactivated != 2 {
		t.Errorf("deactivated %d sessions, want 2", deactivated)
	}

	users, _ := f.service.ActiveUsers(ctx, "alpha", false)
	if len(users) != 1 || users[0].ID != newer.ID {
		t.Errorf("surviving sessions = %+v, want only the newest Alice (%s)", users, newer.ID)
	}

	// Idempotent: a second run finds nothing to do
	again, err := f.service.ReconcileDuplicateSessions(ctx, "alpha")
	if err != nil || again != 0 {
		t.Errorf("second Reconcile = (%d, %v), want (0, nil)", again, err)
	}

	_ = old
	_ = nameless
}
