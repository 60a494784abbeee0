package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
	"planner/internal/domain/services"
)

// In-memory fakes for the repository and collaborator interfaces. They
// mirror the contracts of the postgres implementations closely enough
// that service behavior under test matches production behavior: ordered
// listings, upsert-rebind sessions, atomic-looking appends, single-use
// mark-used.

// fakeClock hands out strictly increasing timestamps so ordering
// assertions are deterministic.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	clock    *fakeClock
	projects map[string]*models.Project
}

func newFakeProjectRepo(clock *fakeClock) *fakeProjectRepo {
	return &fakeProjectRepo{clock: clock, projects: make(map[string]*models.Project)}
}

func (r *fakeProjectRepo) Ensure(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[projectID]; ok {
		return nil
	}
	now := r.clock.next()
	r.projects[projectID] = &models.Project{ID: projectID, CreatedAt: now, UpdatedAt: now}
	return nil
}

func (r *fakeProjectRepo) Get(ctx context.Context, projectID string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	copied := *project
	return &copied, nil
}

func (r *fakeProjectRepo) Touch(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project, ok := r.projects[projectID]; ok {
		project.UpdatedAt = r.clock.next()
	}
	return nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[projectID]; !ok {
		return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}
	delete(r.projects, projectID)
	return nil
}

func (r *fakeProjectRepo) Exists(ctx context.Context, projectID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.projects[projectID]
	return ok, nil
}

func (r *fakeProjectRepo) List(ctx context.Context) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Project, 0, len(r.projects))
	for _, project := range r.projects {
		out = append(out, *project)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

type fakeDocumentRepo struct {
	mu         sync.Mutex
	documents  map[string]string
	replaceErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: make(map[string]string)}
}

func (r *fakeDocumentRepo) Get(ctx context.Context, projectID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.documents[projectID], nil
}

func (r *fakeDocumentRepo) Replace(ctx context.Context, projectID, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.documents[projectID] = content
	return nil
}

func (r *fakeDocumentRepo) DeleteByProject(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.documents, projectID)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	clock    *fakeClock
	sessions map[string]*models.Session
}

func newFakeSessionRepo(clock *fakeClock) *fakeSessionRepo {
	return &fakeSessionRepo{clock: clock, sessions: make(map[string]*models.Session)}
}

func (r *fakeSessionRepo) Upsert(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.next()
	if existing, ok := r.sessions[session.ID]; ok {
		existing.ProjectID = session.ProjectID
		existing.IsActive = true
		existing.LastActivity = now
		if session.UserName != nil {
			existing.UserName = session.UserName
		}
		*session = *existing
		return nil
	}
	stored := &models.Session{
		ID:           session.ID,
		ProjectID:    session.ProjectID,
		UserName:     session.UserName,
		JoinedAt:     now,
		LastActivity: now,
		IsActive:     true,
	}
	r.sessions[session.ID] = stored
	*session = *stored
	return nil
}

func (r *fakeSessionRepo) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) TouchActivity(ctx context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || !session.IsActive {
		return false, nil
	}
	session.LastActivity = r.clock.next()
	return true, nil
}

func (r *fakeSessionRepo) Deactivate(ctx context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || !session.IsActive {
		return false, nil
	}
	session.IsActive = false
	return true, nil
}

func (r *fakeSessionRepo) ActiveByProject(ctx context.Context, projectID string, freshness time.Duration) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Time{}
	if freshness > 0 {
		cutoff = r.clock.now().Add(-freshness)
	}
	out := make([]models.Session, 0)
	for _, session := range r.sessions {
		if session.ProjectID != projectID || !session.IsActive {
			continue
		}
		if freshness > 0 && !session.LastActivity.After(cutoff) {
			continue
		}
		out = append(out, *session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *fakeSessionRepo) CountActiveByProject(ctx context.Context, projectID string, freshness time.Duration) (int, error) {
	active, err := r.ActiveByProject(ctx, projectID, freshness)
	if err != nil {
		return 0, err
	}
	return len(active), nil
}

func (r *fakeSessionRepo) DeactivateDuplicates(ctx context.Context, projectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	newest := make(map[string]*models.Session)
	for _, session := range r.sessions {
		if session.ProjectID != projectID || !session.IsActive {
			continue
		}
		name := strings.TrimSpace(session.DisplayName())
		if name == "" {
			continue
		}
		if keep, ok := newest[name]; !ok || session.JoinedAt.After(keep.JoinedAt) {
			newest[name] = session
		}
	}
	keepIDs := make(map[string]bool)
	for _, session := range newest {
		keepIDs[session.ID] = true
	}
	deactivated := 0
	for _, session := range r.sessions {
		if session.ProjectID != projectID || !session.IsActive {
			continue
		}
		if !keepIDs[session.ID] {
			session.IsActive = false
			deactivated++
		}
	}
	return deactivated, nil
}

func (r *fakeSessionRepo) DeleteByProject(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.ProjectID == projectID {
			delete(r.sessions, id)
		}
	}
	return nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	clock         *fakeClock
	conversations map[string]*models.Conversation
	appendErr     error
}

func newFakeConversationRepo(clock *fakeClock) *fakeConversationRepo {
	return &fakeConversationRepo{clock: clock, conversations: make(map[string]*models.Conversation)}
}

func (r *fakeConversationRepo) Ensure(ctx context.Context, conversationID, projectID string, sessionID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conversations[conversationID]; ok {
		return nil
	}
	r.conversations[conversationID] = &models.Conversation{
		ID:        conversationID,
		ProjectID: projectID,
		SessionID: sessionID,
		Messages:  []models.Message{},
		CreatedAt: r.clock.next(),
		IsActive:  true,
	}
	return nil
}

func (r *fakeConversationRepo) Get(ctx context.Context, conversationID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[conversationID]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	copied := *conversation
	copied.Messages = append([]models.Message{}, conversation.Messages...)
	return &copied, nil
}

func (r *fakeConversationRepo) AppendMessage(ctx context.Context, conversationID string, role models.Role, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	if !role.Valid() {
		return fmt.Errorf("invalid role %q: %w", role, domain.ErrValidation)
	}
	conversation, ok := r.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	conversation.Messages = append(conversation.Messages, models.Message{
		Role:      role,
		Content:   content,
		Timestamp: r.clock.next(),
	})
	return nil
}

func (r *fakeConversationRepo) ByProject(ctx context.Context, projectID string) ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Conversation, 0)
	for _, conversation := range r.conversations {
		if conversation.ProjectID != projectID {
			continue
		}
		copied := *conversation
		copied.Messages = append([]models.Message{}, conversation.Messages...)
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeConversationRepo) ClearMessages(ctx context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}
	conversation.Messages = []models.Message{}
	return nil
}

func (r *fakeConversationRepo) DeleteByProject(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, conversation := range r.conversations {
		if conversation.ProjectID == projectID {
			delete(r.conversations, id)
		}
	}
	return nil
}

type fakeUploadRepo struct {
	mu      sync.Mutex
	uploads map[string]*models.Upload
	order   []string
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: make(map[string]*models.Upload)}
}

func (r *fakeUploadRepo) Create(ctx context.Context, upload *models.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *upload
	if stored.UploadedAt.IsZero() {
		stored.UploadedAt = time.Now().UTC()
	}
	r.uploads[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	upload.UploadedAt = stored.UploadedAt
	return nil
}

func (r *fakeUploadRepo) Get(ctx context.Context, uploadID string) (*models.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	upload, ok := r.uploads[uploadID]
	if !ok {
		return nil, fmt.Errorf("upload %s: %w", uploadID, domain.ErrNotFound)
	}
	copied := *upload
	return &copied, nil
}

func (r *fakeUploadRepo) ByProject(ctx context.Context, projectID string, previewChars int) ([]models.UploadSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.UploadSummary, 0)
	// Newest first
	for i := len(r.order) - 1; i >= 0; i-- {
		upload, ok := r.uploads[r.order[i]]
		if !ok || upload.ProjectID != projectID {
			continue
		}
		preview := upload.Content
		if len(preview) > previewChars {
			preview = preview[:previewChars]
		}
		out = append(out, models.UploadSummary{
			ID:          upload.ID,
			ProjectID:   upload.ProjectID,
			Filename:    upload.Filename,
			Preview:     preview,
			ByteSize:    upload.ByteSize,
			ContentType: upload.ContentType,
			UploadedBy:  upload.UploadedBy,
			UploadedAt:  upload.UploadedAt,
		})
	}
	return out, nil
}

func (r *fakeUploadRepo) Delete(ctx context.Context, uploadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.uploads[uploadID]; !ok {
		return fmt.Errorf("upload %s: %w", uploadID, domain.ErrNotFound)
	}
	delete(r.uploads, uploadID)
	return nil
}

func (r *fakeUploadRepo) DeleteByProject(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, upload := range r.uploads {
		if upload.ProjectID == projectID {
			delete(r.uploads, id)
		}
	}
	return nil
}

type fakeInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*models.Invitation
	byToken     map[string]string
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{
		invitations: make(map[string]*models.Invitation),
		byToken:     make(map[string]string),
	}
}

func (r *fakeInvitationRepo) Create(ctx context.Context, invitation *models.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *invitation
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.invitations[stored.ID] = &stored
	r.byToken[stored.Token] = stored.ID
	invitation.CreatedAt = stored.CreatedAt
	return nil
}

func (r *fakeInvitationRepo) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byToken[token]
	if !ok {
		return nil, fmt.Errorf("invitation: %w", domain.ErrNotFound)
	}
	copied := *r.invitations[id]
	return &copied, nil
}

func (r *fakeInvitationRepo) MarkUsed(ctx context.Context, invitationID string, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	invitation, ok := r.invitations[invitationID]
	if !ok || invitation.IsUsed {
		return fmt.Errorf("invitation %s: %w", invitationID, domain.ErrNotFound)
	}
	invitation.IsUsed = true
	invitation.UsedAt = &usedAt
	return nil
}

func (r *fakeInvitationRepo) DeleteByProject(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, invitation := range r.invitations {
		if invitation.ProjectID == projectID {
			delete(r.byToken, invitation.Token)
			delete(r.invitations, id)
		}
	}
	return nil
}

// fakeTxManager runs the function directly. Rollback semantics are
// exercised against a real database, not here; these tests care about
// ordering and error propagation.
type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

type fakeEngine struct {
	respond func(ctx context.Context, req *services.EngineRequest) (*services.EngineReply, error)
}

func (e *fakeEngine) Respond(ctx context.Context, req *services.EngineRequest) (*services.EngineReply, error) {
	if e.respond != nil {
		return e.respond(ctx, req)
	}
	return &services.EngineReply{Response: "noted: " + req.Message}, nil
}

type sentMail struct {
	To      string
	Subject string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (n *fakeNotifier) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{To: to, Subject: subject})
	return nil
}

type fakeExtractor struct {
	err error
}

func (e *fakeExtractor) Extract(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return string(data), nil
}
