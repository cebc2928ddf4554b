package api

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/surya16122114/immigration-ai-assistant/internal/assistant"
	"github.com/surya16122114/immigration-ai-assistant/internal/rag"
	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

// fakeStore is an in-memory Storage implementation for handler tests.
type fakeStore struct {
	users         map[string]storage.User
	cases         map[string]storage.Case
	conversations map[string]storage.Conversation
	messages      map[string][]storage.Message
	savedQueries  map[string]storage.SavedQuery
	subscriptions map[string]storage.AlertSubscription
	policyUpdates []storage.PolicyUpdate

	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]storage.User),
		cases:         make(map[string]storage.Case),
		conversations: make(map[string]storage.Conversation),
		messages:      make(map[string][]storage.Message),
		savedQueries:  make(map[string]storage.SavedQuery),
		subscriptions: make(map[string]storage.AlertSubscription),
	}
}

func (f *fakeStore) UpsertUser(_ context.Context, user storage.User) (storage.User, error) {
	if f.failWith != nil {
		return storage.User{}, f.failWith
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (storage.User, error) {
	if f.failWith != nil {
		return storage.User{}, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return storage.User{}, fmt.Errorf("user %q: %w", id, storage.ErrNotFound)
	}
	return u, nil
}

func (f *fakeStore) ListCases(_ context.Context, userID string) ([]storage.Case, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.Case
	for _, c := range f.cases {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeStore) CreateCase(_ context.Context, params storage.CreateCaseParams) (storage.Case, error) {
	if f.failWith != nil {
		return storage.Case{}, f.failWith
	}
	status := params.Status
	if status == "" {
		status = "pending"
	}
	now := time.Now()
	c := storage.Case{
		ID:                 uuid.NewString(),
		UserID:             params.UserID,
		CaseType:           params.CaseType,
		ReceiptNumber:      params.ReceiptNumber,
		Status:             status,
		Progress:           params.Progress,
		ExpectedCompletion: params.ExpectedCompletion,
		Title:              params.Title,
		Description:        params.Description,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	f.cases[c.ID] = c
	return c, nil
}

func (f *fakeStore) UpdateCase(_ context.Context, id string, params storage.UpdateCaseParams) (storage.Case, error) {
	if f.failWith != nil {
		return storage.Case{}, f.failWith
	}
	c, ok := f.cases[id]
	if !ok {
		return storage.Case{}, fmt.Errorf("case %q: %w", id, storage.ErrNotFound)
	}
	if params.CaseType != nil {
		c.CaseType = *params.CaseType
	}
	if params.Status != nil {
		c.Status = *params.Status
	}
	if params.Progress != nil {
		c.Progress = *params.Progress
	}
	if params.Title != nil {
		c.Title = *params.Title
	}
	c.UpdatedAt = time.Now()
	f.cases[id] = c
	return c, nil
}

func (f *fakeStore) DeleteCase(_ context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.cases, id)
	return nil
}

func (f *fakeStore) ListConversations(_ context.Context, userID string) ([]storage.Conversation, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.Conversation
	for _, c := range f.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateConversation(_ context.Context, userID string, title *string) (storage.Conversation, error) {
	if f.failWith != nil {
		return storage.Conversation{}, f.failWith
	}
	now := time.Now()
	c := storage.Conversation{ID: uuid.NewString(), UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	f.conversations[c.ID] = c
	return c, nil
}

func (f *fakeStore) GetConversation(_ context.Context, id string) (storage.Conversation, error) {
	if f.failWith != nil {
		return storage.Conversation{}, f.failWith
	}
	c, ok := f.conversations[id]
	if !ok {
		return storage.Conversation{}, fmt.Errorf("conversation %q: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

func (f *fakeStore) ListMessages(_ context.Context, conversationID string) ([]storage.Message, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.messages[conversationID], nil
}

func (f *fakeStore) CreateMessage(_ context.Context, params storage.CreateMessageParams) (storage.Message, error) {
	if f.failWith != nil {
		return storage.Message{}, f.failWith
	}
	m := storage.Message{
		ID:             uuid.NewString(),
		ConversationID: params.ConversationID,
		Role:           params.Role,
		Content:        params.Content,
		Sources:        params.Sources,
		CreatedAt:      time.Now(),
	}
	f.messages[params.ConversationID] = append(f.messages[params.ConversationID], m)
	return m, nil
}

func (f *fakeStore) ListSavedQueries(_ context.Context, userID string) ([]storage.SavedQuery, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.SavedQuery
	for _, q := range f.savedQueries {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateSavedQuery(_ context.Context, params storage.CreateSavedQueryParams) (storage.SavedQuery, error) {
	if f.failWith != nil {
		return storage.SavedQuery{}, f.failWith
	}
	q := storage.SavedQuery{
		ID:        uuid.NewString(),
		UserID:    params.UserID,
		Title:     params.Title,
		Query:     params.Query,
		Response:  params.Response,
		Tags:      params.Tags,
		CreatedAt: time.Now(),
	}
	f.savedQueries[q.ID] = q
	return q, nil
}

func (f *fakeStore) DeleteSavedQuery(_ context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.savedQueries, id)
	return nil
}

func (f *fakeStore) ListAlertSubscriptions(_ context.Context, userID string) ([]storage.AlertSubscription, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var out []storage.AlertSubscription
	for _, s := range f.subscriptions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAlertSubscription(_ context.Context, userID, alertType string, isActive bool) (storage.AlertSubscription, error) {
	if f.failWith != nil {
		return storage.AlertSubscription{}, f.failWith
	}
	now := time.Now()
	s := storage.AlertSubscription{
		ID:        uuid.NewString(),
		UserID:    userID,
		AlertType: alertType,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.subscriptions[s.ID] = s
	return s, nil
}

func (f *fakeStore) UpdateAlertSubscription(_ context.Context, id string, params storage.UpdateAlertSubscriptionParams) (storage.AlertSubscription, error) {
	if f.failWith != nil {
		return storage.AlertSubscription{}, f.failWith
	}
	s, ok := f.subscriptions[id]
	if !ok {
		return storage.AlertSubscription{}, fmt.Errorf("subscription %q: %w", id, storage.ErrNotFound)
	}
	if params.AlertType != nil {
		s.AlertType = *params.AlertType
	}
	if params.IsActive != nil {
		s.IsActive = *params.IsActive
	}
	s.UpdatedAt = time.Now()
	f.subscriptions[id] = s
	return s, nil
}

func (f *fakeStore) DeleteAlertSubscription(_ context.Context, id string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.subscriptions, id)
	return nil
}

func (f *fakeStore) RecentPolicyUpdates(_ context.Context, limit int) ([]storage.PolicyUpdate, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if limit <= 0 {
		limit = storage.DefaultPolicyUpdateLimit
	}
	out := append([]storage.PolicyUpdate(nil), f.policyUpdates...)
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) CreatePolicyUpdate(_ context.Context, params storage.CreatePolicyUpdateParams) (storage.PolicyUpdate, error) {
	if f.failWith != nil {
		return storage.PolicyUpdate{}, f.failWith
	}
	u := storage.PolicyUpdate{
		ID:          uuid.NewString(),
		Title:       params.Title,
		Summary:     params.Summary,
		Content:     params.Content,
		Source:      params.Source,
		SourceURL:   params.SourceURL,
		Category:    params.Category,
		PublishedAt: params.PublishedAt,
		CreatedAt:   time.Now(),
	}
	f.policyUpdates = append(f.policyUpdates, u)
	return u, nil
}

func (f *fakeStore) ActiveSubscriberEmails(_ context.Context, alertType string) ([]string, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	var emails []string
	for _, s := range f.subscriptions {
		if s.AlertType != alertType || !s.IsActive {
			continue
		}
		if u, ok := f.users[s.UserID]; ok && u.Email != nil {
			emails = append(emails, *u.Email)
		}
	}
	sort.Strings(emails)
	return emails, nil
}

// stubRetriever returns fixed context chunks.
type stubRetriever struct {
	docs []rag.ContextChunk
	err  error
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, _ int) ([]rag.ContextChunk, error) {
	return s.docs, s.err
}

// stubAnswerer returns a fixed response.
type stubAnswerer struct {
	resp assistant.Response
	err  error
}

func (s *stubAnswerer) Answer(_ context.Context, _ string, _ []rag.ContextChunk) (assistant.Response, error) {
	return s.resp, s.err
}

// stubAlerts records sent alerts.
type stubAlerts struct {
	sent     []string
	notified []string
	err      error
}

func (s *stubAlerts) SendAlert(_ context.Context, to, subject, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to+":"+subject)
	return nil
}

func (s *stubAlerts) SendPolicyChangeNotification(_ context.Context, to string, _ storage.PolicyUpdate) error {
	if s.err != nil {
		return s.err
	}
	s.notified = append(s.notified, to)
	return nil
}
