package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/testutil"
)

func strPtr(s string) *string { return &s }

func seedUser(t *testing.T, store *Store, id string) User {
	t.Helper()
	u, err := store.UpsertUser(context.Background(), User{
		ID:        id,
		Email:     strPtr(id + "@example.com"),
		FirstName: strPtr("Test"),
	})
	require.NoError(t, err)
	return u
}

func TestStore_Users_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := New(testutil.SetupTestDB(t), log.NewNop())

	created := seedUser(t, store, "auth0|alice")
	assert.Equal(t, "auth0|alice", created.ID)
	require.NotNil(t, created.Email)

	// Upsert with new claims updates in place.
	updated, err := store.UpsertUser(ctx, User{
		ID:       "auth0|alice",
		Email:    strPtr("alice@newdomain.com"),
		LastName: strPtr("Nguyen"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@newdomain.com", *updated.Email)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := store.GetUser(ctx, "auth0|alice")
	require.NoError(t, err)
	require.NotNil(t, got.LastName)
	assert.Equal(t, "Nguyen", *got.LastName)

	_, err = store.GetUser(ctx, "auth0|nobody")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Cases_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := New(testutil.SetupTestDB(t), log.NewNop())
	user := seedUser(t, store, "auth0|bob")

	created, err := store.CreateCase(ctx, CreateCaseParams{
		UserID:        user.ID,
		CaseType:      "h1b",
		ReceiptNumber: strPtr("WAC2190012345"),
		Title:         "H-1B transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", created.Status, "status should default to pending")
	assert.Zero(t, created.Progress)

	newStatus := "in_review"
	newProgress := 40
	updated, err := store.UpdateCase(ctx, created.ID, UpdateCaseParams{
		Status:   &newStatus,
		Progress: &newProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, "in_review", updated.Status)
	assert.Equal(t, 40, updated.Progress)
	assert.Equal(t, "H-1B transfer", updated.Title, "untouched fields keep their value")
	require.NotNil(t, updated.ReceiptNumber)

	cases, err := store.ListCases(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cases, 1)

	_, err = store.UpdateCase(ctx, "00000000-0000-0000-0000-000000000000", UpdateCaseParams{Status: &newStatus})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteCase(ctx, created.ID))
	cases, err = store.ListCases(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, cases)
}

func TestStore_ConversationsAndMessages_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := New(testutil.SetupTestDB(t), log.NewNop())
	user := seedUser(t, store, "auth0|carol")

	conv, err := store.CreateConversation(ctx, user.ID, strPtr("OPT questions"))
	require.NoError(t, err)

	got, err := store.GetConversation(ctx, conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Title)
	assert.Equal(t, "OPT questions", *got.Title)

	_, err = store.GetConversation(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, ErrNotFound)

	userMsg, err := store.CreateMessage(ctx, CreateMessageParams{
		ConversationID: conv.ID,
		Role:           "user",
		Content:        "When can I apply for OPT?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, userMsg.ID)
	assert.Nil(t, userMsg.Sources)

	sources := json.RawMessage(`[{"title":"USCIS","url":"https://uscis.gov","excerpt":"OPT timing..."}]`)
	assistantMsg, err := store.CreateMessage(ctx, CreateMessageParams{
		ConversationID: conv.ID,
		Role:           "assistant",
		Content:        "You can apply up to 90 days before program completion.",
		Sources:        sources,
	})
	require.NoError(t, err)
	assert.JSONEq(t, string(sources), string(assistantMsg.Sources))

	msgs, err := store.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role, "messages should come back in chronological order")
	assert.Equal(t, "assistant", msgs[1].Role)

	convs, err := store.ListConversations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
}

func TestStore_SavedQueries_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := New(testutil.SetupTestDB(t), log.NewNop())
	user := seedUser(t, store, "auth0|dave")

	q, err := store.CreateSavedQuery(ctx, CreateSavedQueryParams{
		UserID:   user.ID,
		Title:    "H-1B cap",
		Query:    "What is the H-1B cap?",
		Response: strPtr("65,000 plus 20,000 for advanced degrees."),
		Tags:     []string{"h1b", "cap"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"h1b", "cap"}, q.Tags)

	queries, err := store.ListSavedQueries(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, queries, 1)

	require.NoError(t, store.DeleteSavedQuery(ctx, q.ID))
	queries, err = store.ListSavedQueries(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, queries)
}

func TestStore_AlertSubscriptions_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := New(testutil.SetupTestDB(t), log.NewNop())
	user := seedUser(t, store, "auth0|erin")

	sub, err := store.CreateAlertSubscription(ctx, user.ID, AlertVisaBulletin, true)
	require.NoError(t, err)
	assert.True(t, sub.IsActive)

	inactive := false
	updated, err := store.UpdateAlertSubscription(ctx, sub.ID, UpdateAlertSubscriptionParams{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, AlertVisaBulletin, updated.AlertType)

	subs, err := store.ListAlertSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)

	require.NoError(t, store.DeleteAlertSubscription(ctx, sub.ID))
	subs, err = store.ListAlertSubscriptions(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestStore_PolicyUpdates_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	store := New(testutil.SetupTestDB(t), log.NewNop())

	older, err := store.CreatePolicyUpdate(ctx, CreatePolicyUpdateParams{
		Title:       "Fee schedule change",
		Summary:     "USCIS adjusted filing fees.",
		Source:      "USCIS",
		Category:    "fees",
		PublishedAt: time.Now().Add(-48 * time.Hour),
	})
	require.NoError(t, err)

	newer, err := store.CreatePolicyUpdate(ctx, CreatePolicyUpdateParams{
		Title:       "Visa bulletin released",
		Summary:     "Priority dates advanced for EB-2.",
		Source:      "Department of State",
		SourceURL:   strPtr("https://travel.state.gov"),
		Category:    "visa_bulletin",
		PublishedAt: time.Now(),
	})
	require.NoError(t, err)

	updates, err := store.RecentPolicyUpdates(ctx, 10)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, newer.ID, updates[0].ID, "newest update should come first")
	assert.Equal(t, older.ID, updates[1].ID)

	limited, err := store.RecentPolicyUpdates(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
