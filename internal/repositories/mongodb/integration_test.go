package mongodb

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	mongoclient "github.com/ArowuTest/hostboard-backend/pkg/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// testDB connects to MONGODB_URI and returns a throwaway database, skipping
// the test when no server is configured.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := mongoclient.NewClient(ctx, uri, 5*time.Second)
	require.NoError(t, err)

	db := client.Database("hostboard_test_" + primitive.NewObjectID().Hex())
	require.NoError(t, mongoclient.EnsureIndexes(ctx, db))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func sendingBroadcast(t *testing.T, repo *BroadcastRepository, startedAt *time.Time) *models.Broadcast {
	t.Helper()
	b := &models.Broadcast{Title: "T", Status: models.BroadcastStatusDraft, Channels: models.Channels{Email: true}}
	require.NoError(t, repo.Create(context.Background(), b))
	if startedAt != nil {
		_, err := repo.TransitionStatus(context.Background(), b.ID,
			[]models.BroadcastStatus{models.BroadcastStatusDraft},
			models.BroadcastStatusSending,
			repositories.StatusPatch{SendingStartedAt: startedAt},
		)
		require.NoError(t, err)
	}
	return b
}

func TestTransitionStatusIsCompareAndSet(t *testing.T) {
	repo := NewBroadcastRepository(testDB(t))
	ctx := context.Background()
	b := &models.Broadcast{Title: "T", Status: models.BroadcastStatusDraft, Channels: models.Channels{Email: true}}
	require.NoError(t, repo.Create(ctx, b))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			now := time.Now().UTC()
			_, err := repo.TransitionStatus(ctx, b.ID,
				[]models.BroadcastStatus{models.BroadcastStatusDraft, models.BroadcastStatusScheduled},
				models.BroadcastStatusSending,
				repositories.StatusPatch{SendingStartedAt: &now},
			)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrConflict)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BroadcastStatusSending, got.Status)
	assert.EqualValues(t, 2, got.Version)
}

func TestTransitionStatusGuardsOnSendingStartedAt(t *testing.T) {
	repo := NewBroadcastRepository(testDB(t))
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Millisecond).Add(-time.Hour)
	b := sendingBroadcast(t, repo, &started)
	sending := []models.BroadcastStatus{models.BroadcastStatusSending}

	other := started.Add(time.Minute)
	_, err := repo.TransitionStatus(ctx, b.ID, sending, models.BroadcastStatusSending,
		repositories.StatusPatch{IfSendingStartedAt: &other})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = repo.TransitionStatus(ctx, b.ID, sending, models.BroadcastStatusSending,
		repositories.StatusPatch{IfNoSendingStartedAt: true})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	reclaimed := time.Now().UTC().Truncate(time.Millisecond)
	got, err := repo.TransitionStatus(ctx, b.ID, sending, models.BroadcastStatusSending,
		repositories.StatusPatch{SendingStartedAt: &reclaimed, IfSendingStartedAt: &started})
	require.NoError(t, err)
	require.NotNil(t, got.SendingStartedAt)
	assert.True(t, reclaimed.Equal(*got.SendingStartedAt))
}

func TestTransitionStatusClaimsRunWithoutStartTime(t *testing.T) {
	db := testDB(t)
	repo := NewBroadcastRepository(db)
	ctx := context.Background()
	b := sendingBroadcast(t, repo, nil)
	_, err := db.Collection("broadcasts").UpdateOne(ctx, bson.M{"_id": b.ID}, bson.M{"$set": bson.M{"status": models.BroadcastStatusSending}})
	require.NoError(t, err)

	stale, err := repo.FindStaleSending(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, stale, 1)

	now := time.Now().UTC()
	sending := []models.BroadcastStatus{models.BroadcastStatusSending}
	_, err = repo.TransitionStatus(ctx, b.ID, sending, models.BroadcastStatusSending,
		repositories.StatusPatch{SendingStartedAt: &now, IfNoSendingStartedAt: true})
	require.NoError(t, err)

	_, err = repo.TransitionStatus(ctx, b.ID, sending, models.BroadcastStatusSending,
		repositories.StatusPatch{SendingStartedAt: &now, IfNoSendingStartedAt: true})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestDeliveryUpsertKeepsReadAt(t *testing.T) {
	repo := NewDeliveryRepository(testDB(t))
	ctx := context.Background()
	bID, uID := primitive.NewObjectID(), primitive.NewObjectID()

	require.NoError(t, repo.Upsert(ctx, &models.Delivery{BroadcastID: bID, UserID: uID,
		Email: &models.ChannelOutcome{Status: models.OutcomeFailed, Error: "timeout"}}))
	readAt := time.Now().UTC().Truncate(time.Millisecond)
	changed, err := repo.MarkRead(ctx, bID, uID, readAt)
	require.NoError(t, err)
	assert.True(t, changed)

	require.NoError(t, repo.Upsert(ctx, &models.Delivery{BroadcastID: bID, UserID: uID,
		Email: &models.ChannelOutcome{Status: models.OutcomeSent}}))

	n, err := repo.CountByBroadcast(ctx, bID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	d, err := repo.FindByBroadcastAndUser(ctx, bID, uID)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSent, d.Email.Status)
	require.NotNil(t, d.ReadAt)
	assert.True(t, readAt.Equal(*d.ReadAt))
}

func TestDeliveryMarkReadOnlyOnce(t *testing.T) {
	repo := NewDeliveryRepository(testDB(t))
	ctx := context.Background()
	bID, uID := primitive.NewObjectID(), primitive.NewObjectID()
	require.NoError(t, repo.Upsert(ctx, &models.Delivery{BroadcastID: bID, UserID: uID,
		Email: &models.ChannelOutcome{Status: models.OutcomeSent}}))

	t1 := time.Now().UTC().Truncate(time.Millisecond)
	changed, err := repo.MarkRead(ctx, bID, uID, t1)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkRead(ctx, bID, uID, t1.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	d, err := repo.FindByBroadcastAndUser(ctx, bID, uID)
	require.NoError(t, err)
	assert.True(t, t1.Equal(*d.ReadAt))

	_, err = repo.MarkRead(ctx, bID, primitive.NewObjectID(), t1)
	var nf *apperrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
