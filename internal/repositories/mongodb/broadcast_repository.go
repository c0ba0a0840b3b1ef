package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.BroadcastRepository = (*BroadcastRepository)(nil)

// BroadcastRepository handles MongoDB operations for broadcasts
type BroadcastRepository struct {
	collection *mongo.Collection
}

// NewBroadcastRepository creates a new BroadcastRepository
func NewBroadcastRepository(db *mongo.Database) *BroadcastRepository {
	return &BroadcastRepository{
		collection: db.Collection("broadcasts"),
	}
}

// Create inserts a new broadcast at version 1
func (r *BroadcastRepository) Create(ctx context.Context, broadcast *models.Broadcast) error {
	broadcast.ID = primitive.NewObjectID()
	broadcast.CreatedAt = time.Now()
	broadcast.UpdatedAt = broadcast.CreatedAt
	broadcast.Version = 1
	_, err := r.collection.InsertOne(ctx, broadcast)
	return apperrors.NewStore("broadcasts.create", err)
}

// FindByID finds a broadcast by ID
func (r *BroadcastRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Broadcast, error) {
	var broadcast models.Broadcast
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&broadcast)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("broadcast", id.Hex())
	}
	if err != nil {
		return nil, apperrors.NewStore("broadcasts.findById", err)
	}
	return &broadcast, nil
}

// FindByIDs returns the broadcasts among ids that exist
func (r *BroadcastRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Broadcast, error) {
	if len(ids) == 0 {
		return []*models.Broadcast{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// Find lists broadcasts matching filter, newest first
func (r *BroadcastRepository) Find(ctx context.Context, filter models.BroadcastFilter, page, limit int) ([]*models.Broadcast, error) {
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, broadcastFilterDoc(filter), opts)
}

// Update writes content, targeting and scheduling fields guarded by version and editable status
func (r *BroadcastRepository) Update(ctx context.Context, broadcast *models.Broadcast, expectedVersion int64) error {
	now := time.Now()
	filter := bson.M{
		"_id":     broadcast.ID,
		"version": expectedVersion,
		"status":  bson.M{"$in": bson.A{models.BroadcastStatusDraft, models.BroadcastStatusScheduled}},
	}
	set := bson.M{
		"title":           broadcast.Title,
		"subject":         broadcast.Subject,
		"bodyHtml":        broadcast.BodyHTML,
		"bodySms":         broadcast.BodySMS,
		"videoUrl":        broadcast.VideoURL,
		"linkUrl":         broadcast.LinkURL,
		"linkText":        broadcast.LinkText,
		"targetRoles":     broadcast.TargetRoles,
		"targetLocations": broadcast.TargetLocations,
		"targetUserIds":   broadcast.TargetUserIDs,
		"userSelection":   broadcast.UserSelection,
		"channels":        broadcast.Channels,
		"status":          broadcast.Status,
		"updatedAt":       now,
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if broadcast.ScheduledAt != nil {
		set["scheduledAt"] = broadcast.ScheduledAt
	} else {
		update["$unset"] = bson.M{"scheduledAt": ""}
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return apperrors.NewStore("broadcasts.update", err)
	}
	if res.MatchedCount == 0 {
		current, err := r.FindByID(ctx, broadcast.ID)
		if err != nil {
			return err
		}
		if !current.IsEditable() {
			return apperrors.NewInvalidState(current.ID.Hex(), string(current.Status), "edit", nil)
		}
		return apperrors.ErrConflict
	}
	broadcast.Version = expectedVersion + 1
	broadcast.UpdatedAt = now
	return nil
}

// DeleteDraft deletes a broadcast that is still a draft
func (r *BroadcastRepository) DeleteDraft(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "status": models.BroadcastStatusDraft})
	if err != nil {
		return apperrors.NewStore("broadcasts.delete", err)
	}
	if res.DeletedCount == 0 {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		return apperrors.NewInvalidState(id.Hex(), string(current.Status), "delete", nil)
	}
	return nil
}

// TransitionStatus is the compare-and-set on status used by dispatch
func (r *BroadcastRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []models.BroadcastStatus, to models.BroadcastStatus, patch repositories.StatusPatch) (*models.Broadcast, error) {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	if patch.SendingStartedAt != nil {
		set["sendingStartedAt"] = patch.SendingStartedAt
	}
	if patch.SentAt != nil {
		set["sentAt"] = patch.SentAt
	}
	if patch.Stats != nil {
		set["stats"] = patch.Stats
	}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	if patch.ClearSendingStartedAt {
		update["$unset"] = bson.M{"sendingStartedAt": ""}
	}

	filter := bson.M{"_id": id, "status": bson.M{"$in": from}}
	switch {
	case patch.IfSendingStartedAt != nil:
		filter["sendingStartedAt"] = patch.IfSendingStartedAt
	case patch.IfNoSendingStartedAt:
		// matches a missing field as well as null
		filter["sendingStartedAt"] = nil
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Broadcast
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return nil, ferr
		}
		return nil, apperrors.ErrConflict
	}
	if err != nil {
		return nil, apperrors.NewStore("broadcasts.transitionStatus", err)
	}
	return &updated, nil
}

// FindDue lists scheduled broadcasts whose time has come
func (r *BroadcastRepository) FindDue(ctx context.Context, now time.Time) ([]*models.Broadcast, error) {
	filter := bson.M{
		"status":      models.BroadcastStatusScheduled,
		"scheduledAt": bson.M{"$lte": now},
	}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}}))
}

// FindStaleSending lists broadcasts stuck in sending since before startedBefore
func (r *BroadcastRepository) FindStaleSending(ctx context.Context, startedBefore time.Time) ([]*models.Broadcast, error) {
	filter := bson.M{
		"status": models.BroadcastStatusSending,
		"$or": bson.A{
			bson.M{"sendingStartedAt": bson.M{"$lt": startedBefore}},
			bson.M{"sendingStartedAt": nil},
		},
	}
	return r.find(ctx, filter, options.Find())
}

// Count counts broadcasts matching filter
func (r *BroadcastRepository) Count(ctx context.Context, filter models.BroadcastFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, broadcastFilterDoc(filter))
	return n, apperrors.NewStore("broadcasts.count", err)
}

func (r *BroadcastRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*models.Broadcast, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.NewStore("broadcasts.find", err)
	}
	defer cursor.Close(ctx)

	var broadcasts []*models.Broadcast
	if err = cursor.All(ctx, &broadcasts); err != nil {
		return nil, apperrors.NewStore("broadcasts.find", err)
	}
	if broadcasts == nil {
		broadcasts = []*models.Broadcast{}
	}
	return broadcasts, nil
}
