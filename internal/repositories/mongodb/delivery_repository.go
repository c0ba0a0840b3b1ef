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

var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

// DeliveryRepository handles MongoDB operations for deliveries
type DeliveryRepository struct {
	collection *mongo.Collection
}

// NewDeliveryRepository creates a new DeliveryRepository
func NewDeliveryRepository(db *mongo.Database) *DeliveryRepository {
	return &DeliveryRepository{
		collection: db.Collection("deliveries"),
	}
}

// Upsert writes the channel outcomes of one (broadcast, user) pair. readAt and
// createdAt are only written on insert, so a re-run never resets read state.
func (r *DeliveryRepository) Upsert(ctx context.Context, delivery *models.Delivery) error {
	now := time.Now()
	filter := bson.M{"broadcastId": delivery.BroadcastID, "userId": delivery.UserID}

	set := bson.M{"updatedAt": now}
	if delivery.Slack != nil {
		set["slack"] = delivery.Slack
	}
	if delivery.Email != nil {
		set["email"] = delivery.Email
	}
	if delivery.SMS != nil {
		set["sms"] = delivery.SMS
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"createdAt": now,
			"readAt":    nil,
		},
	}
	opts := options.Update().SetUpsert(true)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Two concurrent upserts raced on insert; the loser now matches the winner's document.
		res, err = r.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return apperrors.NewStore("deliveries.upsert", err)
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		delivery.ID = id
		delivery.CreatedAt = now
	}
	delivery.UpdatedAt = now
	return nil
}

// FindByBroadcastAndUser finds the delivery of one broadcast to one host
func (r *DeliveryRepository) FindByBroadcastAndUser(ctx context.Context, broadcastID, userID primitive.ObjectID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.collection.FindOne(ctx, bson.M{"broadcastId": broadcastID, "userId": userID}).Decode(&delivery)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("delivery", broadcastID.Hex()+"/"+userID.Hex())
	}
	if err != nil {
		return nil, apperrors.NewStore("deliveries.findByBroadcastAndUser", err)
	}
	return &delivery, nil
}

// FindByUser lists every delivery addressed to a host
func (r *DeliveryRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Delivery, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

// FindByBroadcast lists the deliveries of one broadcast with pagination
func (r *DeliveryRepository) FindByBroadcast(ctx context.Context, broadcastID primitive.ObjectID, page, limit int) ([]*models.Delivery, error) {
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{"broadcastId": broadcastID}, opts)
}

// MarkRead sets readAt when it is still null
func (r *DeliveryRepository) MarkRead(ctx context.Context, broadcastID, userID primitive.ObjectID, at time.Time) (bool, error) {
	filter := bson.M{"broadcastId": broadcastID, "userId": userID, "readAt": nil}
	update := bson.M{"$set": bson.M{"readAt": at, "updatedAt": at}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, apperrors.NewStore("deliveries.markRead", err)
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}
	// Nothing matched: either already read or no such delivery.
	if _, err := r.FindByBroadcastAndUser(ctx, broadcastID, userID); err != nil {
		return false, err
	}
	return false, nil
}

// CountByBroadcast counts the deliveries of one broadcast
func (r *DeliveryRepository) CountByBroadcast(ctx context.Context, broadcastID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"broadcastId": broadcastID})
	return n, apperrors.NewStore("deliveries.count", err)
}

func (r *DeliveryRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*models.Delivery, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.NewStore("deliveries.find", err)
	}
	defer cursor.Close(ctx)

	var deliveries []*models.Delivery
	if err = cursor.All(ctx, &deliveries); err != nil {
		return nil, apperrors.NewStore("deliveries.find", err)
	}
	if deliveries == nil {
		deliveries = []*models.Delivery{}
	}
	return deliveries, nil
}
