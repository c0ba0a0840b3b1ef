package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure HostRepository implements the interface
var _ repositories.HostRepository = (*HostRepository)(nil)

// HostRepository handles MongoDB operations for the host directory
type HostRepository struct {
	collection *mongo.Collection
}

// NewHostRepository creates a new HostRepository
func NewHostRepository(db *mongo.Database) *HostRepository {
	return &HostRepository{
		collection: db.Collection("hosts"),
	}
}

// Create inserts a new host
func (r *HostRepository) Create(ctx context.Context, host *models.Host) error {
	host.ID = primitive.NewObjectID()
	host.Email = strings.ToLower(strings.TrimSpace(host.Email))
	host.CreatedAt = time.Now()
	host.UpdatedAt = host.CreatedAt
	_, err := r.collection.InsertOne(ctx, host)
	return apperrors.NewStore("hosts.create", err)
}

// FindByID finds a host by ID
func (r *HostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Host, error) {
	var host models.Host
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&host)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("host", id.Hex())
	}
	if err != nil {
		return nil, apperrors.NewStore("hosts.findById", err)
	}
	return &host, nil
}

// FindByIDs returns the hosts among ids that exist; missing ids are dropped
func (r *HostRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Host, error) {
	if len(ids) == 0 {
		return []*models.Host{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// FindByAuthID finds the host linked to an identity provider subject
func (r *HostRepository) FindByAuthID(ctx context.Context, authID string) (*models.Host, error) {
	var host models.Host
	err := r.collection.FindOne(ctx, bson.M{"authId": authID}).Decode(&host)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("host", authID)
	}
	if err != nil {
		return nil, apperrors.NewStore("hosts.findByAuthId", err)
	}
	return &host, nil
}

// Find lists hosts matching filter, ordered by last then first name
func (r *HostRepository) Find(ctx context.Context, filter models.HostFilter, page, limit int) ([]*models.Host, error) {
	opts := pageOptions(page, limit).SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})
	return r.find(ctx, hostFilterDoc(filter), opts)
}

// UpsertByEmail inserts the host or refreshes the directory fields of the host with the same email
func (r *HostRepository) UpsertByEmail(ctx context.Context, host *models.Host) (bool, error) {
	now := time.Now()
	host.Email = strings.ToLower(strings.TrimSpace(host.Email))
	if host.Email == "" {
		return false, apperrors.NewValidation("email", "is required")
	}

	update := bson.M{
		"$set": bson.M{
			"firstName": host.FirstName,
			"lastName":  host.LastName,
			"phone":     host.Phone,
			"slackId":   host.SlackID,
			"role":      host.Role,
			"location":  host.Location,
			"active":    host.Active,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"email":     host.Email,
			"createdAt": now,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"email": host.Email}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, apperrors.NewStore("hosts.upsertByEmail", err)
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		host.ID = id
	}
	return res.UpsertedCount > 0, nil
}

// Count counts hosts matching filter
func (r *HostRepository) Count(ctx context.Context, filter models.HostFilter) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, hostFilterDoc(filter))
	return n, apperrors.NewStore("hosts.count", err)
}

func (r *HostRepository) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*models.Host, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.NewStore("hosts.find", err)
	}
	defer cursor.Close(ctx)

	var hosts []*models.Host
	if err = cursor.All(ctx, &hosts); err != nil {
		return nil, apperrors.NewStore("hosts.find", err)
	}
	if hosts == nil {
		hosts = []*models.Host{}
	}
	return hosts, nil
}
