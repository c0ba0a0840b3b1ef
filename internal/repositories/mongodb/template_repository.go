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
)

// TemplateRepository implements the repositories.TemplateRepository interface
type TemplateRepository struct {
	collection *mongo.Collection
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *mongo.Database) repositories.TemplateRepository {
	return &TemplateRepository{
		collection: db.Collection("templates"),
	}
}

// FindByID finds a template by ID
func (r *TemplateRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

// FindByName finds a template by name
func (r *TemplateRepository) FindByName(ctx context.Context, name string) (*models.Template, error) {
	return r.findOne(ctx, bson.M{"name": name}, name)
}

// FindAll finds all templates with pagination
func (r *TemplateRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Template, error) {
	opts := pageOptions(page, limit).SetSort(bson.M{"name": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperrors.NewStore("templates.findAll", err)
	}
	defer cursor.Close(ctx)

	var templates []*models.Template
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, apperrors.NewStore("templates.findAll", err)
	}
	if templates == nil {
		templates = []*models.Template{}
	}
	return templates, nil
}

// Create creates a new template; names are unique
func (r *TemplateRepository) Create(ctx context.Context, template *models.Template) error {
	template.ID = primitive.NewObjectID()
	template.CreatedAt = time.Now()
	template.UpdatedAt = template.CreatedAt
	_, err := r.collection.InsertOne(ctx, template)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewValidation("name", "a template with this name already exists")
	}
	return apperrors.NewStore("templates.create", err)
}

// Update updates a template
func (r *TemplateRepository) Update(ctx context.Context, template *models.Template) error {
	template.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewValidation("name", "a template with this name already exists")
	}
	if err != nil {
		return apperrors.NewStore("templates.update", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NewNotFound("template", template.ID.Hex())
	}
	return nil
}

// Delete deletes a template
func (r *TemplateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperrors.NewStore("templates.delete", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFound("template", id.Hex())
	}
	return nil
}

// Count counts all templates
func (r *TemplateRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	return n, apperrors.NewStore("templates.count", err)
}

func (r *TemplateRepository) findOne(ctx context.Context, filter bson.M, key string) (*models.Template, error) {
	var template models.Template
	err := r.collection.FindOne(ctx, filter).Decode(&template)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NewNotFound("template", key)
	}
	if err != nil {
		return nil, apperrors.NewStore("templates.findOne", err)
	}
	return &template, nil
}
