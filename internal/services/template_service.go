package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_]*)\s*\}\}`)

// TemplateServiceImpl implements TemplateService
type TemplateServiceImpl struct {
	templates repositories.TemplateRepository
	logger    *zap.Logger
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templates repositories.TemplateRepository, logger *zap.Logger) *TemplateServiceImpl {
	return &TemplateServiceImpl{templates: templates, logger: logger}
}

// Create stores a new template
func (s *TemplateServiceImpl) Create(ctx context.Context, caller models.CallerContext, input models.TemplateInput) (*models.Template, error) {
	t := &models.Template{CreatedBy: caller.Actor()}
	if err := applyTemplateInput(t, input); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("Template created", zap.String("templateId", t.ID.Hex()), zap.String("name", t.Name))
	return t, nil
}

// Get returns one template
func (s *TemplateServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	return s.templates.FindByID(ctx, id)
}

// List returns a page of templates ordered by name and the total count
func (s *TemplateServiceImpl) List(ctx context.Context, page, limit int) ([]*models.Template, int64, error) {
	items, err := s.templates.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.templates.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Count returns the number of templates
func (s *TemplateServiceImpl) Count(ctx context.Context) (int64, error) {
	return s.templates.Count(ctx)
}

// Update replaces a template's fields. Broadcasts created from it keep their copy.
func (s *TemplateServiceImpl) Update(ctx context.Context, id primitive.ObjectID, input models.TemplateInput) (*models.Template, error) {
	t, err := s.templates.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyTemplateInput(t, input); err != nil {
		return nil, err
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a template
func (s *TemplateServiceImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.templates.Delete(ctx, id)
}

func applyTemplateInput(t *models.Template, input models.TemplateInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return err
	}
	if input.DefaultChannels.SMS && input.BodySMS == "" {
		return apperrors.NewValidation("bodySms", "is required when sms is a default channel")
	}
	if input.DefaultSelection != nil && len(input.DefaultSelection.SelectedUserIDs) > 0 && len(input.DefaultSelection.Roles) > 0 {
		return apperrors.NewValidation("defaultSelection", "must select either users or roles")
	}

	t.Name = input.Name
	t.Subject = input.Subject
	t.BodyHTML = input.BodyHTML
	t.BodySMS = input.BodySMS
	t.DefaultChannels = input.DefaultChannels
	t.DefaultSelection = input.DefaultSelection
	t.Variables = input.Variables
	if len(t.Variables) == 0 {
		t.Variables = extractVariables(t.Subject, t.BodyHTML, t.BodySMS)
	}
	return nil
}

// extractVariables lists the distinct {{placeholder}} names in order of first use
func extractVariables(texts ...string) []string {
	seen := map[string]bool{}
	vars := []string{}
	for _, text := range texts {
		for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				vars = append(vars, m[1])
			}
		}
	}
	return vars
}
