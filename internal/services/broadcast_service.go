package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/ArowuTest/hostboard-backend/internal/repositories"
	"github.com/ArowuTest/hostboard-backend/pkg/blobstore"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BroadcastServiceImpl implements BroadcastService
type BroadcastServiceImpl struct {
	broadcasts repositories.BroadcastRepository
	templates  repositories.TemplateRepository
	resolver   *RecipientResolver
	signer     blobstore.Signer
	logger     *zap.Logger
	now        func() time.Time
}

// NewBroadcastService creates a new BroadcastService
func NewBroadcastService(
	broadcasts repositories.BroadcastRepository,
	templates repositories.TemplateRepository,
	resolver *RecipientResolver,
	signer blobstore.Signer,
	logger *zap.Logger,
) *BroadcastServiceImpl {
	return &BroadcastServiceImpl{
		broadcasts: broadcasts,
		templates:  templates,
		resolver:   resolver,
		signer:     signer,
		logger:     logger,
		now:        time.Now,
	}
}

// Create validates the input and stores a new draft, or a scheduled broadcast when
// scheduledAt is in the future. A referenced template fills the fields the input leaves empty.
func (s *BroadcastServiceImpl) Create(ctx context.Context, caller models.CallerContext, input models.BroadcastInput) (*models.Broadcast, error) {
	b := &models.Broadcast{CreatedBy: caller.Actor()}
	if input.TemplateID != nil {
		tmpl, err := s.templates.FindByID(ctx, *input.TemplateID)
		if err != nil {
			return nil, err
		}
		applyTemplate(&input, tmpl)
		b.TemplateID = input.TemplateID
	}

	if err := s.apply(b, input); err != nil {
		return nil, err
	}
	if err := s.broadcasts.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("Broadcast created",
		zap.String("broadcastId", b.ID.Hex()),
		zap.String("status", string(b.Status)),
		zap.String("createdBy", b.CreatedBy),
	)
	return b, nil
}

// Get returns a broadcast with a signed playback link for its video. VideoURL keeps the stored key.
func (s *BroadcastServiceImpl) Get(ctx context.Context, id primitive.ObjectID) (*models.Broadcast, error) {
	b, err := s.broadcasts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.signVideo(ctx, b)
	return b, nil
}

// List returns a page of broadcasts and the total matching count
func (s *BroadcastServiceImpl) List(ctx context.Context, filter models.BroadcastFilter, page, limit int) ([]*models.Broadcast, int64, error) {
	items, err := s.broadcasts.Find(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.broadcasts.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Update replaces content, targeting and scheduling of a draft or scheduled broadcast.
// A non-zero input.Version must match the stored version.
func (s *BroadcastServiceImpl) Update(ctx context.Context, caller models.CallerContext, id primitive.ObjectID, input models.BroadcastInput) (*models.Broadcast, error) {
	b, err := s.broadcasts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsEditable() {
		return nil, apperrors.NewInvalidState(id.Hex(), string(b.Status), "edit", nil)
	}
	expected := b.Version
	if input.Version != 0 {
		if input.Version != b.Version {
			return nil, apperrors.ErrConflict
		}
		expected = input.Version
	}
	if input.Channels == nil {
		ch := b.Channels
		input.Channels = &ch
	}

	if err := s.apply(b, input); err != nil {
		return nil, err
	}
	if err := s.broadcasts.Update(ctx, b, expected); err != nil {
		return nil, err
	}

	s.logger.Info("Broadcast updated",
		zap.String("broadcastId", id.Hex()),
		zap.String("status", string(b.Status)),
		zap.String("by", caller.Actor()),
	)
	return b, nil
}

// Delete removes a draft broadcast
func (s *BroadcastServiceImpl) Delete(ctx context.Context, caller models.CallerContext, id primitive.ObjectID) error {
	b, err := s.broadcasts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsDeletable() {
		return apperrors.NewInvalidState(id.Hex(), string(b.Status), "delete", nil)
	}
	if err := s.broadcasts.DeleteDraft(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Broadcast deleted", zap.String("broadcastId", id.Hex()), zap.String("by", caller.Actor()))
	return nil
}

// PreviewRecipients resolves the current targeting without sending anything
func (s *BroadcastServiceImpl) PreviewRecipients(ctx context.Context, id primitive.ObjectID) ([]models.Recipient, error) {
	b, err := s.broadcasts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, b)
}

// apply validates input and copies it onto b, deciding draft or scheduled
func (s *BroadcastServiceImpl) apply(b *models.Broadcast, input models.BroadcastInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}

	b.Title = input.Title
	b.Subject = input.Subject
	b.BodyHTML = input.BodyHTML
	b.BodySMS = input.BodySMS
	b.VideoURL = input.VideoURL
	b.LinkURL = input.LinkURL
	b.LinkText = input.LinkText
	b.TargetRoles = input.TargetRoles
	b.TargetLocations = input.TargetLocations
	b.TargetUserIDs = input.TargetUserIDs
	b.UserSelection = input.UserSelection
	if input.Channels != nil {
		b.Channels = *input.Channels
	}

	if err := validateTargeting(b); err != nil {
		return err
	}
	if err := validateChannels(b); err != nil {
		return err
	}

	switch {
	case input.ScheduledAt == nil:
		b.ScheduledAt = nil
		b.Status = models.BroadcastStatusDraft
	case !input.ScheduledAt.After(s.now()):
		return apperrors.NewValidation("scheduledAt", "must be in the future")
	default:
		at := input.ScheduledAt.UTC()
		b.ScheduledAt = &at
		b.Status = models.BroadcastStatusScheduled
	}
	return nil
}

func (s *BroadcastServiceImpl) signVideo(ctx context.Context, b *models.Broadcast) {
	if b.VideoURL == "" {
		return
	}
	url, err := s.signer.SignedURL(ctx, b.VideoURL)
	if err != nil {
		s.logger.Warn("Video URL signing failed", zap.String("broadcastId", b.ID.Hex()), zap.Error(err))
		return
	}
	b.VideoPlaybackURL = url
}

// applyTemplate copies template defaults into the empty fields of input
func applyTemplate(input *models.BroadcastInput, t *models.Template) {
	if input.Subject == "" {
		input.Subject = t.Subject
	}
	if input.BodyHTML == "" {
		input.BodyHTML = t.BodyHTML
	}
	if input.BodySMS == "" {
		input.BodySMS = t.BodySMS
	}
	if input.Channels == nil {
		ch := t.DefaultChannels
		input.Channels = &ch
	}
	noTargeting := len(input.TargetUserIDs) == 0 && len(input.TargetRoles) == 0 && input.UserSelection.IsEmpty()
	if noTargeting && t.DefaultSelection != nil {
		sel := *t.DefaultSelection
		input.UserSelection = &sel
	}
}

// validateTargeting allows at most one targeting mode; a broadcast may be saved
// without targeting but cannot be sent that way
func validateTargeting(b *models.Broadcast) error {
	modes := 0
	if len(b.TargetUserIDs) > 0 {
		modes++
	}
	if len(b.TargetRoles) > 0 {
		modes++
	}
	if !b.UserSelection.IsEmpty() {
		modes++
		if len(b.UserSelection.SelectedUserIDs) > 0 && len(b.UserSelection.Roles) > 0 {
			return apperrors.NewValidation("userSelection", "must select either users or roles")
		}
	}
	if modes > 1 {
		return apperrors.NewValidation("targeting", "use only one of targetUserIds, targetRoles or userSelection")
	}
	if len(b.TargetLocations) > 0 && len(b.TargetRoles) == 0 {
		return apperrors.NewValidation("targetLocations", "requires targetRoles")
	}
	return nil
}

// validateChannels requires a channel and an SMS body that fits one message
func validateChannels(b *models.Broadcast) error {
	if !b.Channels.Any() {
		return apperrors.NewValidation("channels", "at least one channel must be enabled")
	}
	if b.Channels.SMS {
		if b.BodySMS == "" {
			return apperrors.NewValidation("bodySms", "is required when sms is enabled")
		}
		if n := utf8.RuneCountInString(b.BodySMS); n > models.MaxSMSLength {
			return apperrors.NewValidation("bodySms", "must be at most 160 characters")
		}
	}
	return nil
}

// validateSendable re-checks the write-time invariants before a dispatch
func validateSendable(b *models.Broadcast) error {
	if err := validateChannels(b); err != nil {
		return err
	}
	return validateTargeting(b)
}
