package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"userachievements/locale"
	"userachievements/models"
	"userachievements/repository"
	"userachievements/validation"
)

// AchievementService handles the catalog, users and awards
type AchievementService struct {
	store          AchievementStore
	translator     locale.Translator
	sourceLanguage string
	now            Clock
	logger         *zap.Logger
}

func NewAchievementService(store AchievementStore, translator locale.Translator, sourceLanguage string, now Clock, logger *zap.Logger) *AchievementService {
	if now == nil {
		now = time.Now
	}
	return &AchievementService{
		store:          store,
		translator:     translator,
		sourceLanguage: sourceLanguage,
		now:            now,
		logger:         logger,
	}
}

func (s *AchievementService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError(err, "User is not found")
	}
	return user, nil
}

func (s *AchievementService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError(err.Error(), err)
	}

	user := &models.User{Username: req.Username, Language: req.Language}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeError(err, "User could not be created")
	}

	s.logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("language", string(user.Language)))
	return user, nil
}

// ListAchievements returns the whole catalog; an empty catalog is NotFound
func (s *AchievementService) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	achievements, err := s.store.ListAchievements(ctx)
	if err != nil {
		return nil, storeError(err, "Achievements is not found")
	}
	if len(achievements) == 0 {
		return nil, NewNotFoundError("Achievements is not found")
	}
	return achievements, nil
}

func (s *AchievementService) CreateAchievement(ctx context.Context, req *models.CreateAchievementRequest) (*models.Achievement, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError(err.Error(), err)
	}

	achievement := &models.Achievement{
		Name:        req.AchievementName,
		Scores:      *req.Scores,
		Description: req.Description,
	}
	if err := s.store.CreateAchievement(ctx, achievement); err != nil {
		return nil, storeError(err, "Achievement could not be created")
	}

	s.logger.Info("achievement created", zap.Uint("achievement_id", achievement.ID), zap.Int("scores", achievement.Scores))
	return achievement, nil
}

// GrantAward gives an achievement to a user. Granting one the user already
// holds is a Conflict; the store's unique index decides races.
func (s *AchievementService) GrantAward(ctx context.Context, req *models.SetAchievementRequest) (*models.UserAchievement, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, NewValidationError(err.Error(), err)
	}

	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return nil, storeError(err, "User is not found")
	}
	if _, err := s.store.GetAchievement(ctx, req.AchievementID); err != nil {
		return nil, storeError(err, "Achievement is not found")
	}

	award := &models.UserAchievement{
		UserID:        req.UserID,
		AchievementID: req.AchievementID,
		AwardedAt:     s.now().UTC(),
	}
	if err := s.store.GrantAward(ctx, award); err != nil {
		return nil, storeError(err, "User or achievement not found")
	}

	s.logger.Info("achievement granted",
		zap.Uint("award_id", award.ID),
		zap.Uint("user_id", award.UserID),
		zap.Uint("achievement_id", award.AchievementID))
	return award, nil
}

// UserAchievements lists a user's awards with names and descriptions in
// the user's language. Texts that cannot be translated stay as stored.
func (s *AchievementService) UserAchievements(ctx context.Context, userID uint) ([]models.LocalizedAward, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "User is not found")
	}

	awards, err := s.store.ListAwards(ctx, repository.AwardFilter{UserID: userID})
	if err != nil {
		return nil, storeError(err, "Achievements is not found")
	}
	if len(awards) == 0 {
		return nil, NewNotFoundError("User has no achievements")
	}

	target := string(user.Language)
	translate := !locale.SameLanguage(target, s.sourceLanguage)

	result := make([]models.LocalizedAward, 0, len(awards))
	for _, award := range awards {
		item := models.LocalizedAward{
			AwardID:         award.ID,
			AchievementID:   award.AchievementID,
			AchievementName: award.Achievement.Name,
			Description:     award.Achievement.Description,
			Scores:          award.Achievement.Scores,
			AwardedAt:       award.AwardedAt,
		}
		if translate {
			item.AchievementName = s.localize(ctx, item.AchievementName, target)
			item.Description = s.localize(ctx, item.Description, target)
		}
		result = append(result, item)
	}
	return result, nil
}

func (s *AchievementService) localize(ctx context.Context, text, target string) string {
	if text == "" {
		return text
	}

	translated, err := s.translator.Translate(ctx, text, target)
	if err != nil {
		s.logger.Warn("translation failed, keeping original text",
			zap.String("target", target),
			zap.Error(NewTranslationUnavailableError(err)))
		return text
	}
	return translated
}
