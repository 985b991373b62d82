package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/domain"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"
)

type TagService struct {
	tagRepo  ports.TagIntervalRepository
	logger   ports.LoggerPort
	validate *validator.Validate
	cache    ports.CachePort
}

func NewTagService(
	tagRepo ports.TagIntervalRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
) *TagService {
	return &TagService{
		tagRepo:  tagRepo,
		logger:   logger,
		validate: validate,
		cache:    cache,
	}
}

func (s *TagService) ListTags(ctx context.Context, userID string) ([]*domain.TagInterval, error) {
	cacheKey := tagsCacheKey(userID)
	if cached, ok := readCache[[]*domain.TagInterval](ctx, s.cache, s.logger, cacheKey); ok {
		s.logger.Debug("Tags found in cache", map[string]interface{}{
			"user_id": userID,
		})
		return cached, nil
	}

	tags, err := s.tagRepo.ListTagIntervals(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list tags", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	writeCache(ctx, s.cache, s.logger, cacheKey, tags)

	s.logger.Info("Retrieved tags for user", map[string]interface{}{
		"user_id":    userID,
		"tags_count": len(tags),
	})

	return tags, nil
}

func (s *TagService) GetTag(ctx context.Context, tagID string) (*domain.TagInterval, error) {
	tag, err := s.tagRepo.GetTagInterval(ctx, tagID)
	if err != nil {
		s.logger.Error("Failed to get tag", map[string]interface{}{
			"error":  err.Error(),
			"tag_id": tagID,
		})
		return nil, err
	}
	return tag, nil
}

func (s *TagService) CreateTag(ctx context.Context, tag *domain.TagInterval) (*domain.TagInterval, error) {
	tag.Name = strings.TrimSpace(tag.Name)
	if err := s.validate.Struct(tag); err != nil {
		s.logger.Error("Tag validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	existing, err := s.tagRepo.ListTagIntervals(ctx, tag.UserID)
	if err != nil {
		return nil, err
	}
	if nameTaken(existing, tag.Name, "") {
		s.logger.Warn("Duplicate tag name", map[string]interface{}{
			"user_id": tag.UserID,
			"name":    tag.Name,
		})
		return nil, domain.ErrDuplicateTag
	}

	id, err := s.tagRepo.CreateTagInterval(ctx, tag)
	if err != nil {
		s.logger.Error("Failed to create tag", map[string]interface{}{
			"error":   err.Error(),
			"user_id": tag.UserID,
		})
		return nil, err
	}
	tag.ID = id
	invalidateCache(ctx, s.cache, s.logger, tagsCacheKey(tag.UserID))

	s.logger.Info("Tag created successfully", map[string]interface{}{
		"tag_id":  id,
		"user_id": tag.UserID,
		"name":    tag.Name,
	})

	return tag, nil
}

func (s *TagService) UpdateTag(ctx context.Context, tag *domain.TagInterval, patch domain.TagIntervalPatch) (*domain.TagInterval, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := s.validate.Struct(patch); err != nil {
		s.logger.Error("Tag patch validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if patch.IsEmpty() {
		return tag, nil
	}

	if patch.Name != nil {
		existing, err := s.tagRepo.ListTagIntervals(ctx, tag.UserID)
		if err != nil {
			return nil, err
		}
		if nameTaken(existing, *patch.Name, tag.ID) {
			return nil, domain.ErrDuplicateTag
		}
	}

	if err := s.tagRepo.UpdateTagInterval(ctx, tag.ID, patch); err != nil {
		s.logger.Error("Failed to update tag", map[string]interface{}{
			"error":  err.Error(),
			"tag_id": tag.ID,
		})
		return nil, err
	}
	invalidateCache(ctx, s.cache, s.logger, tagsCacheKey(tag.UserID))

	updated, err := s.tagRepo.GetTagInterval(ctx, tag.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tag updated successfully", map[string]interface{}{
		"tag_id": tag.ID,
	})

	return updated, nil
}

func (s *TagService) DeleteTag(ctx context.Context, tag *domain.TagInterval) error {
	if err := s.tagRepo.DeleteTagInterval(ctx, tag.ID); err != nil {
		s.logger.Error("Failed to delete tag", map[string]interface{}{
			"error":  err.Error(),
			"tag_id": tag.ID,
		})
		return err
	}
	invalidateCache(ctx, s.cache, s.logger, tagsCacheKey(tag.UserID))

	s.logger.Info("Tag deleted successfully", map[string]interface{}{
		"tag_id": tag.ID,
	})

	return nil
}

// SeedDefaults creates the stock intervals the user does not have yet and
// returns the ones it created.
func (s *TagService) SeedDefaults(ctx context.Context, userID string) ([]*domain.TagInterval, error) {
	existing, err := s.tagRepo.ListTagIntervals(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list tags", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}

	created := make([]*domain.TagInterval, 0)
	for _, def := range domain.DefaultTagIntervals() {
		if nameTaken(existing, def.Name, "") {
			continue
		}
		tag := def
		tag.UserID = userID
		id, err := s.tagRepo.CreateTagInterval(ctx, &tag)
		if err != nil {
			s.logger.Error("Failed to seed tag", map[string]interface{}{
				"error":   err.Error(),
				"user_id": userID,
				"name":    tag.Name,
			})
			invalidateCache(ctx, s.cache, s.logger, tagsCacheKey(userID))
			return created, err
		}
		tag.ID = id
		created = append(created, &tag)
	}
	invalidateCache(ctx, s.cache, s.logger, tagsCacheKey(userID))

	s.logger.Info("Seeded default tags", map[string]interface{}{
		"user_id":       userID,
		"created_count": len(created),
	})

	return created, nil
}

func nameTaken(tags []*domain.TagInterval, name, exceptID string) bool {
	key := domain.NormalizeTagName(name)
	for _, t := range tags {
		if t.ID != exceptID && t.NormalizedName() == key {
			return true
		}
	}
	return false
}
