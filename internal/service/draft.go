package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/matprat/matprat/backend/internal/types"
)

const draftTTL = 24 * time.Hour

// DraftStore keeps previewed recipe aggregates so they can be saved later
// without resubmitting the form.
type DraftStore interface {
	SaveDraft(ctx context.Context, draft *types.RecipeInput) (string, error)
	GetDraft(ctx context.Context, id string) (*types.RecipeInput, error)
	DeleteDraft(ctx context.Context, id string) error
}

type RedisDraftStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{redis: client, ttl: draftTTL}
}

func draftKey(id string) string {
	return fmt.Sprintf("recipe:draft:%s", id)
}

// SaveDraft saves a recipe draft to Redis
func (s *RedisDraftStore) SaveDraft(ctx context.Context, draft *types.RecipeInput) (string, error) {
	id := uuid.New().String()
	data, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.redis.Set(ctx, draftKey(id), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to save draft to Redis: %w", err)
	}
	return id, nil
}

// GetDraft retrieves a recipe draft from Redis
func (s *RedisDraftStore) GetDraft(ctx context.Context, id string) (*types.RecipeInput, error) {
	data, err := s.redis.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, &NotFoundError{Resource: "draft", Name: id, Message: "The recipe draft has expired. Please submit the form again."}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft from Redis: %w", err)
	}
	var draft types.RecipeInput
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &draft, nil
}

func (s *RedisDraftStore) DeleteDraft(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, draftKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete draft from Redis: %w", err)
	}
	return nil
}
