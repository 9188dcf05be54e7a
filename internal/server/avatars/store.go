package avatars

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/google/uuid"
)

// ErrNotStored is returned by Store.Get when the referenced bytes are gone.
var ErrNotStored = errors.New("avatar not stored")

// Store persists normalized avatar bytes. Put returns the reference that is
// saved on the user row; Get and Delete take that reference back.
type Store interface {
	Name() string
	Put(ctx context.Context, userID string, data []byte) (models.Avatar, error)
	Get(ctx context.Context, userID string, ref models.Avatar) ([]byte, error)
	Delete(ctx context.Context, userID string, ref models.Avatar) error
}

// ValidID reports whether id can name an avatar file or object.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func fileName(userID string) string {
	return userID + ".png"
}

// InlineStore keeps the bytes on the user row itself.
type InlineStore struct{}

func NewInlineStore() *InlineStore { return &InlineStore{} }

func (s *InlineStore) Name() string { return "inline" }

func (s *InlineStore) Put(_ context.Context, _ string, data []byte) (models.Avatar, error) {
	return models.Avatar{Data: data, ContentType: ContentType}, nil
}

func (s *InlineStore) Get(_ context.Context, _ string, ref models.Avatar) ([]byte, error) {
	if len(ref.Data) == 0 {
		return nil, ErrNotStored
	}
	return ref.Data, nil
}

func (s *InlineStore) Delete(context.Context, string, models.Avatar) error { return nil }
