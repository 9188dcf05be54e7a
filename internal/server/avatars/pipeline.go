package avatars

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/lockx"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
)

// Records is the slice of the users repository the pipeline needs.
type Records interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar models.Avatar) (*models.User, error)
}

// Pipeline normalizes, stores and serves avatars. The user row is the
// durable record of whether an avatar exists; the disk and memory caches
// are rebuilt from it on demand.
//
// All writes for one user id, including every cache fill on read, run
// under that id's lock so an eviction cannot be undone by a reader that
// loaded the row or the disk file just before the delete.
type Pipeline struct {
	store  Store
	disk   *DiskCache
	memory *MemoryCache
	locks  *lockx.KeyedMutex
	log    logging.Logger
}

func NewPipeline(store Store, disk *DiskCache, memory *MemoryCache, log logging.Logger) *Pipeline {
	return &Pipeline{
		store:  store,
		disk:   disk,
		memory: memory,
		locks:  lockx.NewKeyedMutex(),
		log:    log,
	}
}

// StoreName reports the configured storage variant.
func (p *Pipeline) StoreName() string {
	return p.store.Name()
}

// Put normalizes raw and makes it the avatar of userID. Nothing is written
// when raw cannot be decoded.
func (p *Pipeline) Put(ctx context.Context, records Records, userID string, raw []byte) (user *models.User, err error) {
	defer func() {
		metrics.AvatarWrites.WithLabelValues(p.store.Name(), metrics.Result(err)).Inc()
	}()

	if !ValidID(userID) {
		return nil, common.NewNotFoundError(common.GenericMessage)
	}

	data, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize avatar: %w", err)
	}

	unlock := p.locks.Lock(userID)
	defer unlock()

	ref, err := p.store.Put(ctx, userID, data)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	user, err = records.UpdateAvatar(ctx, userID, ref)
	if err != nil {
		if derr := p.store.Delete(ctx, userID, ref); derr != nil {
			p.log.Warn(ctx, "orphaned avatar object", "user_id", userID, "error", derr)
		}
		return nil, err
	}

	p.memory.Remove(userID)
	if err := p.disk.Put(userID, data); err != nil {
		p.log.Warn(ctx, "avatar cache write failed", "user_id", userID, "error", err)
	}

	return user, nil
}

// Fetch returns the PNG avatar of userID, serving from memory, then the
// disk cache, then the store.
func (p *Pipeline) Fetch(ctx context.Context, records Records, userID string) ([]byte, error) {
	if !ValidID(userID) {
		return nil, common.NewNotFoundError(common.GenericMessage)
	}

	if data, ok := p.memory.Get(userID); ok {
		metrics.AvatarCacheLookups.WithLabelValues(metrics.TierMemory, metrics.ResultHit).Inc()
		return data, nil
	}

	// The memory cache is only filled under the lock, after Put or Evict
	// for the same id has finished with the disk file.
	unlock := p.locks.Lock(userID)
	defer unlock()

	data, ok, err := p.disk.Get(userID)
	if err != nil {
		p.log.Warn(ctx, "avatar cache read failed", "user_id", userID, "error", err)
	}
	if ok {
		metrics.AvatarCacheLookups.WithLabelValues(metrics.TierDisk, metrics.ResultHit).Inc()
		p.memory.Add(userID, data)
		return data, nil
	}
	metrics.AvatarCacheLookups.WithLabelValues(metrics.TierDisk, metrics.ResultMiss).Inc()

	user, err := records.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(common.GenericMessage)
		}
		return nil, err
	}
	if !user.Avatar.Present() {
		metrics.AvatarCacheLookups.WithLabelValues(metrics.TierStore, metrics.ResultMiss).Inc()
		return nil, common.NewNotFoundError(common.GenericMessage)
	}

	data, err = p.store.Get(ctx, userID, user.Avatar)
	if err != nil {
		if errors.Is(err, ErrNotStored) {
			metrics.AvatarCacheLookups.WithLabelValues(metrics.TierStore, metrics.ResultMiss).Inc()
			return nil, common.NewNotFoundError(common.GenericMessage)
		}
		return nil, fmt.Errorf("load avatar: %w", err)
	}
	metrics.AvatarCacheLookups.WithLabelValues(metrics.TierStore, metrics.ResultHit).Inc()

	if err := p.disk.Put(userID, data); err != nil {
		p.log.Warn(ctx, "avatar cache write failed", "user_id", userID, "error", err)
	}
	p.memory.Add(userID, data)

	return data, nil
}

// Evict removes every stored and cached copy of userID's avatar after the
// account is gone. Failures are logged.
func (p *Pipeline) Evict(ctx context.Context, userID string, ref models.Avatar) {
	if !ValidID(userID) {
		return
	}

	unlock := p.locks.Lock(userID)
	if ref.Present() {
		if err := p.store.Delete(ctx, userID, ref); err != nil {
			p.log.Warn(ctx, "avatar delete failed", "user_id", userID, "error", err)
		}
	}
	if err := p.disk.Remove(userID); err != nil {
		p.log.Warn(ctx, "avatar cache delete failed", "user_id", userID, "error", err)
	}
	p.memory.Remove(userID)
	unlock()

	p.locks.Forget(userID)
}
