// Package cache wraps the vehicle store with a read-through Redis cache.
// Lookups by ID or plate are the hot path at the gate, so they are cached
// with a short TTL; every successful write invalidates synchronously before
// returning, so a caller never observes a stale read after its own write.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"gatepass/internal/policy"
	"gatepass/internal/vehicle/models"
	"gatepass/internal/vehicle/store"
	"gatepass/pkg/domain"
)

// Cached decorates a vehicle store. Cache failures are advisory: they are
// logged and the backing store answers instead.
type Cached struct {
	inner  store.Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(inner store.Store, client *redis.Client, logger *slog.Logger) *Cached {
	return &Cached{
		inner:  inner,
		client: client,
		ttl:    policy.VehicleCacheTTL,
		logger: logger,
	}
}

func idKey(id string) string       { return "vehicle:id:" + id }
func plateKey(plate string) string { return "vehicle:plate:" + models.NormalizePlate(plate) }

func (c *Cached) FindByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if v := c.lookup(ctx, idKey(id)); v != nil {
		return v, nil
	}
	v, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, v)
	return v, nil
}

func (c *Cached) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	if v := c.lookup(ctx, plateKey(plate)); v != nil {
		return v, nil
	}
	v, err := c.inner.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, v)
	return v, nil
}

func (c *Cached) Create(ctx context.Context, v *models.Vehicle) error {
	if err := c.inner.Create(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID, v.PlateNumber)
	return nil
}

func (c *Cached) Update(ctx context.Context, v *models.Vehicle) error {
	// The plate may have changed, so fetch the stored record first to drop
	// both the old and the new plate keys.
	var oldPlate string
	if current, err := c.inner.FindByID(ctx, v.ID); err == nil {
		oldPlate = current.PlateNumber
	}
	if err := c.inner.Update(ctx, v); err != nil {
		return err
	}
	c.invalidate(ctx, v.ID, v.PlateNumber)
	if oldPlate != "" && models.NormalizePlate(oldPlate) != models.NormalizePlate(v.PlateNumber) {
		c.invalidate(ctx, v.ID, oldPlate)
	}
	return nil
}

func (c *Cached) UpdateCurrentDriver(ctx context.Context, id, driver string) error {
	if err := c.inner.UpdateCurrentDriver(ctx, id, driver); err != nil {
		return err
	}
	if v, err := c.inner.FindByID(ctx, id); err == nil {
		c.invalidate(ctx, id, v.PlateNumber)
	} else {
		c.invalidate(ctx, id, "")
	}
	return nil
}

func (c *Cached) ApplyTransaction(ctx context.Context, tx store.TransactionUpdate) error {
	if err := c.inner.ApplyTransaction(ctx, tx); err != nil {
		return err
	}
	if v, err := c.inner.FindByID(ctx, tx.VehicleID); err == nil {
		c.invalidate(ctx, tx.VehicleID, v.PlateNumber)
	} else {
		c.invalidate(ctx, tx.VehicleID, "")
	}
	return nil
}

func (c *Cached) Delete(ctx context.Context, id string) error {
	var plate string
	if v, err := c.inner.FindByID(ctx, id); err == nil {
		plate = v.PlateNumber
	}
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id, plate)
	return nil
}

func (c *Cached) List(ctx context.Context) ([]models.Vehicle, error) {
	return c.inner.List(ctx)
}

func (c *Cached) MaxNumericID(ctx context.Context) (int, error) {
	return c.inner.MaxNumericID(ctx)
}

func (c *Cached) CountByStatus(ctx context.Context, status domain.TxAction) (int, error) {
	return c.inner.CountByStatus(ctx, status)
}

func (c *Cached) lookup(ctx context.Context, key string) *models.Vehicle {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.WarnContext(ctx, "vehicle cache read failed", "key", key, "error", err)
		}
		return nil
	}
	var v models.Vehicle
	if err := json.Unmarshal(raw, &v); err != nil {
		// Corrupt cache value; drop it and fall through to the store.
		c.client.Del(ctx, key)
		return nil
	}
	return &v
}

func (c *Cached) fill(ctx context.Context, v *models.Vehicle) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	pipe := c.client.Pipeline()
	pipe.Set(ctx, idKey(v.ID), raw, c.ttl)
	pipe.Set(ctx, plateKey(v.PlateNumber), raw, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "vehicle cache fill failed", "id", v.ID, "error", err)
	}
}

func (c *Cached) invalidate(ctx context.Context, id, plate string) {
	keys := []string{idKey(id)}
	if plate != "" {
		keys = append(keys, plateKey(plate))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil && c.logger != nil {
		c.logger.WarnContext(ctx, "vehicle cache invalidation failed", "id", id, "error", err)
	}
}
