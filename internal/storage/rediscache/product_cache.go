package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/ims/internal/domain"
)

const productKeyPrefix = "ims:product:"

// redisClient — подмножество команд go-redis, используемое кэшем.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ProductCache — read-through кэш поверх domain.ProductRepository.
// Экземпляр живёт в границах одной атомарной операции Store. Чтение мимо
// кэша не прогревает его сразу: значение, полученное внутри открытой
// транзакции, откладывается в pending и попадает в Redis только после
// фиксации (OnCommit) — откат не должен оставить в кэше состояние,
// которого нет в базе. Записи инвалидируют ключ немедленно. Ошибки кэша
// не фатальны: запрос просто уходит в основное хранилище.
type ProductCache struct {
	inner   domain.ProductRepository
	rdb     redisClient
	ttl     time.Duration
	pending map[string]domain.Product
}

// NewProductCache оборачивает репозиторий товаров кэшем с заданным TTL.
func NewProductCache(inner domain.ProductRepository, rdb *redis.Client, ttl time.Duration) *ProductCache {
	return newProductCache(inner, rdb, ttl)
}

func newProductCache(inner domain.ProductRepository, rdb redisClient, ttl time.Duration) *ProductCache {
	return &ProductCache{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		pending: make(map[string]domain.Product),
	}
}

func (c *ProductCache) Get(ctx context.Context, id string) (domain.Product, error) {
	cached, err := c.rdb.Get(ctx, productKeyPrefix+id).Bytes()
	if err == nil {
		var p domain.Product
		if err := json.Unmarshal(cached, &p); err == nil {
			return p, nil
		}
	}

	p, err := c.inner.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	// Прогрев откладывается до фиксации транзакции.
	c.pending[id] = p
	return p, nil
}

func (c *ProductCache) Create(ctx context.Context, p domain.Product) error {
	return c.inner.Create(ctx, p)
}

func (c *ProductCache) List(ctx context.Context) ([]domain.Product, error) {
	return c.inner.List(ctx)
}

func (c *ProductCache) Save(ctx context.Context, p domain.Product) error {
	c.invalidate(ctx, p.ID)
	return c.inner.Save(ctx, p)
}

func (c *ProductCache) Delete(ctx context.Context, id string) error {
	c.invalidate(ctx, id)
	return c.inner.Delete(ctx, id)
}

func (c *ProductCache) AdjustStock(ctx context.Context, id string, delta int64) (domain.Product, error) {
	c.invalidate(ctx, id)
	return c.inner.AdjustStock(ctx, id, delta)
}

// OnCommit прогревает кэш отложенными чтениями. Вызывается хранилищем
// строго после успешной фиксации транзакции; при откате не вызывается.
func (c *ProductCache) OnCommit(ctx context.Context) {
	for id, p := range c.pending {
		if data, err := json.Marshal(p); err == nil {
			c.rdb.Set(ctx, productKeyPrefix+id, data, c.ttl)
		}
	}
	c.pending = make(map[string]domain.Product)
}

// invalidate снимает ключ и отменяет отложенный прогрев: значение из
// более раннего чтения не должно пережить запись того же товара.
func (c *ProductCache) invalidate(ctx context.Context, id string) {
	delete(c.pending, id)
	c.rdb.Del(ctx, productKeyPrefix+id)
}

var _ domain.ProductRepository = (*ProductCache)(nil)
