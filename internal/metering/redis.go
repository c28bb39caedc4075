// Package metering реализует счётчики использования фич на Redis.
//
// Счётчики принадлежат метеринговому коллаборатору: проверка квоты их только
// читает, запись идёт отдельной операцией учёта. Ключ содержит расчётный
// период (месяц), поэтому счётчики обнуляются естественно, сменой периода.
package metering

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Counters хранит счётчики использования в Redis.
type Counters struct {
	db *redis.Client
}

// New создает Counters поверх готового клиента Redis.
func New(db *redis.Client) *Counters {
	return &Counters{db: db}
}

// key формирует ключ вида usage:<customer>:<feature>:<period>.
func key(customerUID, feature string, now time.Time) string {
	return fmt.Sprintf("usage:%s:%s:%s", customerUID, feature, now.UTC().Format("2006-01"))
}

// CurrentUsage возвращает текущее значение счётчика за текущий период.
// Отсутствующий ключ означает ноль использований.
func (c *Counters) CurrentUsage(ctx context.Context, customerUID, feature string) (int64, error) {
	const op = "metering.CurrentUsage"
	val, err := c.db.Get(ctx, key(customerUID, feature, time.Now())).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}

// Add увеличивает счётчик на quantity и возвращает новое значение.
// TTL выставляется с запасом в один период, чтобы ключи прошлых месяцев
// не жили в Redis бесконечно.
func (c *Counters) Add(ctx context.Context, customerUID, feature string, quantity int64) (int64, error) {
	const op = "metering.Add"
	k := key(customerUID, feature, time.Now())
	val, err := c.db.IncrBy(ctx, k, quantity).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.db.Expire(ctx, k, 62*24*time.Hour).Err(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}
