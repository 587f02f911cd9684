package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/library/internal/application/library"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

// AvailabilityCache 可借数量快照
//
// Key设计：
//
//	book:availability:{isbn}  Hash{total, available, borrowed}
//	library:stats             Hash{total_members, active_members, ...}
//
// 快照只供外部读取（看板、其他服务），Library的内存索引才是读写的依据，
// 因此写失败不影响业务，熔断器打开后直接跳过Redis。
type AvailabilityCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

var _ library.AvailabilityCache = (*AvailabilityCache)(nil)

// NewAvailabilityCache 创建快照缓存，ttl<=0表示不过期
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{
		client: client,
		ttl:    ttl,
		breaker: circuitbreaker.NewCircuitBreaker("redis", circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
		}),
	}
}

const statsKey = "library:stats"

func availabilityKey(isbn string) string {
	return "book:availability:" + isbn
}

// PutAvailability 写入单本书的可借快照
func (c *AvailabilityCache) PutAvailability(ctx context.Context, isbn string, a book.Availability) error {
	return c.putHash(ctx, availabilityKey(isbn), map[string]interface{}{
		"total":     a.Total,
		"available": a.Available,
		"borrowed":  a.Borrowed,
	})
}

// PutStats 写入馆藏统计快照
func (c *AvailabilityCache) PutStats(ctx context.Context, s library.Stats) error {
	return c.putHash(ctx, statsKey, map[string]interface{}{
		"total_members":         s.TotalMembers,
		"active_members":        s.ActiveMembers,
		"total_books_inventory": s.TotalBooksInventory,
		"borrowed_books":        s.BorrowedBooks,
		"available_books":       s.AvailableBooks,
		"unique_titles":         s.UniqueTitles,
	})
}

// GetAvailability 读取单本书的可借快照，ok=false表示未命中
func (c *AvailabilityCache) GetAvailability(ctx context.Context, isbn string) (a book.Availability, ok bool, err error) {
	fields, err := c.getHash(ctx, availabilityKey(isbn))
	if err != nil || fields == nil {
		return book.Availability{}, false, err
	}
	a = book.Availability{
		Total:     atoi(fields["total"]),
		Available: atoi(fields["available"]),
		Borrowed:  atoi(fields["borrowed"]),
	}
	return a, true, nil
}

// GetStats 读取馆藏统计快照，ok=false表示未命中
func (c *AvailabilityCache) GetStats(ctx context.Context) (s library.Stats, ok bool, err error) {
	fields, err := c.getHash(ctx, statsKey)
	if err != nil || fields == nil {
		return library.Stats{}, false, err
	}
	s = library.Stats{
		TotalMembers:        atoi(fields["total_members"]),
		ActiveMembers:       atoi(fields["active_members"]),
		TotalBooksInventory: atoi(fields["total_books_inventory"]),
		BorrowedBooks:       atoi(fields["borrowed_books"]),
		AvailableBooks:      atoi(fields["available_books"]),
		UniqueTitles:        atoi(fields["unique_titles"]),
	}
	return s, true, nil
}

// putHash HSET + EXPIRE在一个MULTI中提交
func (c *AvailabilityCache) putHash(ctx context.Context, key string, fields map[string]interface{}) error {
	return c.breaker.Execute(func() error {
		_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			if c.ttl > 0 {
				pipe.Expire(ctx, key, c.ttl)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("cache %s: %w", key, err)
		}
		return nil
	})
}

func (c *AvailabilityCache) getHash(ctx context.Context, key string) (map[string]string, error) {
	var fields map[string]string
	err := c.breaker.Execute(func() error {
		var err error
		fields, err = c.client.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
