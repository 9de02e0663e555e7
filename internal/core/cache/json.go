package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// keyEscaper 转义分隔符和 SCAN 通配符，筛选值里带 ":" 或 "*" 也不会串到别的 key
var keyEscaper = strings.NewReplacer(
	"%", "%25", ":", "%3A", "*", "%2A", "?", "%3F", "[", "%5B", "]", "%5D", "\\", "%5C",
)

// Key 拼出 ns:part1:part2，ns 原样保留，适合配合 InvalidatePrefix(ns + ":")
func Key(ns string, parts ...string) string {
	var b strings.Builder
	b.WriteString(ns)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(keyEscaper.Replace(p))
	}
	return b.String()
}

// GetOrLoadJSON 结构体版本的读穿缓存。
// 缓存里的值解不开（例如发版后结构变了）时删掉该 key 并直接回源
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	ttl time.Duration,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	loaded := false
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		loaded = true
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		if loaded {
			return nil, e
		}
		_ = c.Invalidate(ctx, key)
		return load(ctx)
	}
	return &out, nil
}
