package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"
)

// Source loads a fresh rule table.
type Source interface {
	Load(ctx context.Context) (*Table, error)
	String() string
}

// OpenSource picks a Source for location: a redis:// or rediss:// URL with a
// "key" query parameter, otherwise a file path.
func OpenSource(location string) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("rules: empty source location")
	}
	if strings.HasPrefix(location, "redis://") || strings.HasPrefix(location, "rediss://") {
		return NewRedisSource(location)
	}
	return &FileSource{Path: location}, nil
}

// Decode parses a rule document. YAML is a superset of JSON, but JSON goes
// through encoding/json so its error messages point at the right place.
func Decode(data []byte, format string) (*Table, error) {
	raw := map[string][]string{}
	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml rules: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse json rules: %w", err)
		}
	}
	return NewTable(raw), nil
}

// FileSource reads a .json, .yaml or .yml file.
type FileSource struct {
	Path string
}

func (f *FileSource) String() string { return f.Path }

// Load reads and parses the file.
func (f *FileSource) Load(_ context.Context) (*Table, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Path)), ".")
	return Decode(data, ext)
}

// RedisSource reads a JSON rule document stored under one key.
type RedisSource struct {
	client *redis.Client
	key    string
	addr   string
}

// NewRedisSource parses redis://[:password@]host:port/db?key=name.
func NewRedisSource(rawURL string) (*RedisSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("rules: invalid redis url: %w", err)
	}
	key := u.Query().Get("key")
	if key == "" {
		return nil, fmt.Errorf("rules: redis url needs a ?key= parameter")
	}
	q := u.Query()
	q.Del("key")
	u.RawQuery = q.Encode()

	opts, err := redis.ParseURL(u.String())
	if err != nil {
		return nil, fmt.Errorf("rules: invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.MaxRetries = 3

	return &RedisSource{client: redis.NewClient(opts), key: key, addr: opts.Addr}, nil
}

func (r *RedisSource) String() string { return "redis://" + r.addr + "/" + r.key }

// Key returns the redis key holding the document.
func (r *RedisSource) Key() string { return r.key }

// Load fetches and parses the document.
func (r *RedisSource) Load(ctx context.Context) (*Table, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("rules: redis key %q not found: %w", r.key, err)
		}
		return nil, fmt.Errorf("rules: redis get %q: %w", r.key, err)
	}
	return Decode([]byte(val), "json")
}

// Close releases the redis connection pool.
func (r *RedisSource) Close() error {
	return r.client.Close()
}
