package content

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/wmatuze/vbc-web-sub001/internal/format"
)

// Store is the persistence the service needs. *Repository implements it.
type Store interface {
	List(ctx context.Context, collection string) ([]bson.M, error)
	Get(ctx context.Context, collection, id string) (bson.M, error)
	Insert(ctx context.Context, collection string, doc bson.M) (bson.M, error)
	Update(ctx context.Context, collection, id string, set bson.M) (bson.M, error)
	Delete(ctx context.Context, collection, id string) error
}

// Cache is the best-effort list cache. *store.Redis implements it.
type Cache interface {
	CacheGet(ctx context.Context, key string) string
	CacheSet(ctx context.Context, key, payload string, ttl time.Duration)
	CacheDel(ctx context.Context, keys ...string)
}

// Service wraps the repository with response formatting and a short-lived
// list cache. Cache trouble never fails a request.
type Service struct {
	repo     Store
	cache    Cache
	cacheTTL time.Duration
}

// NewService creates a content service. cache may be nil.
func NewService(repo Store, cache Cache, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func cacheKey(ent Entity) string {
	return "vbc:cache:" + ent.Name
}

// List returns every document of an entity, formatted, serving from cache
// when possible.
func (s *Service) List(ctx context.Context, ent Entity) ([]bson.M, error) {
	if cached := s.cacheGet(ctx, cacheKey(ent)); cached != "" {
		var docs []bson.M
		if err := json.Unmarshal([]byte(cached), &docs); err == nil {
			return docs, nil
		}
	}

	raw, err := s.repo.List(ctx, ent.Collection)
	if err != nil {
		return nil, err
	}
	docs := format.Documents(raw)

	if payload, err := json.Marshal(docs); err == nil {
		s.cacheSet(ctx, cacheKey(ent), string(payload))
	}
	return docs, nil
}

func (s *Service) cacheGet(ctx context.Context, key string) string {
	if s.cache == nil {
		return ""
	}
	return s.cache.CacheGet(ctx, key)
}

func (s *Service) cacheSet(ctx context.Context, key, payload string) {
	if s.cache == nil {
		return
	}
	s.cache.CacheSet(ctx, key, payload, s.cacheTTL)
}

func (s *Service) cacheDel(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	s.cache.CacheDel(ctx, key)
}

// Get returns one formatted document.
func (s *Service) Get(ctx context.Context, ent Entity, id string) (bson.M, error) {
	doc, err := s.repo.Get(ctx, ent.Collection, id)
	if err != nil {
		return nil, err
	}
	return format.Document(doc), nil
}

// Create validates nothing beyond shape (content is admin-entered), stamps
// the entity type, parses legacy date strings and persists.
func (s *Service) Create(ctx context.Context, ent Entity, payload map[string]any) (bson.M, error) {
	doc := bson.M{}
	for k, v := range payload {
		doc[k] = v
	}
	if _, ok := doc["type"].(string); !ok {
		doc["type"] = ent.Type
	}
	if ent.Type == format.TypeEvent {
		coerceEventDates(doc)
	}

	saved, err := s.repo.Insert(ctx, ent.Collection, doc)
	if err != nil {
		return nil, err
	}
	s.cacheDel(ctx, cacheKey(ent))
	return format.Document(saved), nil
}

// Update applies a partial update and returns the formatted result.
func (s *Service) Update(ctx context.Context, ent Entity, id string, payload map[string]any) (bson.M, error) {
	set := bson.M{}
	for k, v := range payload {
		if k == "_id" || k == "id" {
			continue
		}
		set[k] = v
	}
	if ent.Type == format.TypeEvent {
		coerceEventDates(set)
	}

	doc, err := s.repo.Update(ctx, ent.Collection, id, set)
	if err != nil {
		return nil, err
	}
	s.cacheDel(ctx, cacheKey(ent))
	return format.Document(doc), nil
}

// Delete removes a document and drops the list cache.
func (s *Service) Delete(ctx context.Context, ent Entity, id string) error {
	if err := s.repo.Delete(ctx, ent.Collection, id); err != nil {
		return err
	}
	s.cacheDel(ctx, cacheKey(ent))
	return nil
}

// coerceEventDates turns the date strings the admin form submits into real
// times so sorting and display derivation work. Unparseable values are left
// as submitted.
func coerceEventDates(doc bson.M) {
	for _, field := range []string{"startDate", "endDate"} {
		s, ok := doc[field].(string)
		if !ok {
			continue
		}
		if t, ok := format.ParseLoose(s); ok {
			doc[field] = t.UTC()
		}
	}
}
