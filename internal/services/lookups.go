package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tramitesplus/cuadre-api/internal/database/db"
	"github.com/tramitesplus/cuadre-api/internal/models"
)

// Cache keys of the lookup lists.
const (
	cacheKeyAsesores         = "asesores"
	cacheKeyColores          = "colores"
	cacheKeyEmitidoPorColors = "emitido_por_colors"
)

func optionsCacheKey(kind db.OptionKind) string {
	return "options:" + string(kind)
}

// LookupStore persists the dropdown tables.
type LookupStore interface {
	ListAsesores(ctx context.Context) ([]models.Asesor, error)
	CreateAsesor(ctx context.Context, name string) (models.Asesor, error)
	DeleteAsesor(ctx context.Context, id string) error
	ListColores(ctx context.Context) ([]models.Color, error)
	CreateColor(ctx context.Context, name, hex string) (models.Color, error)
	DeleteColor(ctx context.Context, id string) error
	ListOptions(ctx context.Context, kind db.OptionKind) ([]models.NamedOption, error)
	ListEmitidoPorWithColors(ctx context.Context) ([]models.OptionWithColor, error)
	CreateOption(ctx context.Context, kind db.OptionKind, nombre string, color *string) (models.NamedOption, error)
	DeleteOption(ctx context.Context, kind db.OptionKind, id string) error
}

// LookupService serves the lookup tables through a read-through cache.
// Cache failures are logged and fall back to the store.
type LookupService struct {
	store  LookupStore
	cache  Cache
	ttl    time.Duration
	events Publisher
	log    zerolog.Logger
}

func NewLookupService(store LookupStore, cache Cache, ttl time.Duration, events Publisher, log zerolog.Logger) *LookupService {
	return &LookupService{
		store:  store,
		cache:  cache,
		ttl:    ttl,
		events: events,
		log:    log.With().Str("component", "lookups").Logger(),
	}
}

// cached loads key from the cache or calls load and stores the result.
func cached[T any](ctx context.Context, s *LookupService, key string, load func(ctx context.Context) ([]T, error)) ([]T, error) {
	var out []T
	hit, err := s.cache.GetObject(ctx, key, &out)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("lookup cache read failed")
	}
	if hit {
		return out, nil
	}

	out, err = load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetObject(ctx, key, out, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("lookup cache write failed")
	}
	return out, nil
}

func (s *LookupService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Strs("keys", keys).Msg("lookup cache invalidation failed")
	}
}

func (s *LookupService) created(ctx context.Context, entity string, value any, keys ...string) {
	s.invalidate(ctx, keys...)
	s.events.Publish(EventLookupCreated, map[string]any{"entity": entity, "item": value})
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidEdit)
	}
	return name, nil
}

func (s *LookupService) ListAsesores(ctx context.Context) ([]models.Asesor, error) {
	return cached(ctx, s, cacheKeyAsesores, s.store.ListAsesores)
}

func (s *LookupService) CreateAsesor(ctx context.Context, name string) (models.Asesor, error) {
	name, err := requireName(name)
	if err != nil {
		return models.Asesor{}, err
	}
	a, err := s.store.CreateAsesor(ctx, name)
	if err != nil {
		return models.Asesor{}, err
	}
	s.created(ctx, "asesores", a, cacheKeyAsesores)
	return a, nil
}

func (s *LookupService) DeleteAsesor(ctx context.Context, id string) error {
	if err := s.store.DeleteAsesor(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cacheKeyAsesores)
	return nil
}

func (s *LookupService) ListColores(ctx context.Context) ([]models.Color, error) {
	return cached(ctx, s, cacheKeyColores, s.store.ListColores)
}

func (s *LookupService) CreateColor(ctx context.Context, name, hex string) (models.Color, error) {
	name, err := requireName(name)
	if err != nil {
		return models.Color{}, err
	}
	c, err := s.store.CreateColor(ctx, name, hex)
	if err != nil {
		return models.Color{}, err
	}
	s.created(ctx, "colores", c, cacheKeyColores, cacheKeyEmitidoPorColors)
	return c, nil
}

func (s *LookupService) DeleteColor(ctx context.Context, id string) error {
	if err := s.store.DeleteColor(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cacheKeyColores, cacheKeyEmitidoPorColors)
	return nil
}

func (s *LookupService) ListOptions(ctx context.Context, kind db.OptionKind) ([]models.NamedOption, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown lookup %q", kind)
	}
	return cached(ctx, s, optionsCacheKey(kind), func(ctx context.Context) ([]models.NamedOption, error) {
		return s.store.ListOptions(ctx, kind)
	})
}

func (s *LookupService) ListEmitidoPorWithColors(ctx context.Context) ([]models.OptionWithColor, error) {
	return cached(ctx, s, cacheKeyEmitidoPorColors, s.store.ListEmitidoPorWithColors)
}

func (s *LookupService) CreateOption(ctx context.Context, kind db.OptionKind, nombre string, color *string) (models.NamedOption, error) {
	if !kind.Valid() {
		return models.NamedOption{}, fmt.Errorf("unknown lookup %q", kind)
	}
	nombre, err := requireName(nombre)
	if err != nil {
		return models.NamedOption{}, err
	}
	o, err := s.store.CreateOption(ctx, kind, nombre, color)
	if err != nil {
		return models.NamedOption{}, err
	}
	s.created(ctx, string(kind), o, optionsCacheKey(kind), cacheKeyEmitidoPorColors)
	return o, nil
}

func (s *LookupService) DeleteOption(ctx context.Context, kind db.OptionKind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown lookup %q", kind)
	}
	if err := s.store.DeleteOption(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx, optionsCacheKey(kind), cacheKeyEmitidoPorColors)
	return nil
}
