package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/huggypanda/backend/internal/domain/aggregate"
	"github.com/huggypanda/backend/internal/domain/gateway"
	"github.com/huggypanda/backend/internal/infrastructure/config"
	"github.com/huggypanda/backend/internal/infrastructure/logging"
	"github.com/huggypanda/backend/internal/infrastructure/monitoring"
	"github.com/huggypanda/backend/internal/infrastructure/resilience"
	"github.com/huggypanda/backend/internal/infrastructure/sessionstore"
	"github.com/huggypanda/backend/internal/infrastructure/tracing"
	"github.com/huggypanda/backend/internal/providers/brave"
	"github.com/huggypanda/backend/internal/providers/localmodel"
	"github.com/huggypanda/backend/internal/providers/nyt"
	"github.com/huggypanda/backend/internal/providers/spotify"
	"github.com/huggypanda/backend/internal/providers/tmdb"
	"github.com/huggypanda/backend/internal/providers/tripadvisor"
	"github.com/huggypanda/backend/internal/providers/wiki"
	"github.com/huggypanda/backend/internal/shared/types"
)

// providerSet holds one client per upstream
type providerSet struct {
	localModel *localmodel.Provider
	brave      *brave.Provider
	wiki       *wiki.Provider
	tmdb       *tmdb.Provider
	spotify    *spotify.Provider
	travel     *tripadvisor.Provider
	nyt        *nyt.Provider
}

func newProviders(cfg *config.Config) providerSet {
	p := cfg.Providers
	return providerSet{
		localModel: localmodel.NewProvider(localmodel.Config{
			BaseURL:   p.LocalModelURL,
			Model:     p.LocalModelName,
			Timeout:   p.LocalModelTimeout,
			RateLimit: p.RateLimit,
		}),
		brave: brave.NewProvider(brave.Config{
			BaseURL:    p.BraveURL,
			SearchKey:  p.BraveSearchKey,
			SuggestKey: p.BraveSuggestKey,
			Email:      p.Email,
			ImageCount: cfg.Layout.ImageCap,
			RateLimit:  p.RateLimit,
		}),
		wiki: wiki.NewProvider(wiki.Config{
			BaseURL:   p.WikiURL,
			Limit:     p.WikiLimit,
			Email:     p.Email,
			RateLimit: p.RateLimit,
			Timeout:   p.UniversalTimeout,
		}),
		tmdb: tmdb.NewProvider(tmdb.Config{
			BaseURL:   p.TMDBURL,
			Token:     p.TMDBKey,
			Email:     p.Email,
			RateLimit: p.RateLimit,
			Timeout:   p.UniversalTimeout,
		}),
		spotify: spotify.NewProvider(spotify.Config{
			BaseURL:      p.SpotifyURL,
			AuthURL:      p.SpotifyAuthURL,
			ClientID:     p.SpotifyClientID,
			ClientSecret: p.SpotifyClientSecret,
			Limit:        p.SpotifyLimit,
			RateLimit:    p.RateLimit,
			Timeout:      p.UniversalTimeout,
		}),
		travel: tripadvisor.NewProvider(tripadvisor.Config{
			BaseURL:   p.TripAdvisorURL,
			Key:       p.TripAdvisorKey,
			Email:     p.Email,
			Limit:     p.TripAdvisorLimit,
			RateLimit: p.RateLimit,
			Timeout:   p.UniversalTimeout,
		}),
		nyt: nyt.NewProvider(nyt.Config{
			BaseURL:   p.NYTURL,
			Key:       p.NYTKey,
			Email:     p.Email,
			RateLimit: p.RateLimit,
			Timeout:   p.NewsTimeout,
		}),
	}
}

// gatewayWiring decorates every backend with the shared breaker set,
// tracer, metrics and logger.
type gatewayWiring struct {
	breakers *resilience.Set
	tracer   *tracing.Tracer
	metrics  *monitoring.Metrics
	logger   *logging.Logger
}

func (w gatewayWiring) wrap(backend gateway.Backend, timeout time.Duration) *gateway.Gateway {
	return gateway.New(backend, timeout).
		WithBreaker(w.breakers.Get(backend.Source().String())).
		WithTracer(w.tracer).
		WithMetrics(w.metrics).
		WithLogger(w.logger)
}

// registerSources configures both modes. Universal widgets follow the
// order declared in the sources file.
func registerSources(agg *aggregate.Aggregator, p providerSet, sources *config.Sources, cfg *config.Config, w gatewayWiring, logger *logging.Logger) error {
	t := cfg.Providers

	search := []aggregate.Caller{
		w.wrap(p.localModel, t.LocalModelTimeout),
		w.wrap(p.brave.Web(), t.WebTimeout),
	}
	for _, sub := range sources.Universal {
		var backend gateway.Backend
		switch sub {
		case types.SubkindEncyclopedia:
			backend = p.wiki
		case types.SubkindMusic:
			backend = p.spotify
		case types.SubkindMedia:
			backend = p.tmdb
		case types.SubkindTravel:
			backend = p.travel
		default:
			logger.Warn("No provider for universal subkind, skipping", zap.String("subkind", sub))
			continue
		}
		search = append(search, w.wrap(backend, t.UniversalTimeout))
	}
	search = append(search,
		w.wrap(p.brave.Images(), t.ImageTimeout),
		w.wrap(p.brave.News(), t.NewsTimeout),
	)

	if err := agg.Register(types.ModeSearch, search...); err != nil {
		return err
	}
	return agg.Register(types.ModeHome, w.wrap(p.nyt, t.NewsTimeout))
}

// boundedValidator caps each validation round trip
type boundedValidator struct {
	store   sessionstore.Store
	timeout time.Duration
}

func (v boundedValidator) Validate(ctx context.Context, token string) (types.Validity, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}
	return v.store.Validate(ctx, token)
}
