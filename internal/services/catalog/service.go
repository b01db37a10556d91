package catalog

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/metrics"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const loadTimeout = 15 * time.Second

var ErrNoStore = errors.New("product store is not connected")

type ProductLister interface {
	FindAll(ctx context.Context) ([]models.Product, error)
}

// Snapshot is the product list as served to readers.
type Snapshot struct {
	Products []models.Product `json:"products"`
	Fallback bool             `json:"fallback"`
	LoadedAt time.Time        `json:"loadedAt"`
}

type Options struct {
	TTL         time.Duration
	UseFallback bool
	Fallback    []models.Product
	Metrics     *metrics.Metrics
}

// Service caches the product list. Concurrent misses share one database read,
// and a read that started before Invalidate is never stored.
type Service struct {
	source   ProductLister
	ttl      time.Duration
	fallback []models.Product
	useFB    bool
	metrics  *metrics.Metrics
	now      func() time.Time

	mu         sync.Mutex
	cached     *Snapshot
	expires    time.Time
	generation uint64
	group      singleflight.Group
}

func NewService(source ProductLister, opts Options) *Service {
	fallback := make([]models.Product, len(opts.Fallback))
	copy(fallback, opts.Fallback)
	for i := range fallback {
		fallback[i].Normalize()
	}
	return &Service{
		source:   source,
		ttl:      opts.TTL,
		fallback: fallback,
		useFB:    opts.UseFallback,
		metrics:  opts.Metrics,
		now:      time.Now,
	}
}

func (s *Service) Products(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.cached != nil && s.now().Before(s.expires) {
		snap := s.cached.clone()
		s.mu.Unlock()
		s.count(func(m *metrics.Metrics) { m.CacheHits.Inc() })
		return snap, nil
	}
	gen := s.generation
	s.mu.Unlock()

	s.count(func(m *metrics.Metrics) { m.CacheMisses.Inc() })
	v, err, _ := s.group.Do(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		return s.load(ctx, gen)
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(*Snapshot).clone(), nil
}

func (s *Service) load(ctx context.Context, gen uint64) (*Snapshot, error) {
	// shared by every caller waiting on this flight
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
	defer cancel()

	var (
		products []models.Product
		err      error
	)
	if s.source == nil {
		err = ErrNoStore
	} else {
		products, err = s.source.FindAll(loadCtx)
	}
	if err != nil || len(products) == 0 {
		if !s.useFB {
			if err != nil {
				return nil, err
			}
			return s.store(gen, &Snapshot{Products: []models.Product{}, LoadedAt: s.now()}), nil
		}
		entry := logrus.WithField("fallback_products", len(s.fallback))
		if err != nil {
			entry.WithError(err).Warn("Product store unavailable, serving bundled catalog")
		} else {
			entry.Info("Product store is empty, serving bundled catalog")
		}
		s.count(func(m *metrics.Metrics) { m.CacheFallbacks.Inc() })
		snap := &Snapshot{Products: s.fallback, Fallback: true, LoadedAt: s.now()}
		if err != nil {
			// not cached: the next read retries the store
			return snap, nil
		}
		return s.store(gen, snap), nil
	}
	return s.store(gen, &Snapshot{Products: products, LoadedAt: s.now()}), nil
}

func (s *Service) store(gen uint64, snap *Snapshot) *Snapshot {
	if s.ttl <= 0 {
		return snap
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.cached = snap
		s.expires = s.now().Add(s.ttl)
	}
	return snap
}

// Invalidate drops the cached list. Call it after every product mutation.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.generation++
	s.cached = nil
	s.mu.Unlock()
}

// Search returns the filtered and sorted catalog.
func (s *Service) Search(ctx context.Context, f Filter) (Snapshot, error) {
	snap, err := s.Products(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Products = Apply(snap.Products, f)
	return snap, nil
}

func (s *Service) Product(ctx context.Context, id string) (models.Product, bool, error) {
	snap, err := s.Products(ctx)
	if err != nil {
		return models.Product{}, false, err
	}
	p, ok := FindByID(snap.Products, id)
	return p, ok, nil
}

func (s *Service) count(fn func(*metrics.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

func (snap *Snapshot) clone() Snapshot {
	out := *snap
	out.Products = slices.Clone(snap.Products)
	if out.Products == nil {
		out.Products = []models.Product{}
	}
	return out
}
