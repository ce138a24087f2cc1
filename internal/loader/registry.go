package loader

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/bibleloader/core/assets"
	"github.com/FocuswithJustin/bibleloader/core/bible"
	"github.com/FocuswithJustin/bibleloader/core/errors"
	"github.com/FocuswithJustin/bibleloader/internal/logging"
	"github.com/FocuswithJustin/bibleloader/internal/metrics"
)

// Option configures a Registry or a standalone Loader.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// WithLogger sets the logger. The default is the global logger tagged with
// component=loader.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records loads and searches on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Component("loader")
	}
	return o
}

// Status describes one available translation.
type Status struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Language    string `json:"language"`
	Registered  bool   `json:"registered"`
	Loaded      bool   `json:"loaded"`
	Loading     bool   `json:"loading"`
	SearchReady bool   `json:"search_ready"`
	InstanceID  string `json:"instance_id,omitempty"`
}

// Registry keeps at most one Loader per translation.
type Registry struct {
	src  assets.Source
	opts options

	mu      sync.Mutex
	loaders map[string]*Loader
}

// NewRegistry returns an empty registry over src.
func NewRegistry(src assets.Source, opts ...Option) *Registry {
	return &Registry{
		src:     src,
		opts:    buildOptions(opts),
		loaders: make(map[string]*Loader),
	}
}

// Get returns the loader for id, creating an unloaded one if needed. Unknown
// identifiers fail with a ConfigError.
func (r *Registry) Get(id string) (*Loader, error) {
	id = bible.NormalizeID(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.loaders[id]; ok {
		return l, nil
	}
	l, err := newLoader(id, r.src, r.opts)
	if err != nil {
		return nil, err
	}
	l.notify = r.refreshLoaded
	r.loaders[id] = l
	return l, nil
}

// Preload gets and loads each translation concurrently. One failure does not
// stop the others; all failures are returned joined.
func (r *Registry) Preload(ctx context.Context, ids ...string) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			l, err := r.Get(id)
			if err == nil {
				err = l.LoadContext(ctx)
			}
			if err != nil {
				mu.Lock()
				errs = append(errs, errors.Wrapf(err, "preload %s", bible.NormalizeID(id)))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Unload removes the loader for id and drops its data. It reports whether a
// loader was registered.
func (r *Registry) Unload(id string) bool {
	id = bible.NormalizeID(id)

	r.mu.Lock()
	l, ok := r.loaders[id]
	delete(r.loaders, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	l.Unload()
	logging.TranslationEvent(r.opts.logger, "deregistered", id)
	r.refreshLoaded()
	return true
}

// Available returns every translation the asset source provides.
func (r *Registry) Available() []string {
	return r.src.IDs()
}

// Has reports whether id is available.
func (r *Registry) Has(id string) bool {
	return r.src.Has(bible.NormalizeID(id))
}

// Loaded returns the loaded translations, sorted.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for id, l := range r.loaders {
		if l.IsLoaded() {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Status reports the state of every available translation.
func (r *Registry) Status() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.src.IDs()
	out := make([]Status, 0, len(ids))
	for _, id := range ids {
		s := Status{ID: id}
		if e, ok := r.src.Entry(id); ok {
			s.Name = e.Name
			s.Language = e.Language
		}
		if l, ok := r.loaders[id]; ok {
			s.Registered = true
			s.Loaded = l.IsLoaded()
			s.Loading = l.IsLoading()
			s.SearchReady = l.IsSearchReady()
			s.InstanceID = l.InstanceID().String()
		}
		out = append(out, s)
	}
	return out
}

// Close unloads and removes every loader.
func (r *Registry) Close() {
	r.mu.Lock()
	loaders := r.loaders
	r.loaders = make(map[string]*Loader)
	r.mu.Unlock()

	for _, l := range loaders {
		l.Unload()
	}
	r.refreshLoaded()
}

func (r *Registry) refreshLoaded() {
	if r.opts.metrics == nil {
		return
	}
	r.opts.metrics.SetLoaded(len(r.Loaded()))
}
