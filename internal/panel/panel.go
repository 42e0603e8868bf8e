package panel

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/model"
	"linkbox-cli/internal/mutate"
	"linkbox-cli/internal/store"
)

const msgDeleteCanceled = "Delete canceled."

// Surface is anything that renders the link list: the terminal sidebar and
// table, a browser manager tab, a CLI invocation.
type Surface interface {
	ID() string
	Send(Notice) error
}

// Confirmer asks the user a yes/no question and blocks until answered.
// An error means the prompt was abandoned and counts as "no".
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

type Options struct {
	Store   *store.LinkStore
	Logger  *zap.Logger
	Metrics *Metrics
	Folders []*store.Folder

	// Confirmer is used for surfaces that cannot prompt themselves. Nil declines.
	Confirmer Confirmer
}

// Panel applies surface intents to the link list of a scope and keeps every
// registered surface in sync.
type Panel struct {
	mu sync.Mutex

	store   *store.LinkStore
	log     *zap.Logger
	metrics *Metrics
	confirm Confirmer
	tracker *ScopeTracker

	surfMu   sync.RWMutex
	surfaces map[string]Surface
}

func New(opts Options) *Panel {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Panel{
		store:    opts.Store,
		log:      log,
		metrics:  opts.Metrics,
		confirm:  opts.Confirmer,
		tracker:  NewScopeTracker(opts.Folders),
		surfaces: map[string]Surface{},
	}
}

func (p *Panel) Tracker() *ScopeTracker { return p.tracker }

func (p *Panel) Scope() Scope { return p.tracker.Current() }

func (p *Panel) Store() *store.LinkStore { return p.store }

func (p *Panel) Register(s Surface) {
	p.surfMu.Lock()
	p.surfaces[s.ID()] = s
	n := len(p.surfaces)
	p.surfMu.Unlock()
	p.metrics.surfaceCount(n)
	p.log.Debug("surface registered", zap.String(logging.FieldSurface, s.ID()))
}

func (p *Panel) Unregister(s Surface) {
	p.surfMu.Lock()
	if cur, ok := p.surfaces[s.ID()]; ok && cur == s {
		delete(p.surfaces, s.ID())
	}
	n := len(p.surfaces)
	p.surfMu.Unlock()
	p.metrics.surfaceCount(n)
	p.log.Debug("surface unregistered", zap.String(logging.FieldSurface, s.ID()))
}

func (p *Panel) snapshotSurfaces() []Surface {
	p.surfMu.RLock()
	defer p.surfMu.RUnlock()
	out := make([]Surface, 0, len(p.surfaces))
	for _, s := range p.surfaces {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Links returns the list for scope, seeding it from legacy locations first.
func (p *Panel) Links(ctx context.Context, scope Scope) ([]model.Link, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := p.store.SeedIfEmpty(ctx, scope.Folder, scope.Key); err != nil {
		return nil, err
	}
	return p.store.Links(ctx, scope.Key)
}

// Render seeds the scope when needed and pushes its list to every surface.
func (p *Panel) Render(ctx context.Context, scope Scope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	seeded, err := p.store.SeedIfEmpty(ctx, scope.Folder, scope.Key)
	if err != nil {
		return err
	}
	if seeded {
		p.log.Info("seeded links from legacy storage", zap.String(logging.FieldKey, scope.Key))
	}
	links, err := p.store.Links(ctx, scope.Key)
	if err != nil {
		return err
	}
	p.broadcast(links)
	return nil
}

// Handle applies one intent to scope. Validation problems are reported to from
// and a declined delete sends an info notice; both return nil. Only storage
// failures are returned.
func (p *Panel) Handle(ctx context.Context, scope Scope, from Surface, in Intent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := p.log.With(zap.String(logging.FieldIntent, string(in.Type)), zap.String(logging.FieldKey, scope.Key))
	if from != nil {
		log = log.With(zap.String(logging.FieldSurface, from.ID()))
	}

	current, err := p.store.Links(ctx, scope.Key)
	if err != nil {
		p.metrics.intent(in.Type, outcomeFailed)
		return err
	}

	var next []model.Link
	switch in.Type {
	case IntentReady:
		p.metrics.intent(in.Type, outcomeReplied)
		p.reply(from, LinksNotice(current))
		return nil
	case IntentAdd:
		next, err = mutate.Add(current, in.Label, in.URL)
	case IntentEdit:
		next, err = mutate.Edit(current, in.Index, in.Label, in.URL)
	case IntentDelete:
		if in.Index < 0 || in.Index >= len(current) {
			err = mutate.ErrOutOfRange
			break
		}
		if !p.confirmDelete(ctx, from, current[in.Index]) {
			p.metrics.intent(in.Type, outcomeCanceled)
			log.Info("delete canceled", zap.Int(logging.FieldIndex, in.Index))
			p.reply(from, InfoNotice(msgDeleteCanceled))
			return nil
		}
		next, err = mutate.Delete(current, in.Index)
	case IntentMove:
		dir, ok := model.ParseDirection(in.Direction)
		if !ok {
			err = mutate.ErrNoMove
			break
		}
		next, err = mutate.MoveStep(current, in.Index, dir)
	case IntentMoveTo:
		next, err = mutate.MoveTo(current, in.FromIndex, in.ToIndex)
	default:
		log.Debug("unknown intent ignored")
		p.metrics.intent(in.Type, outcomeIgnored)
		return nil
	}

	switch {
	case err == nil:
	case mutate.IsSilent(err):
		p.metrics.intent(in.Type, outcomeIgnored)
		log.Debug("stale intent ignored", zap.Error(err))
		return nil
	case mutate.IsValidation(err):
		p.metrics.intent(in.Type, outcomeInvalid)
		p.reply(from, ErrorNotice(err.Error()))
		return nil
	default:
		p.metrics.intent(in.Type, outcomeFailed)
		return err
	}

	if err := p.store.UpdateLinks(ctx, scope.Key, next); err != nil {
		p.metrics.intent(in.Type, outcomeFailed)
		log.Error("update links failed", zap.Error(err))
		return errors.Wrapf(err, "%s", in.Type)
	}
	p.metrics.intent(in.Type, outcomeApplied)
	log.Debug("links updated", zap.Int("count", len(next)))
	p.broadcast(next)
	return nil
}

func (p *Panel) confirmDelete(ctx context.Context, from Surface, target model.Link) bool {
	c := p.confirm
	if sc, ok := from.(Confirmer); ok {
		c = sc
	}
	if c == nil {
		return false
	}
	ok, err := c.Confirm(ctx, `Delete "`+target.Label+`"?`)
	if err != nil {
		p.log.Debug("confirmation abandoned", zap.Error(err))
		return false
	}
	return ok
}

func (p *Panel) reply(to Surface, n Notice) {
	if to == nil {
		return
	}
	if err := to.Send(n); err != nil {
		p.log.Debug("send failed", zap.String(logging.FieldSurface, to.ID()), zap.Error(err))
	}
}

func (p *Panel) broadcast(links []model.Link) {
	p.metrics.broadcast()
	n := LinksNotice(links)
	for _, s := range p.snapshotSurfaces() {
		p.reply(s, n)
	}
}
