package interaction

import (
	"sync"

	"github.com/joshua-takyi/entcal/internal/models"
)

// Callbacks are invoked outside the page lock. Any of them may be nil.
type Callbacks struct {
	ShowPreview func(ev models.Event)
	HidePreview func()
	// OpenDetail receives clickTriggered=true when an explicit click opened it.
	OpenDetail func(ev models.Event, clickTriggered bool)
}

// Page owns the hover preview and the single open detail view for a set of
// mounted items. Once a detail view is open, by click or by hover expiry,
// further hover transitions are ignored until Close.
type Page struct {
	mu             sync.Mutex
	cfg            Config
	cb             Callbacks
	items          map[string]*Item
	events         map[string]models.Event
	preview        *models.Event
	selected       *models.Event
	clickTriggered bool
	dismiss        Timer
	dismissGen     uint64
}

func NewPage(cfg Config, cb Callbacks) *Page {
	return &Page{
		cfg:    cfg.withDefaults(),
		cb:     cb,
		items:  make(map[string]*Item),
		events: make(map[string]models.Event),
	}
}

// Mount registers ev and returns its item. Mounting an id again replaces
// and disposes the previous item.
func (p *Page) Mount(ev models.Event) *Item {
	item := NewItem(p.cfg, nil)
	item.onOpen = func() { p.open(ev, item) }

	p.mu.Lock()
	old := p.items[ev.ID]
	p.items[ev.ID] = item
	p.events[ev.ID] = ev
	p.mu.Unlock()

	if old != nil {
		old.Dispose()
	}
	return item
}

// Unmount disposes the item so its timer cannot fire for an entry that is no
// longer displayed.
func (p *Page) Unmount(id string) {
	p.mu.Lock()
	item := p.items[id]
	delete(p.items, id)
	delete(p.events, id)
	p.mu.Unlock()

	if item != nil {
		item.Dispose()
	}
}

func (p *Page) Enter(id string) {
	item, ev, ok := p.lookup(id)
	if !ok {
		return
	}

	p.mu.Lock()
	open := p.selected != nil
	p.mu.Unlock()
	if open {
		return
	}
	item.PointerEnter()

	p.mu.Lock()
	if !p.previewAllowedLocked() {
		p.mu.Unlock()
		return
	}
	p.cancelDismissLocked()
	p.preview = &ev
	p.mu.Unlock()

	if p.cb.ShowPreview != nil {
		p.cb.ShowPreview(ev)
	}
}

func (p *Page) Leave(id string) {
	item, _, ok := p.lookup(id)
	if !ok {
		return
	}
	item.PointerLeave()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.previewAllowedLocked() || p.preview == nil {
		return
	}
	p.cancelDismissLocked()
	gen := p.dismissGen
	p.dismiss = p.cfg.Clock.AfterFunc(p.cfg.PreviewDismissDelay, func() { p.dismissPreview(gen) })
}

func (p *Page) Click(id string) {
	item, _, ok := p.lookup(id)
	if !ok {
		return
	}
	item.Click()
}

// Close dismisses the detail view and resets every item and flag.
func (p *Page) Close() {
	p.mu.Lock()
	p.selected = nil
	p.preview = nil
	p.clickTriggered = false
	p.cancelDismissLocked()
	items := make([]*Item, 0, len(p.items))
	for _, it := range p.items {
		items = append(items, it)
	}
	p.mu.Unlock()

	for _, it := range items {
		it.Close()
	}
}

// Dispose tears down every item and the dismiss timer.
func (p *Page) Dispose() {
	p.mu.Lock()
	p.cancelDismissLocked()
	items := p.items
	p.items = make(map[string]*Item)
	p.events = make(map[string]models.Event)
	p.mu.Unlock()

	for _, it := range items {
		it.Dispose()
	}
}

func (p *Page) Selected() (models.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return models.Event{}, false
	}
	return *p.selected, true
}

func (p *Page) Preview() (models.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.preview == nil {
		return models.Event{}, false
	}
	return *p.preview, true
}

func (p *Page) ClickTriggered() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clickTriggered
}

func (p *Page) open(ev models.Event, item *Item) {
	p.mu.Lock()
	if p.items[ev.ID] != item {
		p.mu.Unlock()
		return
	}
	if p.selected != nil {
		p.mu.Unlock()
		// another detail view is already open
		item.Close()
		return
	}
	clicked := p.cfg.Mode == ModeClick
	p.selected = &ev
	p.clickTriggered = clicked
	hadPreview := p.preview != nil
	p.preview = nil
	p.cancelDismissLocked()
	p.mu.Unlock()

	if hadPreview && p.cb.HidePreview != nil {
		p.cb.HidePreview()
	}
	if p.cb.OpenDetail != nil {
		p.cb.OpenDetail(ev, clicked)
	}
}

func (p *Page) dismissPreview(gen uint64) {
	p.mu.Lock()
	if gen != p.dismissGen || p.preview == nil {
		p.mu.Unlock()
		return
	}
	p.dismiss = nil
	p.preview = nil
	p.mu.Unlock()

	if p.cb.HidePreview != nil {
		p.cb.HidePreview()
	}
}

// previewAllowedLocked reports whether hover may drive the preview: only in
// hover mode, and never while a detail view is open or after a click.
func (p *Page) previewAllowedLocked() bool {
	return p.cfg.Mode == ModeHover && !p.clickTriggered && p.selected == nil
}

func (p *Page) cancelDismissLocked() {
	if p.dismiss != nil {
		p.dismiss.Stop()
		p.dismiss = nil
	}
	p.dismissGen++
}

func (p *Page) lookup(id string) (*Item, models.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	item, ok := p.items[id]
	if !ok {
		return nil, models.Event{}, false
	}
	return item, p.events[id], true
}
