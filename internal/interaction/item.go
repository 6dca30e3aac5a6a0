package interaction

import "sync"

type State int

const (
	StateIdle State = iota
	StatePending
	StateOpened
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateOpened:
		return "opened"
	default:
		return "idle"
	}
}

// Item mediates click and hover activation for one calendar entry.
//
//	idle --enter(hover)--> pending --expire--> opened
//	pending --leave--> idle
//	opened --Close--> idle
//
// In click mode Click opens immediately and no timer is used. At most one
// timer is armed at a time; every transition cancels it first.
type Item struct {
	mu       sync.Mutex
	cfg      Config
	onOpen   func()
	state    State
	timer    Timer
	gen      uint64
	disposed bool
}

func NewItem(cfg Config, onOpen func()) *Item {
	return &Item{cfg: cfg.withDefaults(), onOpen: onOpen}
}

func (i *Item) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Click opens the item in click mode. Hover mode ignores it.
func (i *Item) Click() {
	i.mu.Lock()
	if i.disposed || i.cfg.Mode != ModeClick {
		i.mu.Unlock()
		return
	}
	i.cancelLocked()
	i.state = StateOpened
	i.mu.Unlock()

	i.fire()
}

// PointerEnter arms the hover timer. Re-entering while pending restarts it.
func (i *Item) PointerEnter() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.disposed || i.cfg.Mode != ModeHover || i.state == StateOpened {
		return
	}
	i.cancelLocked()
	i.state = StatePending
	gen := i.gen
	i.timer = i.cfg.Clock.AfterFunc(i.cfg.HoverOpenDelay, func() { i.expire(gen) })
}

// PointerLeave cancels a pending open.
func (i *Item) PointerLeave() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.state != StatePending {
		return
	}
	i.cancelLocked()
	i.state = StateIdle
}

// Close returns an opened item to idle.
func (i *Item) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cancelLocked()
	i.state = StateIdle
}

// Dispose cancels any pending timer. A disposed item never fires again.
func (i *Item) Dispose() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cancelLocked()
	i.disposed = true
	i.state = StateIdle
}

func (i *Item) expire(gen uint64) {
	i.mu.Lock()
	if i.disposed || gen != i.gen || i.state != StatePending {
		i.mu.Unlock()
		return
	}
	i.timer = nil
	i.state = StateOpened
	i.mu.Unlock()

	i.fire()
}

// cancelLocked stops the armed timer and invalidates its callback in case it
// is already running.
func (i *Item) cancelLocked() {
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	i.gen++
}

func (i *Item) fire() {
	if i.onOpen != nil {
		i.onOpen()
	}
}
