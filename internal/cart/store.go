package cart

import "sync"

type Action string

const (
	ActionAddItem        Action = "ADD_ITEM"
	ActionUpdateQuantity Action = "UPDATE_QUANTITY"
	ActionRemoveItem     Action = "REMOVE_ITEM"
	ActionClearCart      Action = "CLEAR_CART"
)

// Change is delivered to subscribers after a command has been applied.
// Line is the line that was added, updated or removed; it is the zero
// value for ActionClearCart.
type Change struct {
	Action Action
	Line   LineItem
	State  State
}

// Store holds the items of one cart. Commands are applied atomically and
// subscribers are called after the lock has been released, so a subscriber
// may read the store or issue further commands.
type Store struct {
	mu    sync.Mutex
	items []LineItem

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(Change))}
}

// AddItem merges one unit of in into the line with the same variant key,
// or appends a new line. Display fields of an existing line are not touched.
func (s *Store) AddItem(in ItemInput) {
	s.mu.Lock()
	idx := s.indexOfKey(in.Key())
	if idx >= 0 {
		s.items[idx].Quantity++
	} else {
		s.items = append(s.items, in.lineItem())
		idx = len(s.items) - 1
	}
	line := s.items[idx].clone()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(Change{Action: ActionAddItem, Line: line, State: state})
}

// UpdateQuantity sets the quantity of the first line with the given product
// id. A quantity of zero or less removes that line.
func (s *Store) UpdateQuantity(id int, quantity int) {
	s.mu.Lock()
	idx := s.indexOfID(id)
	s.setQuantityLocked(idx, quantity)
}

// RemoveItem removes the first line with the given product id.
func (s *Store) RemoveItem(id int) {
	s.mu.Lock()
	idx := s.indexOfID(id)
	s.removeLocked(idx)
}

// UpdateLineQuantity is UpdateQuantity addressed by the full variant key.
func (s *Store) UpdateLineQuantity(key VariantKey, quantity int) {
	s.mu.Lock()
	idx := s.indexOfKey(key)
	s.setQuantityLocked(idx, quantity)
}

// RemoveLine is RemoveItem addressed by the full variant key.
func (s *Store) RemoveLine(key VariantKey) {
	s.mu.Lock()
	idx := s.indexOfKey(key)
	s.removeLocked(idx)
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(Change{Action: ActionClearCart, State: state})
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total, _ := totals(s.items)
	return total
}

func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, count := totals(s.items)
	return count
}

// Subscribe registers fn for every applied change. The returned function
// removes the subscription and is safe to call more than once.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// setQuantityLocked expects s.mu held and releases it.
func (s *Store) setQuantityLocked(idx int, quantity int) {
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	if quantity <= 0 {
		s.removeLocked(idx)
		return
	}
	s.items[idx].Quantity = quantity
	line := s.items[idx].clone()
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(Change{Action: ActionUpdateQuantity, Line: line, State: state})
}

// removeLocked expects s.mu held and releases it.
func (s *Store) removeLocked(idx int) {
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	line := s.items[idx].clone()
	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	state := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(Change{Action: ActionRemoveItem, Line: line, State: state})
}

func (s *Store) indexOfID(id int) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfKey(key VariantKey) int {
	for i, it := range s.items {
		if it.Key().Equal(key) {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() State {
	items := make([]LineItem, len(s.items))
	for i, it := range s.items {
		items[i] = it.clone()
	}
	total, count := totals(items)
	return State{Items: items, Total: total, ItemCount: count}
}

func (s *Store) notify(c Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}
