package table

// LayoutObserver receives capsule swaps published by UpdateLayout.
// Readers and writers use this to refresh per-layout caches.
type LayoutObserver interface {
	// OnLayoutUpdate is called after the new capsule is published. Both
	// capsules are immutable; the old one stays valid for any holder.
	OnLayoutUpdate(old, current *Capsule)
}

// Subscribe registers an observer for layout updates.
func (t *Handle) Subscribe(o LayoutObserver) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes a previously registered observer.
func (t *Handle) Unsubscribe(o LayoutObserver) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Handle) notify(old, current *Capsule) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnLayoutUpdate(old, current)
	}
}
