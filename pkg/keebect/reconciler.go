package keebect

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// ConfiguredSet is the set of identities that have a binding. It is built once
// and never mutated, so it can be read from any goroutine.
type ConfiguredSet map[Identity]struct{}

func (s ConfiguredSet) Contains(id Identity) bool {
	_, ok := s[id]
	return ok
}

// Reconciler owns the daemon state: the bindings and the running monitors.
// Reconcile passes run one at a time under mu.
type Reconciler struct {
	mu       sync.Mutex
	bindings map[Identity]Binding
	monitors map[Identity]*Monitor
	wg       sync.WaitGroup

	configured ConfiguredSet
	source     DeviceSource
	out        chan<- ActivationEvent
	log        *zap.SugaredLogger
}

func NewReconciler(
	source DeviceSource,
	bindings []Binding,
	out chan<- ActivationEvent,
	log *zap.SugaredLogger,
) *Reconciler {
	byID := make(map[Identity]Binding, len(bindings))
	configured := make(ConfiguredSet, len(bindings))
	for _, b := range DedupeBindings(bindings) {
		byID[b.Identity] = b
		configured[b.Identity] = struct{}{}
	}

	return &Reconciler{
		bindings:   byID,
		monitors:   make(map[Identity]*Monitor),
		configured: configured,
		source:     source,
		out:        out,
		log:        log,
	}
}

func (r *Reconciler) Configured() ConfiguredSet {
	return r.configured
}

// Reconcile re-enumerates keyboards, starts monitors for configured keyboards
// that appeared and stops monitors for keyboards that are gone. Running monitors
// for keyboards still present are left alone. A monitor whose stream already
// ended counts as gone and is restarted if its keyboard is present again.
//
// Only an enumeration failure is returned. Failing to open a single device is
// logged and retried on the next pass.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keyboards, err := r.source.Enumerate()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEnumeration, err)
	}

	present := make(map[Identity]DiscoveredKeyboard, len(keyboards))
	for _, kb := range keyboards {
		if _, seen := present[kb.Identity]; !seen {
			present[kb.Identity] = kb
		}
	}

	for id, m := range r.monitors {
		_, stillPresent := present[id]
		if stillPresent && m.Alive() {
			continue
		}

		m.Stop()
		delete(r.monitors, id)
		r.log.Infow("stopped monitoring", "device", id.String(), "name", m.Name, "present", stillPresent)
	}

	for _, id := range sortedIdentities(present) {
		binding, ok := r.bindings[id]
		if !ok {
			continue
		}
		if _, running := r.monitors[id]; running {
			continue
		}

		kb := present[id]
		stream, err := r.source.Open(kb.Path)
		if err != nil {
			r.log.Warnw("skipping keyboard until next reconciliation",
				"device", id.String(), "path", kb.Path, "error", fmt.Errorf("%w: %w", ErrDeviceOpen, err))
			continue
		}

		m := StartMonitor(ctx, binding, stream, r.out, r.log)
		r.monitors[id] = m
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			<-m.Done()
		}()

		r.log.Infow("monitoring keyboard", "device", id.String(), "name", kb.Name,
			"path", kb.Path, "layout", binding.LayoutIndex)
	}

	return nil
}

// Monitored returns the identities with a running monitor, sorted.
func (r *Reconciler) Monitored() []Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]Identity, 0, len(r.monitors))
	for id := range r.monitors {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIdentity)
	return ids
}

// Shutdown stops every monitor and waits for their goroutines to exit.
func (r *Reconciler) Shutdown() {
	r.mu.Lock()
	for id, m := range r.monitors {
		m.Stop()
		delete(r.monitors, id)
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func sortedIdentities(m map[Identity]DiscoveredKeyboard) []Identity {
	ids := make([]Identity, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, compareIdentity)
	return ids
}

func compareIdentity(a, b Identity) int {
	if a.Vendor != b.Vendor {
		return int(a.Vendor) - int(b.Vendor)
	}
	return int(a.Product) - int(b.Product)
}
