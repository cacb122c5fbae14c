package generation

import "github.com/rayvoidx/creator-onboarding-agent-sub000/core"

// Slot names one of the four logical model roles.
type Slot string

const (
	SlotDefault  Slot = "default"
	SlotFast     Slot = "fast"
	SlotDeep     Slot = "deep"
	SlotFallback Slot = "fallback"
)

// deepTasks are task hints that route to the deep slot alongside the
// explicit complexity='deep' hint.
var deepTasks = map[string]bool{"analysis": true, "code": true, "reasoning": true}

// Registry maps up to four logical slots to concrete (client, model name)
// pairs, keyed by canonical model name for explicit overrides.
type Registry struct {
	bySlot  map[Slot]binding
	byModel map[string]binding
	logger  core.Logger
}

type binding struct {
	client ModelClient
	model  string
}

// NewRegistry builds an empty registry.
func NewRegistry(logger core.Logger) *Registry {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Registry{
		bySlot:  make(map[Slot]binding),
		byModel: make(map[string]binding),
		logger:  logger,
	}
}

// Bind registers a client for the given slot and canonical model name. A
// model name may be bound to more than one slot (e.g. the same model
// serving both default and fast).
func (r *Registry) Bind(slot Slot, modelName string, client ModelClient) {
	b := binding{client: client, model: modelName}
	r.bySlot[slot] = b
	r.byModel[modelName] = b
}

// Has reports whether a slot has a bound client.
func (r *Registry) Has(slot Slot) bool {
	_, ok := r.bySlot[slot]
	return ok
}

// Select implements the selection rule:
//  1. an explicit model_name override wins when it is registered;
//  2. else, Hints.Latency=="fast" routes to the fast slot if bound;
//  3. else, Hints.Complexity=="deep" or Hints.Task in {analysis,code,reasoning}
//     routes to the deep slot if bound;
//  4. else default -> fast -> fallback -> first available, in that order.
func (r *Registry) Select(req Request) (ModelClient, string, Slot, bool) {
	if req.ModelName != "" {
		if b, ok := r.byModel[req.ModelName]; ok {
			return b.client, b.model, "", true
		}
	}
	if req.Hints.Latency == "fast" {
		if b, ok := r.bySlot[SlotFast]; ok {
			return b.client, b.model, SlotFast, true
		}
	}
	if req.Hints.Complexity == "deep" || deepTasks[req.Hints.Task] {
		if b, ok := r.bySlot[SlotDeep]; ok {
			return b.client, b.model, SlotDeep, true
		}
	}
	for _, slot := range []Slot{SlotDefault, SlotFast, SlotFallback} {
		if b, ok := r.bySlot[slot]; ok {
			return b.client, b.model, slot, true
		}
	}
	for slot, b := range r.bySlot {
		return b.client, b.model, slot, true
	}
	return nil, "", "", false
}

// FallbackChain returns the dedup'd cascade of slots to retry after the
// selected slot's call empties or fails: [selected, default, fast,
// fallback, deep], skipping slots with no bound client and any slot
// already tried.
func (r *Registry) FallbackChain(selected Slot) []binding {
	order := []Slot{selected, SlotDefault, SlotFast, SlotFallback, SlotDeep}
	seen := map[string]bool{}
	var chain []binding
	for _, slot := range order {
		b, ok := r.bySlot[slot]
		if !ok {
			continue
		}
		if seen[b.model] {
			continue
		}
		seen[b.model] = true
		chain = append(chain, b)
	}
	return chain
}
