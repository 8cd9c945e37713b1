package pulse

// Handle coordinates the start and finish phases of one event occurrence
// across every matching subscriber. The subscriber set is resolved once at
// construction and reused for both phases, so a subscription change between
// Start and Finish does not unbalance the occurrence.
//
// Handles are cheap single-use values and must not be shared across
// goroutines.
type Handle struct {
	groups []dispatchGroup
}

// newHandle resolves the listeners for name and buckets them into one
// dispatch group per discipline, ordered by first appearance so dispatch
// keeps the registration order between disciplines.
func newHandle(b *Bus, name, id string, payload Payload) *Handle {
	listeners := b.listenersFor(name)

	byDisc := make(map[Discipline][]*Subscriber)
	var order []Discipline
	for _, s := range listeners {
		d := s.disc
		if _, seen := byDisc[d]; !seen {
			order = append(order, d)
		}
		byDisc[d] = append(byDisc[d], s)
	}

	groups := make([]dispatchGroup, 0, len(order))
	for _, d := range order {
		groups = append(groups, newGroup(d, byDisc[d], b.clock, name, id, payload))
	}
	return &Handle{groups: groups}
}

// Start begins the occurrence in every group. All groups are attempted even
// when one fails; failures follow the dispatch error contract described in
// the package docs.
func (h *Handle) Start() error {
	var failures errorList
	for _, g := range h.groups {
		failures.call(g.start)
	}
	return failures.err()
}

// Finish completes the occurrence in every group, in the same order Start
// used. Callers should finish a handle even when Start returned an error so
// subscribers that did start observe a balanced pair.
func (h *Handle) Finish() error {
	var failures errorList
	for _, g := range h.groups {
		failures.call(g.finish)
	}
	return failures.err()
}
