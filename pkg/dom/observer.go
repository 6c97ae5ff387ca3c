package dom

// RecordType is the kind of a mutation record.
type RecordType string

const (
	RecordChildList     RecordType = "childList"
	RecordAttributes    RecordType = "attributes"
	RecordCharacterData RecordType = "characterData"
)

// Record describes one mutation.
type Record struct {
	Type          RecordType
	Target        *Node
	Added         []*Node
	Removed       []*Node
	AttributeName string
	OldValue      string
}

// ObserveOptions selects which mutations an observer receives.
type ObserveOptions struct {
	ChildList     bool
	Attributes    bool
	CharacterData bool
	Subtree       bool
}

// Observer collects mutation records for the nodes it observes and
// delivers them in batches.
type Observer struct {
	callback  func([]Record)
	schedule  func(func())
	records   []Record
	scheduled bool
	targets   []*Node
}

type registration struct {
	obs  *Observer
	opts ObserveOptions
}

// NewObserver creates an observer. Batches are delivered through schedule
// (typically a microtask queue). With a nil schedule records accumulate
// until TakeRecords or Deliver is called.
func NewObserver(callback func([]Record), schedule func(func())) *Observer {
	return &Observer{callback: callback, schedule: schedule}
}

// Observe starts observing target with opts. Observing the same target
// again replaces its options.
func (o *Observer) Observe(target *Node, opts ObserveOptions) {
	for _, r := range target.observers {
		if r.obs == o {
			r.opts = opts
			return
		}
	}
	target.observers = append(target.observers, &registration{obs: o, opts: opts})
	o.targets = append(o.targets, target)
}

// Disconnect stops observing every target and drops pending records.
func (o *Observer) Disconnect() {
	for _, t := range o.targets {
		for i, r := range t.observers {
			if r.obs == o {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				break
			}
		}
	}
	o.targets = nil
	o.records = nil
}

// TakeRecords returns and clears the pending records.
func (o *Observer) TakeRecords() []Record {
	recs := o.records
	o.records = nil
	return recs
}

// Deliver invokes the callback with the pending records, if any.
func (o *Observer) Deliver() {
	o.scheduled = false
	recs := o.TakeRecords()
	if len(recs) > 0 && o.callback != nil {
		o.callback(recs)
	}
}

func (o *Observer) enqueue(rec Record) {
	o.records = append(o.records, rec)
	if o.schedule != nil && !o.scheduled {
		o.scheduled = true
		o.schedule(o.Deliver)
	}
}

func (opts ObserveOptions) wants(t RecordType) bool {
	switch t {
	case RecordChildList:
		return opts.ChildList
	case RecordAttributes:
		return opts.Attributes
	case RecordCharacterData:
		return opts.CharacterData
	}
	return false
}

// notify routes rec to every observer registered on target or, for subtree
// registrations, on one of its ancestors within the same tree.
func notify(target *Node, rec *Record) {
	var seen []*Observer
	for cur := target; cur != nil; cur = cur.parent {
		for _, r := range cur.observers {
			if cur != target && !r.opts.Subtree {
				continue
			}
			if !r.opts.wants(rec.Type) {
				continue
			}
			dup := false
			for _, s := range seen {
				if s == r.obs {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			seen = append(seen, r.obs)
			r.obs.enqueue(*rec)
		}
	}
}
