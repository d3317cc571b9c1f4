package goap

// Plan is an execution cursor over a resolved action sequence. It has no
// knowledge of the world; callers execute the current action and call
// Advance when it is done.
type Plan struct {
	current   *Action
	queue     []Action
	completed []Action
}

// NewPlan puts the first action in flight and queues the rest.
func NewPlan(actions []Action) *Plan {
	p := &Plan{queue: append([]Action(nil), actions...)}
	p.pull()
	return p
}

func (p *Plan) pull() {
	if len(p.queue) == 0 {
		p.current = nil
		return
	}
	next := p.queue[0]
	p.queue = p.queue[1:]
	p.current = &next
}

// Current returns the action in flight.
func (p *Plan) Current() (Action, bool) {
	if p.current == nil {
		return Action{}, false
	}
	return *p.current, true
}

// Remaining returns the queued actions after the current one.
func (p *Plan) Remaining() []Action {
	return append([]Action(nil), p.queue...)
}

// Completed returns the actions finished so far, oldest first.
func (p *Plan) Completed() []Action {
	return append([]Action(nil), p.completed...)
}

// Advance marks the current action completed and moves the next queued
// action in flight. It returns the new current action, if any.
func (p *Plan) Advance() (Action, bool) {
	if p.current != nil {
		p.completed = append(p.completed, *p.current)
	}
	p.pull()
	return p.Current()
}

// IsComplete reports whether nothing is in flight or queued.
func (p *Plan) IsComplete() bool {
	return p.current == nil && len(p.queue) == 0
}

// Invalidate drops the current and queued actions, forcing the caller to
// replan. Completed history is kept.
func (p *Plan) Invalidate() {
	p.current = nil
	p.queue = nil
}
