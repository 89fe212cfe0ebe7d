package env

import "collector/utils"

type slotState int

const (
	slotActive slotState = iota
	slotDead
)

// Scheduler selects agents in a fixed cyclic order. It owns both the order
// and the liveness of every slot, so the selection always points at an
// active agent.
type Scheduler struct {
	order  []AgentID
	states []slotState
	cursor int
}

func NewScheduler(agents []AgentID) *Scheduler {
	s := &Scheduler{
		order:  append([]AgentID(nil), agents...),
		states: make([]slotState, len(agents)),
	}
	return s
}

// Reset marks every agent active again and returns the first one.
func (s *Scheduler) Reset() (AgentID, bool) {
	for i := range s.states {
		s.states[i] = slotActive
	}
	s.cursor = 0
	return s.Selected()
}

// Selected returns the agent whose turn it is. It reports false once every
// agent has been retired.
func (s *Scheduler) Selected() (AgentID, bool) {
	if len(s.order) == 0 || s.states[s.cursor] == slotDead {
		return 0, false
	}
	return s.order[s.cursor], true
}

// Next moves the selection to the following active agent in cyclic order.
// The current agent is selected again when it is the only active one.
func (s *Scheduler) Next() (AgentID, bool) {
	n := len(s.order)
	for i := 1; i <= n; i++ {
		candidate := (s.cursor + i) % n
		if s.states[candidate] == slotActive {
			s.cursor = candidate
			return s.order[candidate], true
		}
	}
	return 0, false
}

// Retire permanently removes an agent from the turn order.
func (s *Scheduler) Retire(agent AgentID) {
	if i := utils.FindIndex(s.order, agent); i >= 0 {
		s.states[i] = slotDead
	}
}

func (s *Scheduler) IsActive(agent AgentID) bool {
	i := utils.FindIndex(s.order, agent)
	return i >= 0 && s.states[i] == slotActive
}

// Active returns the agents still in the turn order.
func (s *Scheduler) Active() []AgentID {
	active := make([]AgentID, 0, len(s.order))
	for i, agent := range s.order {
		if s.states[i] == slotActive {
			active = append(active, agent)
		}
	}
	return active
}

func (s *Scheduler) Len() int {
	return utils.Count(s.states, func(state slotState) bool { return state == slotActive })
}
