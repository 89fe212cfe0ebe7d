// Package env runs collector episodes: agents take turns moving their
// collectors over a world topology, collecting points under a cost model
// that punishes travel and re-collecting already claimed points.
package env

import (
	"fmt"
	"math"

	"collector/entity"
	"collector/meta"
	"collector/world"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Config lists what an episode is built from. It does not change between
// episodes.
type Config struct {
	PointLabels []int // Node labels of the collectable points
	AgentLabels []int // Node labels of the initial collector placements
	MaxCollect  []int // Collection budget per agent
}

type Option func(e *Env)

func WithCheatCost(cost float64) Option {
	return func(e *Env) {
		e.costs.CheatCost = cost
	}
}

func WithCaughtProbability(probability float64) Option {
	return func(e *Env) {
		e.costs.CaughtProbability = probability
	}
}

// WithStaticGraph tells whether the topology may be mutated between steps.
// A static graph has its adjacency matrix computed once.
func WithStaticGraph(static bool) Option {
	return func(e *Env) {
		e.staticGraph = static
	}
}

func WithSeed(seed uint64) Option {
	return func(e *Env) {
		e.seed = seed
	}
}

type Env struct {
	topology        world.Topology
	cfg             Config
	costs           CostModel
	staticGraph     bool
	cachedAdjacency [][]float64
	pointAt         map[int]int // Node label -> point index
	possibleAgents  []AgentID
	scheduler       *Scheduler
	seed            uint64
	rng             *rand.Rand

	// Set in Reset
	hasReset   bool
	episode    string
	points     []*entity.Point
	collectors []*entity.Collector
	records    []AgentRecord
	terminated bool
	truncated  bool
	iteration  int
}

// New creates an environment over topology. Call Reset before stepping.
func New(topology world.Topology, cfg Config, options ...Option) (*Env, error) {
	e := &Env{
		topology: topology,
		cfg: Config{
			PointLabels: append([]int(nil), cfg.PointLabels...),
			AgentLabels: append([]int(nil), cfg.AgentLabels...),
			MaxCollect:  append([]int(nil), cfg.MaxCollect...),
		},
		costs: CostModel{
			CheatCost:         meta.DEFAULT_CHEAT_COST,
			CaughtProbability: meta.DEFAULT_CAUGHT_PROBABILITY,
		},
		staticGraph: true,
		seed:        meta.DEFAULT_SEED,
	}
	for _, option := range options {
		option(e)
	}
	if err := e.validate(); err != nil {
		return nil, err
	}

	e.pointAt = make(map[int]int, len(e.cfg.PointLabels))
	for i, label := range e.cfg.PointLabels {
		e.pointAt[label] = i
	}
	e.possibleAgents = make([]AgentID, len(e.cfg.AgentLabels))
	for i := range e.possibleAgents {
		e.possibleAgents[i] = AgentID(i)
	}
	e.scheduler = NewScheduler(e.possibleAgents)
	e.rng = rand.New(rand.NewSource(e.seed))
	return e, nil
}

// NewGraphEnv creates an environment on a graph. Actions are node labels and
// an action naming a non-neighbor is a zero reward no-op.
func NewGraphEnv(graph *world.Graph, cfg Config, options ...Option) (*Env, error) {
	if graph == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "graph is nil")
	}
	return New(graph, cfg, options...)
}

// NewPlaneEnv creates an environment on the continuous plane. Actions are
// point indices and any other action is invalid.
func NewPlaneEnv(pointPositions, agentPositions []world.Vec2, maxCollect []int, options ...Option) (*Env, error) {
	plane := world.NewPlane(pointPositions, agentPositions)
	cfg := Config{
		PointLabels: make([]int, len(pointPositions)),
		AgentLabels: make([]int, len(agentPositions)),
		MaxCollect:  maxCollect,
	}
	for i := range cfg.PointLabels {
		cfg.PointLabels[i] = i
	}
	for i := range cfg.AgentLabels {
		cfg.AgentLabels[i] = plane.StartNode(i)
	}
	return New(plane, cfg, options...)
}

func (e *Env) validate() error {
	if e.topology == nil {
		return errors.Wrap(ErrInvalidConfig, "topology is nil")
	}
	if len(e.cfg.AgentLabels) == 0 {
		return errors.Wrap(ErrInvalidConfig, "at least one agent is required")
	}
	if len(e.cfg.MaxCollect) != len(e.cfg.AgentLabels) {
		return errors.Wrapf(ErrInvalidConfig, "%d collection budgets for %d agents", len(e.cfg.MaxCollect), len(e.cfg.AgentLabels))
	}
	order := e.topology.Order()
	seen := make(map[int]bool, len(e.cfg.PointLabels))
	for _, label := range e.cfg.PointLabels {
		if label < 0 || label >= order {
			return errors.Wrapf(ErrInvalidConfig, "point label %d outside 0..%d", label, order-1)
		}
		if seen[label] {
			return errors.Wrapf(ErrInvalidConfig, "duplicate point label %d", label)
		}
		seen[label] = true
	}
	for i, label := range e.cfg.AgentLabels {
		if label < 0 || label >= order {
			return errors.Wrapf(ErrInvalidConfig, "agent %d placed on label %d outside 0..%d", i, label, order-1)
		}
	}
	for i, budget := range e.cfg.MaxCollect {
		if budget < 0 {
			return errors.Wrapf(ErrInvalidConfig, "agent %d has negative collection budget %d", i, budget)
		}
	}
	if e.costs.CheatCost < 0 || math.IsNaN(e.costs.CheatCost) || math.IsInf(e.costs.CheatCost, 0) {
		return errors.Wrapf(ErrInvalidConfig, "cheat cost %v", e.costs.CheatCost)
	}
	if !(e.costs.CaughtProbability >= 0 && e.costs.CaughtProbability <= 1) {
		return errors.Wrapf(ErrInvalidConfig, "caught probability %v outside [0, 1]", e.costs.CaughtProbability)
	}
	return nil
}

// Reset starts a new episode and returns the initial observation of every
// agent. A seed reseeds the random source used for action sampling.
func (e *Env) Reset(seed ...uint64) map[AgentID]Observation {
	if len(seed) > 0 {
		e.seed = seed[0]
		e.rng = rand.New(rand.NewSource(e.seed))
	}

	e.scheduler.Reset()
	e.collectors = make([]*entity.Collector, len(e.cfg.AgentLabels))
	for i, label := range e.cfg.AgentLabels {
		e.collectors[i] = entity.NewCollector(label, e.topology.Position(label))
	}
	e.points = make([]*entity.Point, len(e.cfg.PointLabels))
	for i, label := range e.cfg.PointLabels {
		e.points[i] = entity.NewPoint(label, e.topology.Position(label))
	}
	e.records = make([]AgentRecord, len(e.possibleAgents))
	e.cachedAdjacency = nil
	e.terminated = false
	e.truncated = false
	e.iteration = 0
	e.episode = uuid.NewString()
	e.hasReset = true

	log.Debug().Str("episode", e.episode).Uint64("seed", e.seed).Int("agents", len(e.possibleAgents)).Int("points", len(e.points)).Msg("episode reset")

	observations := make(map[AgentID]Observation, len(e.possibleAgents))
	for _, agent := range e.possibleAgents {
		observations[agent], _ = e.Observe(agent)
	}
	return observations
}

// Step applies action for the currently selected agent and advances the turn.
func (e *Env) Step(action Action) error {
	if !e.hasReset {
		return ErrNotReset
	}
	agent, ok := e.scheduler.Selected()
	if !ok {
		log.Debug().Str("episode", e.episode).Msg("no agent left to act")
		return nil
	}
	if e.records[agent].Done() {
		e.deadStep(agent)
		return nil
	}

	collector := e.collectors[agent]
	reward, err := e.apply(agent, collector, action)
	if err != nil {
		return err
	}

	record := &e.records[agent]
	record.Reward = reward
	record.CumulativeReward += reward
	if !record.Terminated && collector.TotalPointsCollected >= e.cfg.MaxCollect[agent] {
		record.Terminated = true
		log.Debug().Str("episode", e.episode).Stringer("agent", agent).Int("collected", collector.TotalPointsCollected).Msg("agent terminated")
	}
	e.terminated, e.truncated = e.allDone()
	e.iteration++
	e.scheduler.Next()

	log.Debug().Str("episode", e.episode).Stringer("agent", agent).Int("action", int(action)).Float64("reward", reward).Int("iteration", e.iteration).Msg("step")
	return nil
}

// apply validates action, moves the collector and collects a point at the
// destination. It returns the reward of the move.
func (e *Env) apply(agent AgentID, collector *entity.Collector, action Action) (float64, error) {
	lenient := e.topology.MovePolicy() == world.AttemptedMoves
	if action == NoAction && lenient {
		return 0, nil
	}
	if action < 0 || int(action) >= e.topology.Actions() {
		return 0, errors.Wrapf(ErrInvalidAction, "action %d for %s, expected 0..%d", action, agent, e.topology.Actions()-1)
	}

	destination := int(action)
	if !e.topology.HasEdge(collector.Label, destination) {
		if lenient {
			return 0, nil
		}
		return 0, errors.Wrapf(ErrInvalidAction, "action %d for %s is not reachable from node %d", action, agent, collector.Label)
	}

	point := e.pointAtLabel(destination)
	reward, err := e.costs.Reward(e.topology, collector, destination, point)
	if err != nil {
		return 0, err
	}
	collector.Move(destination, e.topology.Position(destination))
	// Only collect after the reward has been computed
	if point != nil {
		collector.Collect(point)
	}
	return reward, nil
}

// deadStep retires an agent that can no longer act and passes the turn on.
func (e *Env) deadStep(agent AgentID) {
	e.scheduler.Retire(agent)
	next, ok := e.scheduler.Next()
	event := log.Debug().Str("episode", e.episode).Stringer("agent", agent)
	if ok {
		event = event.Stringer("next", next)
	}
	event.Msg("dead step")
}

func (e *Env) allDone() (terminated, truncated bool) {
	terminated, truncated = true, true
	for _, r := range e.records {
		terminated = terminated && r.Terminated
		truncated = truncated && r.Truncated
	}
	return terminated, truncated
}

func (e *Env) pointAtLabel(label int) *entity.Point {
	i, ok := e.pointAt[label]
	if !ok {
		return nil
	}
	return e.points[i]
}

func (e *Env) known(agent AgentID) bool {
	return agent >= 0 && int(agent) < len(e.possibleAgents)
}

// Truncate forces the truncation flag of agent. It is never set by the
// environment itself.
func (e *Env) Truncate(agent AgentID) error {
	if !e.hasReset {
		return ErrNotReset
	}
	if !e.known(agent) {
		return errors.Wrapf(ErrUnknownAgent, "%s", agent)
	}
	e.records[agent].Truncated = true
	e.terminated, e.truncated = e.allDone()
	log.Debug().Str("episode", e.episode).Stringer("agent", agent).Msg("agent truncated")
	return nil
}

// SampleAction draws a legal action for agent from the environment's random
// source. It reports false when the agent cannot move anywhere.
func (e *Env) SampleAction(agent AgentID) (Action, bool, error) {
	if !e.hasReset {
		return NoAction, false, ErrNotReset
	}
	if !e.known(agent) {
		return NoAction, false, errors.Wrapf(ErrUnknownAgent, "%s", agent)
	}
	action, ok := e.topology.SampleLegalAction(e.collectors[agent].Label, e.rng)
	if !ok {
		return NoAction, false, nil
	}
	return Action(action), true, nil
}

// AgentSelection returns the agent that acts on the next Step.
func (e *Env) AgentSelection() (AgentID, bool) {
	if !e.hasReset {
		return 0, false
	}
	return e.scheduler.Selected()
}

// Agents returns the agents still in the turn order.
func (e *Env) Agents() []AgentID {
	return e.scheduler.Active()
}

func (e *Env) PossibleAgents() []AgentID {
	return append([]AgentID(nil), e.possibleAgents...)
}

func (e *Env) Record(agent AgentID) (AgentRecord, error) {
	if !e.hasReset {
		return AgentRecord{}, ErrNotReset
	}
	if !e.known(agent) {
		return AgentRecord{}, errors.Wrapf(ErrUnknownAgent, "%s", agent)
	}
	return e.records[agent], nil
}

// Done reports whether agent is terminated or truncated.
func (e *Env) Done(agent AgentID) bool {
	return e.hasReset && e.known(agent) && e.records[agent].Done()
}

func (e *Env) Rewards() map[AgentID]float64 {
	return e.collect(func(r AgentRecord) float64 { return r.Reward })
}

func (e *Env) CumulativeRewards() map[AgentID]float64 {
	return e.collect(func(r AgentRecord) float64 { return r.CumulativeReward })
}

func (e *Env) Terminations() map[AgentID]bool {
	return e.flags(func(r AgentRecord) bool { return r.Terminated })
}

func (e *Env) Truncations() map[AgentID]bool {
	return e.flags(func(r AgentRecord) bool { return r.Truncated })
}

func (e *Env) collect(field func(AgentRecord) float64) map[AgentID]float64 {
	values := make(map[AgentID]float64, len(e.records))
	for i, r := range e.records {
		values[AgentID(i)] = field(r)
	}
	return values
}

func (e *Env) flags(field func(AgentRecord) bool) map[AgentID]bool {
	values := make(map[AgentID]bool, len(e.records))
	for i, r := range e.records {
		values[AgentID(i)] = field(r)
	}
	return values
}

// Terminated reports whether every agent is terminated.
func (e *Env) Terminated() bool {
	return e.terminated
}

// Truncated reports whether every agent is truncated.
func (e *Env) Truncated() bool {
	return e.truncated
}

// Iteration is the number of steps taken this episode, dead steps excluded.
func (e *Env) Iteration() int {
	return e.iteration
}

// Episode identifies the current episode in logs and metrics.
func (e *Env) Episode() string {
	return e.episode
}

func (e *Env) Seed() uint64 {
	return e.seed
}

func (e *Env) Topology() world.Topology {
	return e.topology
}

func (e *Env) Costs() CostModel {
	return e.costs
}

func (e *Env) MaxCollect(agent AgentID) int {
	if !e.known(agent) {
		return 0
	}
	return e.cfg.MaxCollect[agent]
}

// Collector returns a copy of the collector of agent.
func (e *Env) Collector(agent AgentID) (entity.Collector, error) {
	if !e.hasReset {
		return entity.Collector{}, ErrNotReset
	}
	if !e.known(agent) {
		return entity.Collector{}, errors.Wrapf(ErrUnknownAgent, "%s", agent)
	}
	return e.collectors[agent].Copy(), nil
}

func (e *Env) String() string {
	return fmt.Sprintf("Env{episode=%s agents=%d points=%d iteration=%d}", e.episode, len(e.possibleAgents), len(e.cfg.PointLabels), e.iteration)
}
