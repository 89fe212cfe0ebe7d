package metrics

import (
	"time"
)

// StepMetric describes one step of an episode.
type StepMetric struct {
	Step      int // Iteration after the step, 0 for dead steps
	Agent     int
	Action    int
	Reward    float64
	Collected int // Points collected by the agent so far
	Cheated   int // Points re-collected by the agent so far
	Dead      bool
}

// Summary is the outcome of an episode as reported by the environment.
type Summary struct {
	Terminated            bool
	Truncated             bool
	Steps                 int
	TotalPointsCollected  int
	UniquePointsCollected int
	Cheated               int
	TotalReward           float64
}

type EpisodeMetric struct {
	Episode   string // Episode identifier
	Seed      uint64
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Summary
}

type Collector interface {
	Start(episode string, seed uint64)
	AddStep(step StepMetric)
	Complete(summary Summary) (EpisodeMetric, []StepMetric)
}

type collector struct {
	episode   string
	seed      uint64
	startTime time.Time
	steps     []StepMetric
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(episode string, seed uint64) {
	m.episode = episode
	m.seed = seed
	m.startTime = time.Now()
	m.steps = nil
}

func (m *collector) AddStep(step StepMetric) {
	m.steps = append(m.steps, step)
}

func (m *collector) Complete(summary Summary) (EpisodeMetric, []StepMetric) {
	end := time.Now()
	return EpisodeMetric{
		Episode:   m.episode,
		Seed:      m.seed,
		StartTime: m.startTime,
		EndTime:   end,
		Duration:  end.Sub(m.startTime),
		Summary:   summary,
	}, m.steps
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(episode string, seed uint64) {}
func (m *dummyCollector) AddStep(step StepMetric)           {}
func (m *dummyCollector) Complete(summary Summary) (EpisodeMetric, []StepMetric) {
	return EpisodeMetric{}, nil
}
