// meta/meta.go
package meta

// DEFAULT_CHEAT_COST is the cost of being caught collecting an already collected point.
const DEFAULT_CHEAT_COST = 500.0

// DEFAULT_CAUGHT_PROBABILITY is the probability of being caught cheating.
const DEFAULT_CAUGHT_PROBABILITY = 0.5

// MAX_STEPS is the step budget after which the engine truncates an episode.
const MAX_STEPS = 1000

// DEFAULT_SEED seeds the environment when no seed is configured.
const DEFAULT_SEED = 0

// EPISODES defines how many episodes the CLI runs per scenario.
const EPISODES = 1
