package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"collector/agent"
	"collector/config"
	"collector/experiments"
	"collector/meta"

	"github.com/akamensky/argparse"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ttacon/chalk"
)

func main() {
	parser := argparse.NewParser("collector", "Multi-agent point collection episodes")

	scenario := parser.String("s", "scenario", &argparse.Options{Required: true, Help: "Scenario YAML file"})
	driver := parser.Selector("d", "driver", []string{string(agent.KindGreedy), string(agent.KindRandom)}, &argparse.Options{Default: string(agent.KindGreedy), Help: "Driver of every collector"})
	episodes := parser.Int("e", "episodes", &argparse.Options{Default: meta.EPISODES, Help: "Number of episodes"})
	seed := parser.Int("", "seed", &argparse.Options{Default: -1, Help: "Seed of the first episode, overrides COLLECTOR_SEED"})
	maxSteps := parser.Int("m", "max-steps", &argparse.Options{Default: 0, Help: "Step budget per episode, overrides COLLECTOR_MAX_STEPS"})
	report := parser.String("r", "report", &argparse.Options{Help: "Directory to write CSV metrics into"})
	envFile := parser.String("", "env-file", &argparse.Options{Default: ".env", Help: "Dotenv file with COLLECTOR_* settings"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(2)
	}

	settings, err := config.LoadEnv(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(settings.LogLevel)

	if *episodes < 1 {
		log.Fatal().Int("episodes", *episodes).Msg("at least one episode is required")
	}
	if *seed >= 0 {
		settings.Seed = uint64(*seed)
	}
	if *maxSteps > 0 {
		settings.MaxSteps = *maxSteps
	}

	s, err := config.Load(*scenario)
	if err != nil {
		log.Fatal().Err(err).Str("scenario", *scenario).Msg("failed to load scenario")
	}
	e, err := s.Build()
	if err != nil {
		log.Fatal().Err(err).Str("scenario", *scenario).Msg("failed to build environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := experiments.Run(ctx, e, experiments.Batch{
		Name:     *scenario,
		Driver:   agent.Kind(*driver),
		Episodes: *episodes,
		Seed:     settings.Seed,
		MaxSteps: settings.MaxSteps,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("batch failed")
	}

	printSummary(results)

	if *report != "" {
		dir, err := experiments.Store(*report, results)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to store report")
		}
		fmt.Println(chalk.Blue.Color("report written to " + dir))
	}
}

func printSummary(results experiments.Results) {
	for _, episode := range results.Episodes {
		outcome := chalk.Green.Color("terminated")
		if !episode.Terminated {
			outcome = chalk.Yellow.Color("truncated")
		}
		fmt.Printf("episode %d (seed %d): %s after %d steps, collected %d (%d unique, %s), reward %.2f\n",
			episode.ID,
			episode.Seed,
			outcome,
			episode.Steps,
			episode.TotalPointsCollected,
			episode.UniquePointsCollected,
			cheated(episode.Cheated),
			episode.TotalReward,
		)
	}
}

func cheated(n int) string {
	text := fmt.Sprintf("%d cheated", n)
	if n > 0 {
		return chalk.Red.Color(text)
	}
	return text
}
