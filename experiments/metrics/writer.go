package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type EpisodeRecord struct {
	ID     int
	Driver string
	EpisodeMetric
}

type StepRecord struct {
	Episode int // EpisodeRecord.ID
	StepMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a timestamped report directory under root.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405.000000000Z")
	baseDir := filepath.Join(root, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteEpisodeRecords(records []EpisodeRecord) error {
	header := []string{"id", "episode", "driver", "seed", "start_time", "end_time", "duration", "steps",
		"terminated", "truncated", "total_collected", "unique_collected", "cheated", "total_reward"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.ID),
			record.Episode,
			record.Driver,
			strconv.FormatUint(record.Seed, 10),
			record.StartTime.Format(time.RFC3339Nano),
			record.EndTime.Format(time.RFC3339Nano),
			record.Duration.String(),
			strconv.Itoa(record.Steps),
			strconv.FormatBool(record.Terminated),
			strconv.FormatBool(record.Truncated),
			strconv.Itoa(record.TotalPointsCollected),
			strconv.Itoa(record.UniquePointsCollected),
			strconv.Itoa(record.Cheated),
			strconv.FormatFloat(record.TotalReward, 'f', -1, 64),
		}
	}
	return w.write("episodes.csv", header, rows)
}

func (w *Writer) WriteStepRecords(records []StepRecord) error {
	header := []string{"episode", "step", "agent", "action", "reward", "collected", "cheated", "dead"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Episode),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Agent),
			strconv.Itoa(record.Action),
			strconv.FormatFloat(record.Reward, 'f', -1, 64),
			strconv.Itoa(record.Collected),
			strconv.Itoa(record.Cheated),
			strconv.FormatBool(record.Dead),
		}
	}
	return w.write("steps.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", name, err)
	}
	return nil
}
