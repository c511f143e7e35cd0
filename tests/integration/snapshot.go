//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/blendin/extractor/pkg/domain"
	"github.com/blendin/extractor/pkg/parser"
)

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Snapshot is the golden form of one fixture extraction. Records are the
// canonical JSON of every entry, sorted, so the snapshot does not depend on
// the digest algorithm.
type Snapshot struct {
	Fixture    string        `json:"fixture"`
	HashLength int           `json:"hashLength"`
	Records    []string      `json:"records"`
	Stats      SnapshotStats `json:"stats"`
}

// SnapshotStats contains extraction statistics for comparison.
type SnapshotStats struct {
	CallSites        int `json:"callSites"`
	DynamicArguments int `json:"dynamicArguments"`
	Duplicates       int `json:"duplicates"`
	FilesDiscovered  int `json:"filesDiscovered"`
	FilesFailed      int `json:"filesFailed"`
	FilesParsed      int `json:"filesParsed"`
	MissingArguments int `json:"missingArguments"`
}

// SnapshotFromResult creates a Snapshot from an extraction result.
func SnapshotFromResult(fixture Fixture, result *parser.ExtractResult) *Snapshot {
	records := make([]string, 0, result.Map.Len())
	hashLength := 0
	result.Map.Range(func(hash string, record domain.TextRecord) bool {
		records = append(records, record.String())
		hashLength = len(hash)
		return true
	})
	sort.Strings(records)

	return &Snapshot{
		Fixture:    fixture.Name,
		HashLength: hashLength,
		Records:    records,
		Stats: SnapshotStats{
			CallSites:        result.Stats.CallSites,
			DynamicArguments: result.Stats.DynamicArguments,
			Duplicates:       result.Stats.Duplicates,
			FilesDiscovered:  result.Stats.FilesDiscovered,
			FilesFailed:      result.Stats.FilesFailed,
			FilesParsed:      result.Stats.FilesParsed,
			MissingArguments: result.Stats.MissingArguments,
		},
	}
}

// SaveSnapshot saves a snapshot to the golden directory.
func SaveSnapshot(snapshot *Snapshot) error {
	goldenDir, err := getGoldenDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(goldenDir, 0755); err != nil {
		return fmt.Errorf("create golden dir: %w", err)
	}

	path := filepath.Join(goldenDir, snapshotFilename(snapshot.Fixture))
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot loads a snapshot from the golden directory.
func LoadSnapshot(fixtureName string) (*Snapshot, error) {
	goldenDir, err := getGoldenDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(goldenDir, snapshotFilename(fixtureName))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s (run with -update to create)", path)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snapshot, nil
}

// SnapshotDiff represents differences between expected and actual snapshots.
type SnapshotDiff struct {
	HashLengthDiff bool
	MissingRecords []string
	ExtraRecords   []string
	StatsDiff      map[string]CountDiff
}

// CountDiff represents the difference in a single statistic.
type CountDiff struct {
	Expected int
	Actual   int
}

// IsEmpty returns true if there are no differences.
func (d *SnapshotDiff) IsEmpty() bool {
	return !d.HashLengthDiff &&
		len(d.MissingRecords) == 0 &&
		len(d.ExtraRecords) == 0 &&
		len(d.StatsDiff) == 0
}

// String returns a human-readable diff summary.
func (d *SnapshotDiff) String() string {
	if d.IsEmpty() {
		return "no differences"
	}

	var sb strings.Builder

	if d.HashLengthDiff {
		sb.WriteString("  hash length changed\n")
	}

	names := make([]string, 0, len(d.StatsDiff))
	for name := range d.StatsDiff {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		diff := d.StatsDiff[name]
		sb.WriteString(fmt.Sprintf("  %s: expected %d, got %d\n", name, diff.Expected, diff.Actual))
	}

	writeRecords(&sb, "missing", "-", d.MissingRecords)
	writeRecords(&sb, "extra", "+", d.ExtraRecords)

	return sb.String()
}

func writeRecords(sb *strings.Builder, label, prefix string, records []string) {
	if len(records) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("  %s records (%d):\n", label, len(records)))
	for i, r := range records {
		if i == 10 {
			sb.WriteString(fmt.Sprintf("    ... and %d more\n", len(records)-10))
			break
		}
		sb.WriteString(fmt.Sprintf("    %s %s\n", prefix, r))
	}
}

// CompareSnapshots compares an expected snapshot with an actual one.
func CompareSnapshots(expected *Snapshot, actual *Snapshot) *SnapshotDiff {
	diff := &SnapshotDiff{
		HashLengthDiff: expected.HashLength != actual.HashLength,
		StatsDiff:      make(map[string]CountDiff),
	}

	compareCount(diff, "callSites", expected.Stats.CallSites, actual.Stats.CallSites)
	compareCount(diff, "dynamicArguments", expected.Stats.DynamicArguments, actual.Stats.DynamicArguments)
	compareCount(diff, "duplicates", expected.Stats.Duplicates, actual.Stats.Duplicates)
	compareCount(diff, "filesDiscovered", expected.Stats.FilesDiscovered, actual.Stats.FilesDiscovered)
	compareCount(diff, "filesFailed", expected.Stats.FilesFailed, actual.Stats.FilesFailed)
	compareCount(diff, "filesParsed", expected.Stats.FilesParsed, actual.Stats.FilesParsed)
	compareCount(diff, "missingArguments", expected.Stats.MissingArguments, actual.Stats.MissingArguments)

	expectedRecords := make(map[string]bool)
	for _, r := range expected.Records {
		expectedRecords[r] = true
	}

	actualRecords := make(map[string]bool)
	for _, r := range actual.Records {
		actualRecords[r] = true
	}

	for r := range expectedRecords {
		if !actualRecords[r] {
			diff.MissingRecords = append(diff.MissingRecords, r)
		}
	}

	for r := range actualRecords {
		if !expectedRecords[r] {
			diff.ExtraRecords = append(diff.ExtraRecords, r)
		}
	}

	sort.Strings(diff.MissingRecords)
	sort.Strings(diff.ExtraRecords)

	return diff
}

func compareCount(diff *SnapshotDiff, name string, expected, actual int) {
	if expected != actual {
		diff.StatsDiff[name] = CountDiff{Expected: expected, Actual: actual}
	}
}

func getGoldenDir() (string, error) {
	testDataDir, err := getTestDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(testDataDir, "golden"), nil
}

func snapshotFilename(fixtureName string) string {
	return unsafePathChars.ReplaceAllString(fixtureName, "_") + ".json"
}
