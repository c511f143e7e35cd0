//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/blendin/extractor/pkg/parser"
	"github.com/blendin/extractor/pkg/source"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/scan.go <path>\n")
		os.Exit(1)
	}

	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	src, err := source.NewLocalSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "source error: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	result, err := parser.Extract(ctx, src, parser.WithCacheSize(-1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "extract error: %v\n", err)
		os.Exit(1)
	}

	output := map[string]interface{}{
		"filesDiscovered": result.Stats.FilesDiscovered,
		"filesParsed":     result.Stats.FilesParsed,
		"filesFailed":     result.Stats.FilesFailed,
		"callSites":       result.Stats.CallSites,
		"entries":         result.Map.Len(),
		"duplicates":      result.Stats.Duplicates,
		"dynamic":         result.Stats.DynamicArguments,
		"duration":        result.Stats.Duration.String(),
		"errorsByPhase":   countPhases(result),
	}
	json.NewEncoder(os.Stdout).Encode(output)
}

func countPhases(result *parser.ExtractResult) map[string]int {
	counts := make(map[string]int)
	for _, e := range result.Errors {
		counts[e.Phase]++
	}
	return counts
}
