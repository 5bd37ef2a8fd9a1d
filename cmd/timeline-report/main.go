// Package main 时间线状态报告入口（timeline-report）
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"timeline-press/internal/application/timeline"
	"timeline-press/internal/config"
	"timeline-press/internal/domain/entity"
	"timeline-press/internal/infrastructure/persistence/statefile"
	"timeline-press/pkg/logger"
)

func main() {
	asJSON := flag.Bool("json", false, "print the raw state file instead of a report")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	store := statefile.NewStore(cfg.Timeline.StateFile)
	tracker := timeline.NewTracker(store)

	state, err := tracker.Load()
	if err != nil {
		logger.Fatal(ctx, "failed to load timeline state", err)
	}

	if *asJSON {
		data, err := store.Raw()
		if err != nil {
			logger.Fatal(ctx, "failed to read state file", err)
		}
		fmt.Println(string(data))
		return
	}

	now := time.Now()
	convergence := timeline.CalculateConvergence(state, now)

	fmt.Println("==== timeline report ====")
	fmt.Printf("articles published: %d\n", state.TotalArticlesPublished)
	for _, branch := range []entity.TimelineBranch{entity.BranchUtopia, entity.BranchDystopia} {
		bs := state.Branches[branch]
		last := "never"
		if bs.LastPublishedAt != nil {
			last = bs.LastPublishedAt.Format("2006-01-02")
		}
		fmt.Printf("  %-9s %3d articles, last published %s\n", branch, state.BranchCount(branch), last)
	}
	fmt.Printf("convergence: %.1f%%\n", convergence)
	fmt.Printf("state updated: %s\n", state.UpdatedAt.Format(time.RFC3339))
}
