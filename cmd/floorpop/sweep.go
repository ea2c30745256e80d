package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"runtime"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lawnchairsociety/floorpop/internal/populate"
)

var (
	sweepLayout   string
	sweepDepth    int
	sweepRuns     int
	sweepParallel int
	sweepSeed     int64
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Populate one depth over many seeds and report balance statistics",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&sweepLayout, "layout", "data/layouts/crypt.yaml", "Path to floor layout YAML file")
	sweepCmd.Flags().IntVar(&sweepDepth, "depth", 1, "Floor depth")
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 200, "Number of seeds to run")
	sweepCmd.Flags().IntVar(&sweepParallel, "parallel", runtime.NumCPU(), "Maximum concurrent runs")
	sweepCmd.Flags().Int64Var(&sweepSeed, "seed", 1, "First seed; run i uses seed+i")
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", sweepRuns)
	}
	env, err := loadEnvironment(cfg, sweepLayout)
	if err != nil {
		return err
	}

	summaries, err := sweep(cmd.Context(), env, sweepDepth, sweepSeed, sweepRuns, sweepParallel)
	if err != nil {
		return err
	}
	writeSweepReport(cmd.OutOrStdout(), sweepDepth, summarize(summaries))
	return nil
}

// sweep populates runs floors concurrently. Each run has its own populator
// and world, so results depend only on the seed.
func sweep(ctx context.Context, env *environment, depth int, firstSeed int64, runs, parallel int) ([]*populate.Summary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	summaries := make([]*populate.Summary, runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for i := 0; i < runs; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := populate.New(env.catalog, populate.Options{Tuning: env.tuning, IndependentFloors: true})
			req, _ := env.floorRequest(firstSeed+int64(i), depth, false)
			s, err := p.Populate(req)
			if err != nil {
				return fmt.Errorf("seed %d: %w", firstSeed+int64(i), err)
			}
			summaries[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// sweepStats aggregates a sweep.
type sweepStats struct {
	Runs             int
	MeanCreatures    float64
	MinCreatures     int
	MaxCreatures     int
	MeanEncounters   float64
	MeanUtilization  float64
	MeanItems        float64
	MeanGold         float64
	MissingExit      int
	OutOfDepthFloors int
	UniqueFloors     int
	Warnings         int
	Themes           map[string]int
}

func summarize(summaries []*populate.Summary) sweepStats {
	st := sweepStats{Themes: make(map[string]int)}
	for _, s := range summaries {
		if s == nil {
			continue
		}
		st.Runs++
		st.MeanCreatures += float64(s.CreaturesSpawned)
		st.MeanEncounters += float64(s.EncountersPlaced)
		st.MeanUtilization += s.Utilization()
		st.MeanItems += float64(s.ItemsPlaced)
		st.MeanGold += float64(s.GoldPlaced)
		if st.Runs == 1 || s.CreaturesSpawned < st.MinCreatures {
			st.MinCreatures = s.CreaturesSpawned
		}
		st.MaxCreatures = max(st.MaxCreatures, s.CreaturesSpawned)
		if !s.ExitPlaced {
			st.MissingExit++
		}
		if s.OutOfDepth != "" {
			st.OutOfDepthFloors++
		}
		if len(s.Uniques) > 0 {
			st.UniqueFloors++
		}
		st.Warnings += len(s.Warnings)
		for theme, n := range s.ThemeDistribution {
			st.Themes[theme] += n
		}
	}
	if st.Runs > 0 {
		n := float64(st.Runs)
		st.MeanCreatures /= n
		st.MeanEncounters /= n
		st.MeanUtilization /= n
		st.MeanItems /= n
		st.MeanGold /= n
	}
	return st
}

func writeSweepReport(w io.Writer, depth int, st sweepStats) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "depth\t%d\n", depth)
	fmt.Fprintf(tw, "runs\t%d\n", st.Runs)
	fmt.Fprintf(tw, "creatures\tmean %.2f\tmin %d\tmax %d\n", st.MeanCreatures, st.MinCreatures, st.MaxCreatures)
	fmt.Fprintf(tw, "encounters\tmean %.2f\n", st.MeanEncounters)
	fmt.Fprintf(tw, "utilization\tmean %.1f%%\n", st.MeanUtilization*100)
	fmt.Fprintf(tw, "items\tmean %.2f\n", st.MeanItems)
	fmt.Fprintf(tw, "gold\tmean %.1f\n", st.MeanGold)
	fmt.Fprintf(tw, "missing exit\t%d\n", st.MissingExit)
	fmt.Fprintf(tw, "out-of-depth floors\t%d\n", st.OutOfDepthFloors)
	fmt.Fprintf(tw, "floors with uniques\t%d\n", st.UniqueFloors)
	fmt.Fprintf(tw, "warnings\t%d\n", st.Warnings)
	for _, theme := range slices.Sorted(maps.Keys(st.Themes)) {
		fmt.Fprintf(tw, "theme %s\t%d regions\n", theme, st.Themes[theme])
	}
	tw.Flush()
}
