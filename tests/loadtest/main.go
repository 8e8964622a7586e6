package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/services"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/Duffman2k/duffvouchbot/internal/testutil"
	"github.com/alicebob/miniredis/v2"
)

const (
	numWorkers   = 50
	testDuration = 5 * time.Second
	numUsers     = 200
)

type result struct {
	op      string
	latency time.Duration
	err     bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type discardLogger struct{}

func (discardLogger) Errorf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (discardLogger) Warnf(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (discardLogger) Debugf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (discardLogger) Infof(_ providers.TypeEnum, _ string, _ ...interface{})  {}
func (discardLogger) Fatalf(_ providers.TypeEnum, _ string, _ ...interface{}) {}
func (discardLogger) Close()                                                  {}

type target struct {
	name  string
	store storage.RecordStore
}

func main() {
	fmt.Println("=== Activity Ledger Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Users: %d\n", numWorkers, testDuration, numUsers)

	targets, cleanup, err := openTargets()
	if err != nil {
		fmt.Println("FAILED:", err)
		os.Exit(1)
	}
	defer cleanup()

	failed := false
	for _, tg := range targets {
		fmt.Printf("\n##### driver: %s #####\n", tg.name)
		if err := runTarget(tg); err != nil {
			fmt.Println("  CONSISTENCY FAILED:", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func openTargets() ([]target, func(), error) {
	dir, err := os.MkdirTemp("", "vouch-loadtest")
	if err != nil {
		return nil, nil, err
	}
	sqlite, err := storage.NewSQLiteStore(context.Background(), filepath.Join(dir, "ledger.db"))
	if err != nil {
		return nil, nil, err
	}
	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	rds, err := storage.NewRedisStore(context.Background(), structures.RedisConfig{Addr: mr.Addr()})
	if err != nil {
		return nil, nil, err
	}

	targets := []target{
		{name: "memory", store: storage.NewMemoryStore()},
		{name: "sqlite", store: sqlite},
		{name: "redis", store: rds},
	}
	cleanup := func() {
		for _, tg := range targets {
			_ = tg.store.Close()
		}
		mr.Close()
		_ = os.RemoveAll(dir)
	}
	return targets, cleanup, nil
}

func runTarget(tg target) error {
	conf := &structures.Config{
		Promotion: structures.PromotionConfig{RoleID: "role", Threshold: 10, Window: 36 * time.Hour},
	}
	logger := discardLogger{}
	metrics := providers.NewMetricsProvider(conf, models.NewPendingQueue())
	granter := &testutil.MockGranter{}
	evaluator := services.NewPromotionEvaluator(conf, tg.store, granter, logger, metrics)
	ledger := services.NewLedgerService(conf, tg.store, evaluator, logger, metrics)

	var recorded [numUsers]atomic.Int64

	approve := func(rng *rand.Rand) result {
		n := rng.Intn(numUsers)
		userID := fmt.Sprintf("user-%d", n)
		start := time.Now()
		_, _, err := ledger.RecordApproval(context.Background(), userID, userID, time.Now())
		lat := time.Since(start)
		if err == nil {
			recorded[n].Add(1)
		}
		return result{"RecordApproval", lat, err != nil}
	}
	read := func(rng *rand.Rand) result {
		userID := fmt.Sprintf("user-%d", rng.Intn(numUsers))
		start := time.Now()
		_, err := ledger.Activity(context.Background(), userID)
		lat := time.Since(start)
		return result{"Activity", lat, err != nil && !errors.Is(err, models.ErrNotFound)}
	}
	sweep := func(_ *rand.Rand) result {
		start := time.Now()
		_, err := ledger.Sweep(context.Background())
		return result{"Sweep", time.Since(start), err != nil}
	}

	fmt.Println("\n--- Phase 1: Approvals only ---")
	runPhase(testDuration, approve)

	fmt.Println("\n--- Phase 2: Mixed load (60% approve, 39% read, 1% sweep) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.60:
			return approve(rng)
		case r < 0.99:
			return read(rng)
		default:
			return sweep(rng)
		}
	})

	return verify(ledger, recorded[:], granter)
}

// verify checks that no approval was lost and that every user over the
// threshold was promoted exactly once.
func verify(ledger services.LedgerServiceInterface, recorded []atomic.Int64, granter *testutil.MockGranter) error {
	promoted := 0
	for i := range recorded {
		want := int(recorded[i].Load())
		if want == 0 {
			continue
		}
		rec, err := ledger.Activity(context.Background(), fmt.Sprintf("user-%d", i))
		if err != nil {
			return err
		}
		if rec.TotalApprovalsEver != want {
			return fmt.Errorf("user-%d: recorded %d approvals, ledger holds %d", i, want, rec.TotalApprovalsEver)
		}
		if rec.IsPromoted {
			promoted++
		}
	}
	if granter.Count() != promoted {
		return fmt.Errorf("%d grants issued for %d promoted users", granter.Count(), promoted)
	}
	fmt.Printf("\n  consistent: %d promoted users, %d grants\n", promoted, granter.Count())
	return nil
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.op]
			if !ok {
				s = &stats{}
				allResults[r.op] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	ops := make([]string, 0, len(allResults))
	for op := range allResults {
		ops = append(ops, op)
	}
	sort.Strings(ops)

	fmt.Printf("\n  %-16s %8s %6s %10s %10s %10s %10s\n",
		"Operation", "Calls", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 76))

	for _, op := range ops {
		s := allResults[op]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-16s %8d %6d %10s %10s %10s %10s\n",
			op, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		return
	}
	fmt.Println("  " + strings.Repeat("-", 76))
	fmt.Printf("  Total: %d calls | Errors: %d (%.1f%%) | OPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, float64(totalOps)/duration.Seconds())
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
