/*
File: mock.go
Description: Mock AFL campaign generator. Builds a realistic sync directory
with per-instance fuzzer_stats, plot_data history, queue entries, and
AFL-style crash files, so the monitor, dashboard, and demos have something to
chew on without running afl-fuzz. Live instances use the generator's own PID
so the process checker reports them alive.
*/

package mock

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Config controls campaign generation.
type Config struct {
	OutputDir string  // Sync directory to create
	Fuzzers   int     // Number of instances
	Crashes   int     // Maximum crashes per instance
	DeadRatio float64 // Fraction of instances generated with a dead PID
	Seed      int64   // Zero seeds from the clock
}

// Generate writes a complete mock campaign.
func Generate(config Config, log *logrus.Logger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.Fuzzers <= 0 {
		config.Fuzzers = 4
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i := 0; i < config.Fuzzers; i++ {
		name := instanceName(i)
		dead := rng.Float64() < config.DeadRatio
		if err := generateInstance(config, rng, name, dead); err != nil {
			return fmt.Errorf("failed to generate instance %s: %w", name, err)
		}
		log.WithFields(logrus.Fields{"instance": name, "dead": dead}).Debug("Generated mock instance")
	}

	log.WithFields(logrus.Fields{
		"dir":     config.OutputDir,
		"fuzzers": config.Fuzzers,
	}).Info("Mock campaign generated")
	return nil
}

// instanceName follows the main/secondary naming convention of parallel AFL
// runs, suffixed with a short unique id so repeated generations never collide.
func instanceName(index int) string {
	short := strings.Split(uuid.NewString(), "-")[0]
	if index == 0 {
		return "main-" + short
	}
	return fmt.Sprintf("secondary%02d-%s", index, short)
}

func generateInstance(config Config, rng *rand.Rand, name string, dead bool) error {
	dir := filepath.Join(config.OutputDir, name)
	for _, sub := range []string{"queue", "crashes", "hangs"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return err
		}
	}

	pid := os.Getpid()
	if dead {
		// A PID from the far end of the default pid_max range is almost
		// certainly unused.
		pid = 4_000_000 + rng.Intn(100_000)
	}

	crashes := 0
	if config.Crashes > 0 {
		crashes = rng.Intn(config.Crashes + 1)
	}

	now := time.Now().Unix()
	start := now - int64(3600+rng.Intn(36000))
	execs := int64(100_000 + rng.Intn(5_000_000))
	corpus := 50 + rng.Intn(450)

	stats := buildStats(statsParams{
		name:    name,
		pid:     pid,
		now:     now,
		start:   start,
		execs:   execs,
		corpus:  corpus,
		crashes: crashes,
		hangs:   rng.Intn(3),
		speed:   200 + rng.Float64()*1300,
		cvg:     5 + rng.Float64()*40,
		stab:    85 + rng.Float64()*14.9,
		edges:   1000 + rng.Intn(4000),
		cycles:  5 + rng.Intn(45),
	})
	if err := os.WriteFile(filepath.Join(dir, "fuzzer_stats"), []byte(stats), 0644); err != nil {
		return err
	}

	if err := writePlotData(filepath.Join(dir, "plot_data"), rng, now-start, execs, corpus, crashes); err != nil {
		return err
	}
	if err := writeQueue(filepath.Join(dir, "queue"), rng, corpus); err != nil {
		return err
	}
	return writeCrashes(filepath.Join(dir, "crashes"), rng, crashes)
}

type statsParams struct {
	name    string
	pid     int
	now     int64
	start   int64
	execs   int64
	corpus  int
	crashes int
	hangs   int
	speed   float64
	cvg     float64
	stab    float64
	edges   int
	cycles  int
}

func buildStats(p statsParams) string {
	var b strings.Builder
	write := func(key string, format string, args ...interface{}) {
		fmt.Fprintf(&b, "%-17s : ", key)
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	write("start_time", "%d", p.start)
	write("last_update", "%d", p.now)
	write("run_time", "%d", p.now-p.start)
	write("fuzzer_pid", "%d", p.pid)
	write("cycles_done", "%d", p.cycles)
	write("cycles_wo_finds", "%d", p.cycles/3)
	write("execs_done", "%d", p.execs)
	write("execs_per_sec", "%.2f", p.speed)
	write("execs_ps_last_min", "%.2f", p.speed*0.95)
	write("corpus_count", "%d", p.corpus)
	write("corpus_favored", "%d", p.corpus/3)
	write("corpus_found", "%d", p.corpus)
	write("corpus_imported", "0")
	write("max_depth", "%d", 3+p.cycles%8)
	write("pending_favs", "%d", p.corpus/20)
	write("pending_total", "%d", p.corpus/10)
	write("bitmap_cvg", "%.2f%%", p.cvg)
	write("saved_crashes", "%d", p.crashes)
	write("saved_hangs", "%d", p.hangs)
	write("last_find", "%d", p.now-600)
	write("last_crash", "%d", p.now-3600)
	write("last_hang", "0")
	write("exec_timeout", "1000")
	write("afl_banner", "%s", p.name)
	write("afl_version", "4.09c")
	write("target_mode", "default")
	write("command_line", "afl-fuzz -i input -o sync -M %s -- ./target", p.name)
	write("slowest_exec_ms", "%d", 50+p.cycles)
	write("peak_rss_mb", "%d", 50+p.corpus/2)
	write("edges_found", "%d", p.edges)
	write("total_edges", "%d", p.edges*3)
	write("stability", "%.2f%%", p.stab)
	write("total_tmout", "%d", p.execs/10000)
	return b.String()
}

// writePlotData emits a plausible monotone history ending at the current
// totals.
func writePlotData(path string, rng *rand.Rand, runtime, execs int64, corpus, crashes int) error {
	var b strings.Builder
	b.WriteString("# relative_time, cycles_done, cur_item, corpus_count, pending_total, pending_favs, total_edges, saved_crashes, saved_hangs, max_depth, execs_per_sec, total_execs, edges_found\n")

	points := 20
	for i := 1; i <= points; i++ {
		frac := float64(i) / float64(points)
		fmt.Fprintf(&b, "%d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %.2f, %d, %d\n",
			int64(float64(runtime)*frac),
			i/4,
			rng.Intn(corpus+1),
			int(float64(corpus)*frac),
			corpus/10,
			corpus/20,
			8000,
			int(float64(crashes)*frac),
			0,
			3,
			200+rng.Float64()*1000,
			int64(float64(execs)*frac),
			int(2000*frac),
		)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// writeQueue creates a handful of queue entries; generating the full corpus
// would just waste inodes.
func writeQueue(dir string, rng *rand.Rand, corpus int) error {
	entries := corpus
	if entries > 10 {
		entries = 10
	}
	for i := 0; i < entries; i++ {
		name := fmt.Sprintf("id:%06d,src:%06d,time:%d,execs:%d,op:havoc,rep:%d",
			i, rng.Intn(corpus+1), rng.Intn(100000), rng.Intn(1000000), 1+rng.Intn(8))
		data := make([]byte, 4+rng.Intn(60))
		rng.Read(data)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return err
		}
	}
	return nil
}

// writeCrashes emits AFL-style crash files, each starting with the classic
// trigger so they reproduce against the bundled demo target.
func writeCrashes(dir string, rng *rand.Rand, crashes int) error {
	for i := 0; i < crashes; i++ {
		name := fmt.Sprintf("id:%06d,sig:06,src:%06d,time:%d,execs:%d,op:havoc,rep:%d",
			i, rng.Intn(500), rng.Intn(100000), rng.Intn(1000000), 1+rng.Intn(8))
		payload := append([]byte("AFL!"), make([]byte, rng.Intn(40))...)
		rng.Read(payload[4:])
		if err := os.WriteFile(filepath.Join(dir, name), payload, 0644); err != nil {
			return err
		}
	}
	return nil
}
