package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/tokenauth"
	"github.com/MrEthical07/tokenauth/credential"
)

const loadtestSecret = "loadtest-secret"

func main() {
	var (
		identities  = flag.Int("identities", 1000, "number of identities to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		validateOps = flag.Int("validate-ops", 200000, "token validations to run")
		loginOps    = flag.Int("login-ops", 2000, "logins to run (each pays one argon2id verification)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "ta-loadtest", "redis key prefix")
	)
	flag.Parse()

	if *identities <= 0 || *concurrency <= 0 || *validateOps <= 0 || *loginOps < 0 {
		fmt.Fprintln(os.Stderr, "identities, concurrency, and validate-ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := tokenauth.DefaultConfig()
	cfg.JWT.SigningKey = []byte("loadtest-signing-key-0123456789ab")
	cfg.JWT.Issuer = "tokenauth-loadtest"
	cfg.JWT.Audience = "tokenauth-loadtest"
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Security.RedisPrefix = *prefix
	// Every worker logs in successfully; the throttle would only add one
	// round trip per login.
	cfg.Security.EnableLoginThrottle = false

	store := credential.NewRedisStore(client, *prefix)
	engine, err := tokenauth.New().WithConfig(cfg).WithIdentityStore(store).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	hash, err := engine.PasswordHasher().Hash(loadtestSecret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash: %v\n", err)
		os.Exit(1)
	}

	ids := make([]string, *identities)
	tokens := make([]string, *identities)
	fmt.Printf("seeding %d identities...\n", *identities)
	startSeed := time.Now()
	for i := 0; i < *identities; i++ {
		id := credential.Identity{
			ID:         int64(i + 1),
			Identifier: fmt.Sprintf("user-%d@loadtest.local", i),
			SecretHash: hash,
			GivenName:  "load",
			FamilyName: fmt.Sprintf("test-%d", i),
		}
		if err := store.Put(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		token, err := engine.Issue(ctx, id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		ids[i] = id.Identifier
		tokens[i] = token
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	validateStats := runPhase(*validateOps, *concurrency, func(r *rand.Rand) error {
		_, err := engine.Validate(ctx, tokens[r.IntN(len(tokens))])
		return err
	})
	loginStats := runPhase(*loginOps, *concurrency, func(r *rand.Rand) error {
		_, err := engine.Login(ctx, ids[r.IntN(len(ids))], loadtestSecret)
		return err
	})

	fmt.Println("---- results ----")
	printStats("validate", validateStats)
	printStats("login", loginStats)
}

// runPhase spreads ops calls of op across concurrency workers and records the
// latency of every call.
func runPhase(ops, concurrency int, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    atomic.Int64
		failures  atomic.Int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(worker)*7919))
			local := make([]time.Duration, 0, ops/concurrency+1)
			for {
				if int(cursor.Add(1)) > ops {
					break
				}
				t0 := time.Now()
				err := op(r)
				local = append(local, time.Since(t0))
				if err != nil {
					failures.Add(1)
				}
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures.Load())
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
