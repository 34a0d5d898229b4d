package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type siteContext struct {
	ActiveTenant *struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"active_tenant"`
	IsPlatformMode            bool `json:"is_platform_mode"`
	IsDeveloperOverrideActive bool `json:"is_developer_override_active"`
}

type result struct {
	host   string
	status int
	ctx    siteContext
	err    error
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the site server")
	hostList := flag.String("hosts", "", "Comma separated hostnames to probe")
	hostFile := flag.String("file", "", "File with one hostname per line")
	concurrency := flag.Int("c", 4, "Number of concurrent probes")
	rps := flag.Float64("rps", 20, "Requests per second limit")
	timeout := flag.Duration("timeout", 5*time.Second, "Per request timeout")
	flag.Parse()

	hosts, err := collectHosts(*hostList, *hostFile)
	if err != nil {
		log.Fatalf("read hosts: %v", err)
	}
	if len(hosts) == 0 {
		log.Fatal("no hosts given, use -hosts or -file")
	}

	log.Printf("Probing %d hosts against %s", len(hosts), *baseURL)

	client := &http.Client{Timeout: *timeout}
	limiter := rate.NewLimiter(rate.Limit(*rps), 1)

	var mu sync.Mutex
	results := make([]result, 0, len(hosts))

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)
	for _, host := range hosts {
		host := host
		g.Go(func() error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			res := probe(ctx, client, *baseURL, host)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("probe aborted: %v", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].host < results[j].host })

	failed := 0
	for _, r := range results {
		switch {
		case r.err != nil:
			failed++
			fmt.Printf("%-40s error: %v\n", r.host, r.err)
		case r.status != http.StatusOK:
			failed++
			fmt.Printf("%-40s status %d\n", r.host, r.status)
		case r.ctx.ActiveTenant == nil:
			fmt.Printf("%-40s platform%s\n", r.host, overrideNote(r.ctx))
		default:
			fmt.Printf("%-40s school %d (%s)%s\n", r.host, r.ctx.ActiveTenant.ID, r.ctx.ActiveTenant.Name, overrideNote(r.ctx))
		}
	}

	log.Printf("Probed %d hosts, %d failed", len(results), failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func probe(ctx context.Context, client *http.Client, baseURL, host string) result {
	res := result{host: host}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/api/site", nil)
	if err != nil {
		res.err = err
		return res
	}
	req.Host = host
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		res.err = err
		return res
	}
	defer resp.Body.Close()

	res.status = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		res.err = json.NewDecoder(resp.Body).Decode(&res.ctx)
	}
	return res
}

func collectHosts(list, file string) ([]string, error) {
	var hosts []string
	for _, h := range strings.Split(list, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				hosts = append(hosts, line)
			}
		}
	}
	return hosts, nil
}

func overrideNote(c siteContext) string {
	if c.IsDeveloperOverrideActive {
		return " [developer override]"
	}
	return ""
}
