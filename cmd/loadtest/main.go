package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/transport/claimdto"
)

func main() {
	url := flag.String("url", "http://localhost:8080/evaluate", "evaluate endpoint URL")
	rps := flag.Int("rps", 50, "target requests per second")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	workers := flag.Int("workers", 50, "number of concurrent workers")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	maxP90 := flag.Duration("max-p90", 30*time.Millisecond, "fail when P90 latency reaches this")
	flag.Parse()

	if *rps <= 0 || *duration <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "rps, duration and workers must be > 0")
		os.Exit(2)
	}

	mix, err := claimMix()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build claim mix: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	jobs := make(chan claimCase, *workers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]result, 0, *rps*int(duration.Seconds())+1)

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				r := send(client, *url, c)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(*rps))
	defer ticker.Stop()
	deadline := time.Now().Add(*duration)

	launched := 0
	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		jobs <- mix[launched%len(mix)]
		launched++
	}
	close(jobs)
	wg.Wait()

	s := summarize(results)
	if s.requests == 0 {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}
	s.write(os.Stdout, *rps, *duration)

	achievedRPS := float64(s.requests) / duration.Seconds()
	if achievedRPS >= float64(*rps)*0.98 && s.p90 < *maxP90 && s.healthy() {
		fmt.Printf("PASS: meets %d RPS, P90 < %s, every reason code as expected\n", *rps, *maxP90)
		return
	}

	fmt.Println("FAIL: does not meet target (or has request errors / reason mismatches)")
	os.Exit(1)
}

// send posts one claim and decodes the reason code from the decision.
func send(client *http.Client, url string, c claimCase) result {
	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(c.body))
	if err != nil {
		return result{latency: time.Since(start), want: c.want, err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return result{latency: time.Since(start), want: c.want, err: err}
	}
	defer resp.Body.Close()

	var out claimdto.EvaluateResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	lat := time.Since(start)

	r := result{latency: lat, status: resp.StatusCode, want: c.want}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if decodeErr != nil {
			r.err = fmt.Errorf("decode %s response: %w", c.name, decodeErr)
			return r
		}
		r.code = out.Result.ReasonCode
	}
	return r
}
