package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/awmpietro/golang-claim-evaluation-case/internal/claims"
)

type result struct {
	latency time.Duration
	status  int
	code    claims.ReasonCode
	want    claims.ReasonCode
	err     error
}

type summary struct {
	requests   int
	success2xx int
	non2xx     int
	errs       int
	mismatched int
	byCode     map[claims.ReasonCode]int
	p50        time.Duration
	p90        time.Duration
	p99        time.Duration
	avg        time.Duration
}

func summarize(results []result) summary {
	s := summary{byCode: map[claims.ReasonCode]int{}}
	latencies := make([]time.Duration, 0, len(results))

	for _, r := range results {
		latencies = append(latencies, r.latency)
		if r.err != nil {
			s.errs++
			continue
		}
		if r.status < 200 || r.status >= 300 {
			s.non2xx++
			continue
		}
		s.success2xx++
		s.byCode[r.code]++
		if r.code != r.want {
			s.mismatched++
		}
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	s.requests = len(latencies)
	s.p50 = percentile(latencies, 50)
	s.p90 = percentile(latencies, 90)
	s.p99 = percentile(latencies, 99)
	s.avg = average(latencies)
	return s
}

// healthy means every request came back 2xx with the reason code its claim calls for.
func (s summary) healthy() bool {
	return s.requests > 0 && s.errs == 0 && s.non2xx == 0 && s.mismatched == 0
}

func (s summary) write(w io.Writer, targetRPS int, duration time.Duration) {
	fmt.Fprintf(w, "Load test finished\n")
	fmt.Fprintf(w, "- target_rps: %d\n", targetRPS)
	fmt.Fprintf(w, "- achieved_rps: %.2f\n", float64(s.requests)/duration.Seconds())
	fmt.Fprintf(w, "- duration: %s\n", duration.String())
	fmt.Fprintf(w, "- requests: %d\n", s.requests)
	fmt.Fprintf(w, "- 2xx: %d\n", s.success2xx)
	fmt.Fprintf(w, "- non_2xx: %d\n", s.non2xx)
	fmt.Fprintf(w, "- errors: %d\n", s.errs)
	fmt.Fprintf(w, "- reason_mismatches: %d\n", s.mismatched)
	for _, code := range claims.ReasonCodes() {
		fmt.Fprintf(w, "- %s: %d\n", code, s.byCode[code])
	}
	fmt.Fprintf(w, "- avg_ms: %.3f\n", ms(s.avg))
	fmt.Fprintf(w, "- p50_ms: %.3f\n", ms(s.p50))
	fmt.Fprintf(w, "- p90_ms: %.3f\n", ms(s.p90))
	fmt.Fprintf(w, "- p99_ms: %.3f\n", ms(s.p99))
}

func percentile(items []time.Duration, p int) time.Duration {
	if len(items) == 0 {
		return 0
	}
	idx := (len(items) - 1) * p / 100
	return items[idx]
}

func average(items []time.Duration) time.Duration {
	if len(items) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range items {
		total += d
	}
	return total / time.Duration(len(items))
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
