// Package perf analyzes load test result files (k6 NDJSON and Artillery
// JSON) into a common metrics summary with insights and optimization
// advice.
package perf

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	sharederrors "github.com/gqlaudit/gqlaudit/internal/shared/errors"
)

// Analysis is the common metrics summary produced from either tool's
// output. Durations are milliseconds throughout.
type Analysis struct {
	Source          string  `json:"source"`
	TotalRequests   int     `json:"total_requests"`
	FailedRequests  int     `json:"failed_requests"`
	SuccessRate     float64 `json:"success_rate"`
	AvgResponseTime float64 `json:"avg_response_time"`
	MinResponseTime float64 `json:"min_response_time"`
	MaxResponseTime float64 `json:"max_response_time"`
	P95ResponseTime float64 `json:"p95_response_time"`
	P99ResponseTime float64 `json:"p99_response_time"`
	Throughput      float64 `json:"throughput"`
}

// k6Point is one line of k6's NDJSON stream.
type k6Point struct {
	Type   string `json:"type"`
	Metric string `json:"metric"`
	Data   struct {
		Time  string  `json:"time"`
		Value float64 `json:"value"`
	} `json:"data"`
}

// AnalyzeK6 reduces a k6 NDJSON result stream. Lines that fail to parse
// are skipped; a stream with no http_reqs points is an error.
func AnalyzeK6(r io.Reader) (*Analysis, error) {
	var (
		durations []float64
		total     int
		failed    float64
		firstTime string
		lastTime  string
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var p k6Point
		if err := json.Unmarshal(line, &p); err != nil {
			continue
		}
		if p.Type != "Point" {
			continue
		}
		if p.Data.Time != "" {
			if firstTime == "" || p.Data.Time < firstTime {
				firstTime = p.Data.Time
			}
			if p.Data.Time > lastTime {
				lastTime = p.Data.Time
			}
		}
		switch p.Metric {
		case "http_reqs":
			total++
		case "http_req_duration":
			durations = append(durations, p.Data.Value)
		case "http_req_failed":
			failed += p.Data.Value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read k6 results: %w", err)
	}
	if total == 0 {
		return nil, sharederrors.ErrNoSamples
	}

	a := &Analysis{
		Source:         "k6",
		TotalRequests:  total,
		FailedRequests: int(failed),
		SuccessRate:    float64(total-int(failed)) / float64(total) * 100,
	}
	fillDurationStats(a, durations)
	a.Throughput = k6Throughput(total, firstTime, lastTime)
	return a, nil
}

// artilleryResults mirrors the aggregate section of Artillery's JSON
// report.
type artilleryResults struct {
	Aggregate struct {
		Counters map[string]int `json:"counters"`
		Latency  struct {
			Mean float64 `json:"mean"`
			Min  float64 `json:"min"`
			Max  float64 `json:"max"`
			P95  float64 `json:"p95"`
			P99  float64 `json:"p99"`
		} `json:"latency"`
		RPS struct {
			Mean float64 `json:"mean"`
		} `json:"rps"`
	} `json:"aggregate"`
}

// AnalyzeArtillery reduces an Artillery aggregate JSON report.
func AnalyzeArtillery(r io.Reader) (*Analysis, error) {
	var results artilleryResults
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: %v", sharederrors.ErrMalformedResult, err)
	}

	agg := results.Aggregate
	requests := agg.Counters["http.requests"]
	responses := agg.Counters["http.responses"]
	if requests == 0 && responses == 0 {
		return nil, sharederrors.ErrNoSamples
	}
	ok := agg.Counters["http.codes.200"]
	errored := agg.Counters["errors.ECONNREFUSED"] + agg.Counters["errors.ETIMEDOUT"]

	successRate := 0.0
	if responses > 0 {
		successRate = float64(ok) / float64(responses) * 100
	}

	return &Analysis{
		Source:          "artillery",
		TotalRequests:   requests,
		FailedRequests:  responses - ok + errored,
		SuccessRate:     successRate,
		AvgResponseTime: agg.Latency.Mean,
		MinResponseTime: agg.Latency.Min,
		MaxResponseTime: agg.Latency.Max,
		P95ResponseTime: agg.Latency.P95,
		P99ResponseTime: agg.Latency.P99,
		Throughput:      agg.RPS.Mean,
	}, nil
}

func fillDurationStats(a *Analysis, durations []float64) {
	if len(durations) == 0 {
		return
	}
	sorted := make([]float64, len(durations))
	copy(sorted, durations)
	sort.Float64s(sorted)

	sum := 0.0
	for _, d := range sorted {
		sum += d
	}
	a.AvgResponseTime = sum / float64(len(sorted))
	a.MinResponseTime = sorted[0]
	a.MaxResponseTime = sorted[len(sorted)-1]
	a.P95ResponseTime = percentile(sorted, 95)
	a.P99ResponseTime = percentile(sorted, 99)
}

// percentile computes the nearest-rank percentile over a sorted sample.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

// k6Throughput derives requests per second from the first and last point
// timestamps.
func k6Throughput(total int, first, last string) float64 {
	start, err := time.Parse(time.RFC3339Nano, first)
	if err != nil {
		return 0
	}
	end, err := time.Parse(time.RFC3339Nano, last)
	if err != nil {
		return 0
	}
	span := end.Sub(start).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(total) / span
}
