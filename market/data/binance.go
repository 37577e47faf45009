// Package data downloads historical kline archives from Binance Vision.
package data

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xyproto/unzip"
)

const defaultBase = "https://data.binance.vision/data/spot/monthly/klines"

// FetchOptions controls a monthly kline download run.
type FetchOptions struct {
	Base     string        // archive base URL, defaultBase if empty
	Symbol   string        // e.g. BTCUSDT
	Interval string        // e.g. 1h
	Start    time.Time     // first month (inclusive)
	End      time.Time     // last month (inclusive)
	OutDir   string        // destination directory
	Workers  int           // parallel downloads, 4 if <= 0
	Timeout  time.Duration // per-request timeout, 45s if <= 0
}

// FetchResult summarizes one download run.
type FetchResult struct {
	Fetched int // archives downloaded and extracted
	Skipped int // archives already present
	Missing int // months the server does not have (404)
}

// FetchMonthly downloads the monthly archives covering [Start, End],
// extracts each zip next to itself, and reports what happened. Archives
// already on disk are not re-downloaded.
func FetchMonthly(ctx context.Context, opt FetchOptions) (FetchResult, error) {
	base := opt.Base
	if base == "" {
		base = defaultBase
	}
	sym := strings.ToUpper(strings.TrimSpace(opt.Symbol))
	if sym == "" {
		return FetchResult{}, fmt.Errorf("symbol required")
	}
	interval := opt.Interval
	if interval == "" {
		interval = "1h"
	}
	if opt.End.Before(opt.Start) {
		return FetchResult{}, fmt.Errorf("end month before start month")
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = 4
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	type job struct {
		url string
		dst string
	}
	var jobs []job
	start := time.Date(opt.Start.Year(), opt.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(opt.End.Year(), opt.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := start; !m.After(end); m = m.AddDate(0, 1, 0) {
		name := fmt.Sprintf("%s-%s-%04d-%02d.zip", sym, interval, m.Year(), m.Month())
		jobs = append(jobs, job{
			url: fmt.Sprintf("%s/%s/%s/%s", strings.TrimRight(base, "/"), sym, interval, name),
			dst: filepath.Join(opt.OutDir, sym, name),
		})
	}

	client := &http.Client{Timeout: timeout}

	var (
		mu  sync.Mutex
		res FetchResult
		rerr error
	)
	jobCh := make(chan job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				downloaded, status, err := downloadIfMissing(ctx, client, j.url, j.dst)
				mu.Lock()
				switch {
				case err != nil:
					if rerr == nil {
						rerr = fmt.Errorf("fetch %s: %w", j.url, err)
					}
				case status == http.StatusNotFound:
					res.Missing++
				case !downloaded:
					res.Skipped++
				default:
					if err := unzip.Extract(j.dst, filepath.Dir(j.dst)); err != nil && rerr == nil {
						rerr = fmt.Errorf("extract %s: %w", j.dst, err)
					} else {
						res.Fetched++
					}
				}
				mu.Unlock()
			}
		}()
	}
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	return res, rerr
}

// downloadIfMissing fetches url into dst unless dst already exists with
// content. Writes go through a .part file renamed into place on success.
func downloadIfMissing(ctx context.Context, client *http.Client, url, dst string) (downloaded bool, status int, err error) {
	if st, err := os.Stat(dst); err == nil && st.Size() > 0 {
		return false, http.StatusOK, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return false, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, http.StatusNotFound, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, resp.StatusCode, fmt.Errorf("http status %d", resp.StatusCode)
	}

	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return false, resp.StatusCode, err
	}
	_, copyErr := f.ReadFrom(resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tmp)
		if copyErr != nil {
			return false, resp.StatusCode, copyErr
		}
		return false, resp.StatusCode, closeErr
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return false, resp.StatusCode, err
	}
	return true, resp.StatusCode, nil
}
