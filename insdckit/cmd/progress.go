package cmd

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progress wraps schollz/progressbar with an opt-out flag (reportEvery == 0).
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(total, reportEvery int) *progress {
	if reportEvery == 0 {
		return &progress{bar: nil}
	}

	opts := []progressbar.Option{
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(250 * time.Millisecond),
		progressbar.OptionClearOnFinish(),
	}

	var bar *progressbar.ProgressBar
	if total > 0 {
		opts = append(opts,
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetPredictTime(true),
		)
		bar = progressbar.NewOptions(total, opts...)
	} else {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
		)
		bar = progressbar.NewOptions(-1, opts...)
	}

	return &progress{bar: bar}
}

func (p *progress) increment() {
	p.add(1)
}

func (p *progress) add(n int) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(n)
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

// byteProgress tracks bytes consumed from the input files. A nil
// *byteProgress is a no-op.
type byteProgress struct {
	bar *progressbar.ProgressBar
}

func newByteProgress(total int64, description string) *byteProgress {
	if total <= 0 {
		total = -1
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(250*time.Millisecond),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
	)
	return &byteProgress{bar: bar}
}

func (p *byteProgress) set(n int64) {
	if p == nil {
		return
	}
	_ = p.bar.Set64(n)
}

func (p *byteProgress) finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
