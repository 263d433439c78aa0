package output

import (
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// progressWriter logs write progress at most once per second.
type progressWriter struct {
	w       io.Writer
	logger  *slog.Logger
	written int64
	total   int64
	start   time.Time
	lastLog time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)

	if time.Since(pw.lastLog) >= time.Second {
		pw.lastLog = time.Now()
		pw.log("writing")
	}

	if pw.total >= 0 && pw.written == pw.total {
		pw.log("write complete")
	}

	return n, err
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.start)

	attrs := []any{
		"written", humanize.Bytes(uint64(pw.written)),
		"elapsed", elapsed.Round(time.Millisecond),
	}
	if pw.total > 0 {
		attrs = append(attrs,
			"total", humanize.Bytes(uint64(pw.total)),
			"progress", humanize.FtoaWithDigits(float64(pw.written)/float64(pw.total)*100, 1)+"%",
		)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		attrs = append(attrs, "rate", humanize.Bytes(uint64(float64(pw.written)/secs))+"/s")
	}

	pw.logger.Info(msg, attrs...)
}
