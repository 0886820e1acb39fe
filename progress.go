package img2mc

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	progressColumns  = 70
	progressInterval = 100 * time.Millisecond
	// room for the brackets and " 100.00%"
	barWidth = progressColumns - 10
)

func progressBar(done, total int) string {
	var f float64
	if total > 0 {
		f = float64(done) / float64(total)
	}
	if f > 1 {
		f = 1
	}
	n := int(f * barWidth)
	return fmt.Sprintf("[%s%s] %6.2f%%", strings.Repeat("#", n), strings.Repeat(" ", barWidth-n), f*100)
}

// startProgress redraws a progress bar on w every interval until the
// returned function is called, which clears the line. A nil w does nothing.
func startProgress(w io.Writer, progress func() (int, int), interval time.Duration) func() {
	if w == nil {
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", progressColumns))
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", progressBar(progress()))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
