package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"dunequery/cli/internal/terminal"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// startInlineSpinner starts a simple inline spinner animation on a single line.
// text is called on every frame so the caption can follow the execution state.
// The returned function stops the spinner and clears its line.
func startInlineSpinner(w io.Writer, text func() string, frames []string, interval time.Duration) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				terminal.ClearLine(w)
				return
			case <-ticker.C:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text())
				// primitive protection against very long lines
				if len(line) > 2000 {
					line = line[:2000]
				}
				terminal.ClearLine(w)
				fmt.Fprint(w, line)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
	}
}
