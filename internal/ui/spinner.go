package ui

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
)

const spinnerFrames = `⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏`

// Spinner is a single-line progress indicator.
// The zero value is inert: Start and Stop do nothing.
type Spinner struct {
	mu         sync.Mutex
	writer     io.Writer
	delay      time.Duration
	message    string
	frame      *color.Color
	lastOutput string
	running    bool
	stop       chan struct{}
	done       chan struct{}
}

// NewSpinner creates a spinner that draws msg followed by a frame on w.
func NewSpinner(w io.Writer, msg string, d time.Duration, frame *color.Color) *Spinner {
	if frame == nil {
		frame = color.New(color.Reset)
	}
	return &Spinner{
		writer:  w,
		delay:   d,
		message: msg,
		frame:   frame,
	}
}

// Start draws frames until Stop is called.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil || s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()
		for {
			for _, r := range spinnerFrames {
				s.mu.Lock()
				s.clear()
				output := fmt.Sprintf("\r%s %s", s.message, s.frame.Sprint(string(r)))
				fmt.Fprint(s.writer, output)
				s.lastOutput = output
				s.mu.Unlock()

				select {
				case <-s.stop:
					return
				case <-ticker.C:
				}
			}
		}
	}()
}

// Stop halts the spinner and erases its line. It waits for the drawing
// goroutine to exit, so nothing is written after Stop returns.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	<-s.done

	s.mu.Lock()
	s.clear()
	s.mu.Unlock()
}

// clear deletes the last drawn line. Caller must hold the lock.
func (s *Spinner) clear() {
	if s.lastOutput == "" {
		return
	}
	if runtime.GOOS == "windows" {
		n := utf8.RuneCountInString(s.lastOutput)
		fmt.Fprint(s.writer, "\r"+strings.Repeat(" ", n)+"\r")
	} else {
		fmt.Fprint(s.writer, "\r\033[K")
	}
	s.lastOutput = ""
}
