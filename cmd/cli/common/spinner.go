package common

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jpnorenam/fmio/pkg/utils"
)

// StartProgressSpinner shows a spinner on terminals. The returned function
// removes it.
func StartProgressSpinner(prefix string) (stop func()) {
	if !utils.IsTerminalOutput() {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[9], time.Millisecond*200)
	s.Prefix = prefix + " "
	s.Start()

	return s.Stop
}

// StartProgressCounter is StartProgressSpinner with a step count after the
// spinner. Off a terminal both functions do nothing.
func StartProgressCounter(prefix, unit string) (step func(), stop func()) {
	if !utils.IsTerminalOutput() {
		return func() {}, func() {}
	}

	s := spinner.New(spinner.CharSets[9], time.Millisecond*200)
	s.Prefix = prefix + " "
	s.Start()

	n := 0
	step = func() {
		s.Lock()
		n++
		s.Suffix = fmt.Sprintf(" %d %s", n, unit)
		s.Unlock()
	}

	return step, s.Stop
}
