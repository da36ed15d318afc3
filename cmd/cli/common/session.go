package common

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jpnorenam/fmio/pkg/diag"
	"github.com/jpnorenam/fmio/pkg/session"
)

// WithSession opens the selected card, runs fn and closes the card again.
// The card is also closed when the process is interrupted.
func WithSession(ctx *Context, fn func(s *session.Session) error) error {
	selection, err := SelectDriver(ctx)
	if errors.Is(err, ErrNoDriver) {
		return fmt.Errorf("%v. %s", err, SuggestDriverSelection())
	}
	if err != nil {
		return err
	}

	s, err := ctx.Slot.Open(selection)
	if err != nil {
		return openError(err)
	}

	stop := closeOnSignal(s)
	defer stop()

	present, err := s.Probe()
	if err == nil && !present {
		err = fmt.Errorf("card not found: %s", DescribeCard(s.Descriptor().Name, s.Address()))
	}
	if err == nil {
		err = fn(s)
	}

	closeErr := s.Close()
	if closeErr != nil {
		diag.Warn(closeErr, "error closing %s", s.Descriptor().Name)
	}

	return err
}

func openError(err error) error {
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) {
		return fmt.Errorf("%v. %s", err, SuggestRoot())
	}
	return err
}

// closeOnSignal closes the session and exits on SIGINT, SIGTERM or SIGHUP
func closeOnSignal(s *session.Session) (stop func()) {
	signals := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		if handleSignal(s, signals, done) {
			os.Exit(1)
		}
	}()

	return func() {
		signal.Stop(signals)
		close(done)
	}
}

// handleSignal waits for a signal or for done. On a signal it closes the
// session, which drops privileges like a normal close, and returns true.
func handleSignal(s *session.Session, signals <-chan os.Signal, done <-chan struct{}) bool {
	select {
	case sig := <-signals:
		diag.Debugf("Received %v, closing %s", sig, s.Descriptor().Name)
		if err := s.Close(); err != nil {
			diag.Warn(err, "error closing %s", s.Descriptor().Name)
		}
		return true
	case <-done:
		return false
	}
}
