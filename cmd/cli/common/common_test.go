package common

import (
	"errors"
	"io"
	"os"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/go-test/deep"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/drivers/fake"
	"github.com/jpnorenam/fmio/pkg/portio"
	"github.com/jpnorenam/fmio/pkg/seek"
	"github.com/jpnorenam/fmio/pkg/session"
	"github.com/jpnorenam/fmio/pkg/storage"
	"github.com/jpnorenam/fmio/pkg/types"
	"github.com/jpnorenam/fmio/pkg/utils"
)

func testContext(t *testing.T) *Context {
	registry, err := drivers.NewRegistry(
		&drivers.Descriptor{Name: "Single Card", Code: "sc", Ports: []uint32{0x20c}, Device: &fake.Tuner{}},
		&drivers.Descriptor{Name: "Double Card", Code: "dc", Ports: []uint32{0x20c, 0x30c}, Device: &fake.Tuner{}},
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(DriverEnv, "")

	return &Context{
		Config:   storage.NewFileConfig(t.TempDir() + "/config.yaml"),
		Registry: registry,
		Slot:     session.NewSlot(portio.NoPrivileges{}),
	}
}

func TestSelectDriver(t *testing.T) {
	cases := []struct {
		name    string
		flag    string
		env     string
		config  string
		driver  string
		variant int
		err     error
	}{
		{name: "flag", flag: "dc2", env: "sc", config: "sc", driver: "dc", variant: 1},
		{name: "environment", env: "DC1", config: "sc", driver: "dc", variant: 0},
		{name: "config", config: "sc", driver: "sc", variant: 0},
		{name: "invalid flag falls back", flag: "dc3", config: "dc2", driver: "dc", variant: 1},
		{name: "all invalid", flag: "zz", err: drivers.ErrInvalidDriver},
		{name: "nothing", err: ErrNoDriver},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := testContext(t)
			ctx.Driver = tc.flag
			t.Setenv(DriverEnv, tc.env)
			if tc.config != "" {
				err := ctx.Config.Set(storage.KeyDriver, tc.config, storage.UserConfig)
				if err != nil {
					t.Fatal(err)
				}
			}

			selection, err := SelectDriver(ctx)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				t.Log(err)
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if selection.Descriptor.Code != tc.driver || selection.Variant != tc.variant {
				t.Errorf("expected %s variant %d, got %s variant %d",
					tc.driver, tc.variant, selection.Descriptor.Code, selection.Variant)
			}
		})
	}
}

func TestWithSession(t *testing.T) {
	ctx := testContext(t)
	ctx.Driver = "sc"

	var opened *session.Session
	err := WithSession(ctx, func(s *session.Session) error {
		opened = s
		return s.Tune(9850, nil)
	})
	if err != nil {
		t.Fatal(err)
	}
	if ctx.Slot.Current() != nil {
		t.Fatal("session left open")
	}

	_, err = opened.Frequency()
	if !errors.Is(err, session.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestWithSessionClosesOnError(t *testing.T) {
	ctx := testContext(t)
	ctx.Driver = "dc1"

	failure := errors.New("no station")
	err := WithSession(ctx, func(*session.Session) error { return failure })
	if !errors.Is(err, failure) {
		t.Fatalf("expected the callback error, got %v", err)
	}
	if ctx.Slot.Current() != nil {
		t.Fatal("session left open")
	}
}

func TestFrequencyValue(t *testing.T) {
	var v FrequencyValue

	err := v.Set("98.3")
	if err != nil {
		t.Fatal(err)
	}
	if v.Frequency != types.Frequency(9830) || v.String() != "98.30" {
		t.Errorf("unexpected value %d (%s)", v.Frequency, v.String())
	}

	for _, s := range []string{"87.4", "108.01", "fm"} {
		if err := v.Set(s); err == nil {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"no\n", true, false},
		{"\n", true, true},
		{"", false, false},
		{"maybe\nyes\n", false, true},
	}

	for _, tc := range cases {
		got := confirm(strings.NewReader(tc.input), io.Discard, "Use it?", tc.defaultYes)
		if got != tc.want {
			t.Errorf("input %q: expected %v, got %v", tc.input, tc.want, got)
		}
	}
}

func TestWithSessionCardNotFound(t *testing.T) {
	ctx := testContext(t)
	registry, err := drivers.NewRegistry(&drivers.Descriptor{
		Name:   "Missing Card",
		Code:   "mc",
		Ports:  []uint32{0x284},
		Device: &fake.Prober{Tuner: &fake.Tuner{}},
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx.Registry = registry
	ctx.Driver = "mc"

	called := false
	err = WithSession(ctx, func(*session.Session) error {
		called = true
		return nil
	})
	if err == nil || err.Error() != "card not found: Missing Card, port 0x284" {
		t.Fatalf("unexpected error %v", err)
	}
	if called {
		t.Fatal("callback run without a card")
	}
	if ctx.Slot.Current() != nil {
		t.Fatal("session left open")
	}
}

type recordingPrivileges struct {
	calls []string
}

func (p *recordingPrivileges) Elevate() error {
	p.calls = append(p.calls, "elevate")
	return nil
}

func (p *recordingPrivileges) Drop() error {
	p.calls = append(p.calls, "drop")
	return nil
}

func openRootCard(t *testing.T) (*session.Session, *session.Slot, *fake.Tuner, *recordingPrivileges) {
	tuner := &fake.Tuner{}
	d := &drivers.Descriptor{
		Name:   "Root Card",
		Code:   "rc",
		Ports:  []uint32{0x20c},
		Caps:   drivers.Capabilities{NeedsRoot: true, DetectsSignal: true},
		Device: tuner,
	}
	privileges := &recordingPrivileges{}
	slot := session.NewSlot(privileges)
	s, err := slot.Open(drivers.Selection{Descriptor: d})
	if err != nil {
		t.Fatal(err)
	}
	privileges.calls = nil
	tuner.Calls = nil
	return s, slot, tuner, privileges
}

func TestHandleSignal(t *testing.T) {
	s, slot, tuner, privileges := openRootCard(t)

	signals := make(chan os.Signal, 1)
	signals <- syscall.SIGTERM
	if !handleSignal(s, signals, make(chan struct{})) {
		t.Fatal("expected the signal to be handled")
	}

	if diff := deep.Equal(tuner.Calls, []string{"close"}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(privileges.calls, []string{"elevate", "drop"}); diff != nil {
		t.Error(diff)
	}
	if slot.Current() != nil {
		t.Fatal("session left open")
	}
	_, err := s.Signal()
	if !errors.Is(err, session.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestHandleSignalDone(t *testing.T) {
	s, slot, tuner, _ := openRootCard(t)

	done := make(chan struct{})
	close(done)
	if handleSignal(s, make(chan os.Signal), done) {
		t.Fatal("no signal was sent")
	}
	if slot.Current() != s || len(tuner.Calls) != 0 {
		t.Fatalf("session closed without a signal: %v", tuner.Calls)
	}
}

func TestSignalDuringScan(t *testing.T) {
	s, slot, tuner, _ := openRootCard(t)

	signals := make(chan os.Signal, 1)
	handled := make(chan bool, 1)
	go func() {
		handled <- handleSignal(s, signals, make(chan struct{}))
	}()

	steps := 0
	err := s.Scan(9000, 9100, 1, func(seek.Step) {
		steps++
		if steps == 1 {
			signals <- syscall.SIGINT
			for slot.Current() != nil {
				runtime.Gosched()
			}
		}
	})
	if !errors.Is(err, session.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if !<-handled {
		t.Fatal("expected the signal to be handled")
	}
	if steps != 1 {
		t.Errorf("expected the scan to stop after 1 step, got %d", steps)
	}
	if tuner.Calls[len(tuner.Calls)-1] != "close" {
		t.Errorf("expected close last, got %v", tuner.Calls)
	}
}

func TestProgressCounterOffTerminal(t *testing.T) {
	if utils.IsTerminalOutput() {
		t.Skip("stdout is a terminal")
	}

	step, stop := StartProgressCounter("Checking", "ports checked")
	for i := 0; i < 3; i++ {
		step()
	}
	stop()
}
