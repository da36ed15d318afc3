package session

import (
	"errors"
	"testing"

	"github.com/go-test/deep"
	"github.com/jpnorenam/fmio/pkg/drivers"
	"github.com/jpnorenam/fmio/pkg/drivers/fake"
	"github.com/jpnorenam/fmio/pkg/seek"
	"github.com/jpnorenam/fmio/pkg/types"
)

type recordingPrivileges struct {
	calls      []string
	elevated   bool
	elevateErr error
}

func (p *recordingPrivileges) Elevate() error {
	p.calls = append(p.calls, "elevate")
	if p.elevateErr != nil {
		return p.elevateErr
	}
	p.elevated = true
	return nil
}

func (p *recordingPrivileges) Drop() error {
	p.calls = append(p.calls, "drop")
	p.elevated = false
	return nil
}

func openCard(t *testing.T, device any, caps drivers.Capabilities, ports ...uint32) (*Session, *recordingPrivileges) {
	t.Helper()

	privileges := &recordingPrivileges{}
	slot := NewSlot(privileges)

	d := &drivers.Descriptor{Name: "Test Card", Code: "tc", Ports: ports, Caps: caps, Device: device}
	s, err := slot.Open(drivers.Selection{Descriptor: d, Variant: len(ports) - 1})
	if err != nil {
		t.Fatalf("error opening session: %v", err)
	}
	return s, privileges
}

func TestSingleSession(t *testing.T) {
	slot := NewSlot(&recordingPrivileges{})
	d := &drivers.Descriptor{Name: "Test Card", Code: "tc", Ports: []uint32{0x20c}, Device: &fake.Tuner{}}

	first, err := slot.Open(drivers.Selection{Descriptor: d})
	if err != nil {
		t.Fatal(err)
	}

	_, err = slot.Open(drivers.Selection{Descriptor: d})
	if !errors.Is(err, ErrSessionOpen) {
		t.Fatalf("expected ErrSessionOpen, got %v", err)
	}

	if slot.Current() != first {
		t.Fatal("first session should be current")
	}

	err = first.Close()
	if err != nil {
		t.Fatal(err)
	}
	if slot.Current() != nil {
		t.Fatal("no session should be current after close")
	}

	second, err := slot.Open(drivers.Selection{Descriptor: d})
	if err != nil {
		t.Fatalf("expected to reopen after close: %v", err)
	}
	err = slot.CloseCurrent()
	if err != nil {
		t.Fatal(err)
	}
	// closing an old session must not release the new one
	_ = first.Close()
	if slot.Current() != nil {
		t.Fatalf("unexpected current session %v", second)
	}
}

func TestOpenInvalidVariant(t *testing.T) {
	slot := NewSlot(&recordingPrivileges{})
	d := &drivers.Descriptor{Name: "Test Card", Code: "tc", Ports: []uint32{0x20c, 0x30c}, Device: &fake.Tuner{}}

	_, err := slot.Open(drivers.Selection{Descriptor: d, Variant: 2})
	if !errors.Is(err, drivers.ErrInvalidDriver) {
		t.Fatalf("expected ErrInvalidDriver, got %v", err)
	}

	_, err = slot.Open(drivers.Selection{})
	if !errors.Is(err, drivers.ErrInvalidDriver) {
		t.Fatalf("expected ErrInvalidDriver, got %v", err)
	}
}

func TestOpenPort(t *testing.T) {
	tuner := &fake.Tuner{}
	s, _ := openCard(t, tuner, drivers.Capabilities{}, 0x20c, 0x30c)

	if tuner.Port != 0x30c {
		t.Fatalf("expected the card to be opened at 0x30c, got 0x%x", tuner.Port)
	}
	if s.Name() != "tc2" {
		t.Fatalf("unexpected session name %q", s.Name())
	}
	if s.Address() != 0x30c {
		t.Fatalf("unexpected address 0x%x", s.Address())
	}
}

func TestOpenWithoutPorts(t *testing.T) {
	privileges := &recordingPrivileges{}
	tuner := &fake.Tuner{Port: 0xdead}
	d := &drivers.Descriptor{Name: "Test Card", Code: "tc", Device: tuner}

	_, err := NewSlot(privileges).Open(drivers.Selection{Descriptor: d})
	if err != nil {
		t.Fatal(err)
	}
	if tuner.Port != 0 {
		t.Fatalf("expected port 0, got 0x%x", tuner.Port)
	}
}

func TestCloseIdempotent(t *testing.T) {
	tuner := &fake.Tuner{}
	s, _ := openCard(t, tuner, drivers.Capabilities{}, 0x20c)

	for range 3 {
		err := s.Close()
		if err != nil {
			t.Fatal(err)
		}
	}

	closes := 0
	for _, c := range tuner.Calls {
		if c == "close" {
			closes++
		}
	}
	if closes != 1 {
		t.Fatalf("expected the card to be closed once, got %d", closes)
	}

	err := s.SetFrequency(9850)
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestPrivilegeBracket(t *testing.T) {
	tuner := &fake.Tuner{}
	s, privileges := openCard(t, tuner, drivers.Capabilities{NeedsRoot: true}, 0x20c)

	err := s.SetFrequency(9850)
	if err != nil {
		t.Fatal(err)
	}

	tuner.Err = errors.New("port error")
	err = s.SetFrequency(9900)
	if err == nil {
		t.Fatal("expected port error")
	}

	err = s.Close()
	if err != nil {
		t.Fatal(err)
	}

	// open, two tunes and close, each one bracketed
	expected := []string{
		"elevate", "drop",
		"elevate", "drop",
		"elevate", "drop",
		"elevate", "drop",
	}
	if diff := deep.Equal(privileges.calls, expected); diff != nil {
		t.Fatal(diff)
	}
	if privileges.elevated {
		t.Fatal("privileges left elevated")
	}
}

func TestPrivilegeNotNeeded(t *testing.T) {
	s, privileges := openCard(t, &fake.Tuner{}, drivers.Capabilities{}, 0x20c)

	err := s.SetFrequency(9850)
	if err != nil {
		t.Fatal(err)
	}
	if len(privileges.calls) != 0 {
		t.Fatalf("unexpected privilege changes: %v", privileges.calls)
	}
}

func TestElevateFailure(t *testing.T) {
	tuner := &fake.Tuner{}
	s, privileges := openCard(t, tuner, drivers.Capabilities{NeedsRoot: true}, 0x20c)
	privileges.elevateErr = errors.New("operation not permitted")
	tuner.Calls = nil

	err := s.SetFrequency(9850)
	if !errors.Is(err, privileges.elevateErr) {
		t.Fatalf("expected elevate error, got %v", err)
	}
	if len(tuner.Calls) != 0 {
		t.Fatalf("card should not be touched without privileges: %v", tuner.Calls)
	}
}

func TestTunePolicy(t *testing.T) {
	five := 5

	cases := []struct {
		name     string
		caps     drivers.Capabilities
		volume   *int
		expected []string
	}{
		{
			name:     "default",
			caps:     drivers.Capabilities{MaxVolume: 16},
			expected: []string{"set-volume 1", "set-frequency 9850"},
		},
		{
			name:     "default-with-volume",
			caps:     drivers.Capabilities{MaxVolume: 16},
			volume:   &five,
			expected: []string{"set-volume 5", "set-frequency 9850", "set-volume 5"},
		},
		{
			name:     "maximize-first",
			caps:     drivers.Capabilities{MaxVolume: 16, MaximizeVolumeFirst: true},
			expected: []string{"set-volume 16", "set-frequency 9850"},
		},
		{
			name:     "maximize-first-zero-max",
			caps:     drivers.Capabilities{MaximizeVolumeFirst: true},
			expected: []string{"set-volume 1", "set-frequency 9850"},
		},
		{
			name:     "maximize-first-with-volume",
			caps:     drivers.Capabilities{MaxVolume: 16, MaximizeVolumeFirst: true},
			volume:   &five,
			expected: []string{"set-volume 5", "set-frequency 9850", "set-volume 5"},
		},
		{
			name:     "volume-independent",
			caps:     drivers.Capabilities{MaxVolume: 1, VolumeIndependent: true},
			expected: []string{"set-frequency 9850"},
		},
		{
			name:     "volume-independent-with-volume",
			caps:     drivers.Capabilities{MaxVolume: 1, VolumeIndependent: true},
			volume:   &five,
			expected: []string{"set-frequency 9850", "set-volume 5"},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tuner := &fake.Tuner{}
			s, _ := openCard(t, tuner, c.caps, 0x20c)
			tuner.Calls = nil

			err := s.Tune(9850, c.volume)
			if err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(tuner.Calls, c.expected); diff != nil {
				t.Fatal(diff)
			}
		})
	}
}

func TestTuneWithoutVolumeControl(t *testing.T) {
	tuner := &fake.Tuner{}
	s, _ := openCard(t, fake.NewBlind(tuner), drivers.Capabilities{}, 0x20c)
	tuner.Calls = nil

	err := s.Tune(9850, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diff := deep.Equal(tuner.Calls, []string{"set-frequency 9850"}); diff != nil {
		t.Fatal(diff)
	}

	five := 5
	err = s.Tune(9850, &five)
	if !errors.Is(err, drivers.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestOutOfBand(t *testing.T) {
	s, _ := openCard(t, &fake.Tuner{}, drivers.Capabilities{}, 0x20c)

	for _, f := range []types.Frequency{0, 8749, 10801} {
		if err := s.Tune(f, nil); !errors.Is(err, ErrOutOfBand) {
			t.Fatalf("expected ErrOutOfBand for %d, got %v", f, err)
		}
	}
}

func TestSignalStereo(t *testing.T) {
	stereo := func(types.Frequency) drivers.State { return drivers.Signal | drivers.Stereo }

	cases := []struct {
		name       string
		caps       drivers.Capabilities
		device     any
		wantSignal *bool
		wantStereo *bool
	}{
		{
			name:       "both",
			caps:       drivers.Capabilities{DetectsSignal: true, DetectsStereo: true},
			device:     &fake.Tuner{SignalFunc: stereo},
			wantSignal: ptr(true),
			wantStereo: ptr(true),
		},
		{
			name:       "signal-only",
			caps:       drivers.Capabilities{DetectsSignal: true},
			device:     &fake.Tuner{SignalFunc: stereo},
			wantSignal: ptr(true),
		},
		{
			name:       "noise",
			caps:       drivers.Capabilities{DetectsSignal: true, DetectsStereo: true},
			device:     &fake.Tuner{},
			wantSignal: ptr(false),
			wantStereo: ptr(false),
		},
		{
			name:   "undeclared",
			caps:   drivers.Capabilities{},
			device: &fake.Tuner{SignalFunc: stereo},
		},
		{
			name:   "no-state-operation",
			caps:   drivers.Capabilities{DetectsSignal: true, DetectsStereo: true},
			device: fake.NewBlind(&fake.Tuner{}),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, _ := openCard(t, c.device, c.caps, 0x20c)

			signal, err := s.Signal()
			if err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(signal, c.wantSignal); diff != nil {
				t.Fatalf("signal: %v", diff)
			}

			stereo, err := s.Stereo()
			if err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(stereo, c.wantStereo); diff != nil {
				t.Fatalf("stereo: %v", diff)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	t.Run("hardware", func(t *testing.T) {
		searcher := &fake.Searcher{Tuner: &fake.Tuner{}, Result: 10110}
		s, _ := openCard(t, searcher, drivers.Capabilities{HardwareSearch: true}, 0x20c)

		f, err := s.Search(types.Up, 9850)
		if err != nil {
			t.Fatal(err)
		}
		if f != 10110 {
			t.Fatalf("expected 10110, got %d", f)
		}
		if searcher.Samples != 0 {
			t.Fatal("hardware search should not sample the signal")
		}
	})

	t.Run("generic", func(t *testing.T) {
		tuner := &fake.Tuner{}
		s, _ := openCard(t, tuner, drivers.Capabilities{}, 0x20c)

		f, err := s.Search(types.Down, 9850)
		if err != nil {
			t.Fatal(err)
		}
		if f != 9850 || tuner.Current != 9850 {
			t.Fatalf("expected no station at 9850, got %d, card at %d", f, tuner.Current)
		}
		if tuner.Samples == 0 {
			t.Fatal("generic search should sample the signal")
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		s, _ := openCard(t, fake.NewBlind(&fake.Tuner{}), drivers.Capabilities{}, 0x20c)

		_, err := s.Search(types.Up, 9850)
		if !errors.Is(err, seek.ErrSearchUnsupported) {
			t.Fatalf("expected ErrSearchUnsupported, got %v", err)
		}
	})
}

func TestScan(t *testing.T) {
	t.Run("unsupported-caps", func(t *testing.T) {
		tuner := &fake.Tuner{}
		s, _ := openCard(t, tuner, drivers.Capabilities{}, 0x20c)

		err := s.Scan(9000, 9100, 1, func(seek.Step) {})
		if !errors.Is(err, seek.ErrScanUnsupported) {
			t.Fatalf("expected ErrScanUnsupported, got %v", err)
		}
		if len(tuner.SetFrequencyCalls()) != 0 {
			t.Fatal("no sweep expected")
		}
	})

	t.Run("unsupported-operations", func(t *testing.T) {
		s, _ := openCard(t, fake.NewBlind(&fake.Tuner{}), drivers.Capabilities{DetectsSignal: true}, 0x20c)

		err := s.Scan(9000, 9100, 1, func(seek.Step) {})
		if !errors.Is(err, seek.ErrScanUnsupported) {
			t.Fatalf("expected ErrScanUnsupported, got %v", err)
		}
	})

	t.Run("sweep", func(t *testing.T) {
		s, privileges := openCard(t, &fake.Tuner{}, drivers.Capabilities{NeedsRoot: true, DetectsStereo: true}, 0x20c)
		privileges.calls = nil

		steps := 0
		err := s.Scan(9000, 9100, 2, func(seek.Step) { steps++ })
		if err != nil {
			t.Fatal(err)
		}
		if steps != 100 {
			t.Fatalf("expected 100 steps, got %d", steps)
		}
		if diff := deep.Equal(privileges.calls, []string{"elevate", "drop"}); diff != nil {
			t.Fatal(diff)
		}
	})
}

func TestProbe(t *testing.T) {
	s, _ := openCard(t, &fake.Tuner{}, drivers.Capabilities{}, 0x20c)
	present, err := s.Probe()
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("cards without a probe are assumed present")
	}

	s, _ = openCard(t, &fake.Prober{Tuner: &fake.Tuner{}, Present: false}, drivers.Capabilities{}, 0x20c)
	present, err = s.Probe()
	if err != nil {
		t.Fatal(err)
	}
	if present {
		t.Fatal("expected the probe to report absence")
	}
}

func TestInfo(t *testing.T) {
	tuner := &fake.Tuner{
		SignalFunc: func(types.Frequency) drivers.State { return drivers.Signal },
		Current:    9850,
		Vol:        3,
	}
	s, _ := openCard(t, tuner, drivers.Capabilities{DetectsSignal: true, DetectsStereo: true}, 0x20c)

	info, err := s.Info()
	if err != nil {
		t.Fatal(err)
	}

	f := types.Frequency(9850)
	v := 3
	expected := &types.TunerInfo{
		Driver:    "Test Card",
		Port:      0x20c,
		Frequency: &f,
		Volume:    &v,
		Signal:    ptr(true),
		Stereo:    ptr(false),
	}
	if diff := deep.Equal(info, expected); diff != nil {
		t.Fatal(diff)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestSweepForSignal(t *testing.T) {
	tuner := &fake.Tuner{
		SignalFunc: func(types.Frequency) drivers.State { return drivers.Signal | drivers.Stereo },
	}
	s, privileges := openCard(t, tuner, drivers.Capabilities{NeedsRoot: true, NeedsScan: true, DetectsSignal: true}, 0x20c)
	privileges.calls = nil

	present, err := s.SweepForSignal(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !present {
		t.Fatal("expected a signal")
	}
	if len(tuner.SetFrequencyCalls()) != 4 {
		t.Errorf("expected the sweep to stop after 4 tunes, got %v", tuner.SetFrequencyCalls())
	}
	if diff := deep.Equal(privileges.calls, []string{"elevate", "drop"}); diff != nil {
		t.Fatal(diff)
	}

	s, _ = openCard(t, &fake.Tuner{}, drivers.Capabilities{NeedsScan: true}, 0x20c)
	_, err = s.SweepForSignal(nil)
	if !errors.Is(err, seek.ErrScanUnsupported) {
		t.Fatalf("expected ErrScanUnsupported, got %v", err)
	}
}

func TestCloseStopsScan(t *testing.T) {
	tuner := &fake.Tuner{}
	s, privileges := openCard(t, tuner, drivers.Capabilities{NeedsRoot: true, DetectsSignal: true}, 0x20c)
	privileges.calls = nil

	steps := 0
	err := s.Scan(9000, 9100, 1, func(seek.Step) {
		steps++
		if steps == 3 {
			if err := s.Close(); err != nil {
				t.Fatal(err)
			}
		}
	})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if steps != 3 {
		t.Errorf("expected the scan to stop after 3 steps, got %d", steps)
	}
	if len(tuner.SetFrequencyCalls()) != 3 {
		t.Errorf("expected 3 tunes, got %v", tuner.SetFrequencyCalls())
	}
	if privileges.elevated {
		t.Fatal("privileges left elevated")
	}
}
