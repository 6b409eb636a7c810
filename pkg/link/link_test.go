package link

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakePort is a scripted serial port for testing.
type fakePort struct {
	mu       sync.Mutex
	reads    []byte // bytes the device "sends" to the host
	writes   []byte // bytes the host wrote
	writeErr error
	closed   int
}

func (f *fakePort) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reads) == 0 {
		return 0, nil // read timeout: nothing buffered
	}
	n := copy(p, f.reads)
	f.reads = f.reads[n:]
	return n, nil
}

func (f *fakePort) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, p...)
	return len(p), nil
}

func (f *fakePort) SetReadTimeout(t time.Duration) error { return nil }

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakePort) written() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.writes)
}

// withPort swaps the port opener for the duration of a test.
func withPort(t *testing.T, p Port, openErr error) {
	t.Helper()
	orig := openPort
	openPort = func(name string, baud int) (Port, error) {
		if openErr != nil {
			return nil, openErr
		}
		return p, nil
	}
	t.Cleanup(func() { openPort = orig })
}

// testConfig returns a config with near-zero delays for fast tests.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HandshakeTimeout = 50 * time.Millisecond
	cfg.CommandDelay = 0
	cfg.AckTimeout = 50 * time.Millisecond
	return cfg
}

func TestConnect_Handshake(t *testing.T) {
	fp := &fakePort{reads: []byte("READY\n")}
	withPort(t, fp, nil)

	l, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if got := l.State(); got != StateReady {
		t.Errorf("State() = %v, want %v", got, StateReady)
	}
}

func TestConnect_MissingHandshakeStillReady(t *testing.T) {
	fp := &fakePort{} // device never says READY
	withPort(t, fp, nil)

	l, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !l.Ready() {
		t.Error("link should be optimistically ready without handshake")
	}
}

func TestConnect_OpenFailure(t *testing.T) {
	withPort(t, nil, errors.New("no such device"))

	l, err := Connect(testConfig())
	if err == nil {
		t.Fatal("Connect() expected error for missing port")
	}
	if l == nil {
		t.Fatal("Connect() should return a usable link even on failure")
	}

	// Subsequent sends degrade cleanly, with zero bytes on the wire.
	if err := l.Send(2, 90); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
}

func TestSend_EncodesCommand(t *testing.T) {
	fp := &fakePort{reads: []byte("READY\n")}
	withPort(t, fp, nil)

	l, _ := Connect(testConfig())

	if err := l.Send(4, 170); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got := fp.written(); got != "4:170\n" {
		t.Errorf("wrote %q, want %q", got, "4:170\n")
	}
}

func TestSend_AckMode(t *testing.T) {
	tests := []struct {
		name    string
		device  string
		wantErr error
	}{
		{"ok ack", "OK\n", nil},
		{"ok with detail", "OK 4:170\n", nil},
		{"bad ack", "ERR\n", ErrAckFailed},
		{"silent device", "", ErrAckFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakePort{reads: []byte("READY\n" + tt.device)}
			withPort(t, fp, nil)

			cfg := testConfig()
			cfg.WaitAck = true
			l, _ := Connect(cfg)

			err := l.Send(4, 170)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Send() error = %v, want %v", err, tt.wantErr)
			}
			if got := fp.written(); got != "4:170\n" {
				t.Errorf("wrote %q, want %q", got, "4:170\n")
			}
		})
	}
}

func TestSend_WriteFailureDropsLink(t *testing.T) {
	fp := &fakePort{reads: []byte("READY\n")}
	withPort(t, fp, nil)

	l, _ := Connect(testConfig())
	fp.mu.Lock()
	fp.writeErr = errors.New("device unplugged")
	fp.mu.Unlock()

	if err := l.Send(2, 90); !errors.Is(err, ErrWriteFailed) {
		t.Fatalf("Send() error = %v, want ErrWriteFailed", err)
	}
	if got := l.State(); got != StateDisconnected {
		t.Errorf("State() after write failure = %v, want %v", got, StateDisconnected)
	}

	// Link loss is permanent: no auto-reconnect.
	if err := l.Send(2, 90); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Send() after drop = %v, want ErrNotConnected", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	fp := &fakePort{reads: []byte("READY\n")}
	withPort(t, fp, nil)

	l, _ := Connect(testConfig())

	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if fp.closed != 1 {
		t.Errorf("port closed %d times, want 1", fp.closed)
	}
}

func TestSend_SerializesCommands(t *testing.T) {
	fp := &fakePort{reads: []byte("READY\n")}
	withPort(t, fp, nil)

	l, _ := Connect(testConfig())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(angle int) {
			defer wg.Done()
			l.Send(2, angle)
		}(i)
	}
	wg.Wait()

	// Every write must be a complete, well-formed line.
	got := fp.written()
	if len(got) == 0 || got[len(got)-1] != '\n' {
		t.Fatalf("writes not line-terminated: %q", got)
	}
}

func TestStateString(t *testing.T) {
	if StateDisconnected.String() != "disconnected" ||
		StateConnected.String() != "connected" ||
		StateReady.String() != "ready" {
		t.Error("unexpected State string values")
	}
}
