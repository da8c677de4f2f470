package scan

import (
	"context"
	"errors"
	"sync"

	"github.com/vbonduro/snapcal/internal/domain"
)

var (
	// ErrScanInProgress is returned when a scan is started while another one
	// owned by the same session is loading.
	ErrScanInProgress = errors.New("scan already in progress")
	// ErrNothingToRetry is returned by Retry outside the Success and Error phases.
	ErrNothingToRetry = errors.New("no finished scan to retry")
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// State is a snapshot of a Session. Result is set only in PhaseSuccess and
// Error only in PhaseError.
type State struct {
	Phase  Phase
	Result *domain.ScanResult
	Error  string
}

func (s State) IsLoading() bool { return s.Phase == PhaseLoading }

// Runner is satisfied by *Scanner.
type Runner interface {
	Scan(ctx context.Context, imageBase64 string) (*domain.ScanResult, error)
}

// Session owns the lifecycle of scans driven by a single caller:
// Idle → Loading → Success|Error, retry back to Loading, Reset to Idle.
type Session struct {
	runner   Runner
	onChange func(State)

	mu        sync.Mutex
	state     State
	lastImage string
	// generation invalidates in-flight scans when Reset is called.
	generation uint64
}

// NewSession returns an idle session. onChange, if not nil, is called with
// every new state.
func NewSession(runner Runner, onChange func(State)) *Session {
	return &Session{runner: runner, onChange: onChange}
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Scan moves the session to Loading, runs the scan and records the outcome.
// A new image may be scanned from any phase but Loading; it replaces the image
// Retry re-runs. It returns ErrScanInProgress without changing state if a scan
// is loading.
func (s *Session) Scan(ctx context.Context, imageBase64 string) (*domain.ScanResult, error) {
	s.mu.Lock()
	if s.state.Phase == PhaseLoading {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	gen, snapshot := s.begin(imageBase64)
	s.mu.Unlock()

	s.notify(snapshot)
	return s.run(ctx, gen, imageBase64)
}

// Retry re-runs the last scanned image. Only valid after a scan finished.
func (s *Session) Retry(ctx context.Context) (*domain.ScanResult, error) {
	s.mu.Lock()
	if s.state.Phase != PhaseSuccess && s.state.Phase != PhaseError {
		s.mu.Unlock()
		return nil, ErrNothingToRetry
	}
	image := s.lastImage
	gen, snapshot := s.begin(image)
	s.mu.Unlock()

	s.notify(snapshot)
	return s.run(ctx, gen, image)
}

// Reset returns the session to Idle from any phase. A scan still in flight
// finishes but its outcome is discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	s.generation++
	s.state = State{Phase: PhaseIdle}
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
}

// begin must be called with mu held.
func (s *Session) begin(image string) (uint64, State) {
	s.generation++
	s.lastImage = image
	s.state = State{Phase: PhaseLoading}
	return s.generation, s.state
}

func (s *Session) run(ctx context.Context, gen uint64, image string) (*domain.ScanResult, error) {
	result, err := s.runner.Scan(ctx, image)

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return result, err
	}
	if err != nil {
		s.state = State{Phase: PhaseError, Error: UserMessage(err)}
	} else {
		s.state = State{Phase: PhaseSuccess, Result: result}
	}
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return result, err
}

func (s *Session) notify(state State) {
	if s.onChange != nil {
		s.onChange(state)
	}
}
