package transport

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
)

// CommandFunc builds the player process. exec.CommandContext by default.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Process plays a track through ffplay. ffplay has no control channel when
// run headless, so pause, seek and volume changes restart the player at the
// tracked position.
type Process struct {
	*Simulated

	path    string
	command CommandFunc
	log     *slog.Logger

	procMu sync.Mutex
	cancel context.CancelFunc
	cmd    *exec.Cmd
}

// NewProcess prepares a paused ffplay transport for path. duration is the
// track length as reported by ffprobe, 0 if unknown.
func NewProcess(path string, duration float64, logger *slog.Logger) (*Process, error) {
	if path == "" {
		return nil, ErrNoMedia
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Process{
		Simulated: NewSimulated(duration),
		path:      path,
		command:   exec.CommandContext,
		log:       logger.With("component", "transport", "path", path),
	}, nil
}

// Play starts ffplay at the current position.
func (p *Process) Play() error {
	if !p.Paused() {
		return nil
	}
	if err := p.spawn(p.Position(), p.Volume()); err != nil {
		return err
	}
	return p.Simulated.Play()
}

// Pause stops the player and keeps the position.
func (p *Process) Pause() error {
	if err := p.Simulated.Pause(); err != nil {
		return err
	}
	p.kill()
	return nil
}

// Seek moves the position and restarts the player if it is playing.
func (p *Process) Seek(seconds float64) error {
	if err := p.Simulated.Seek(seconds); err != nil {
		return err
	}
	return p.restart()
}

// SetVolume changes the volume and restarts the player if it is playing.
func (p *Process) SetVolume(v float64) error {
	if err := p.Simulated.SetVolume(v); err != nil {
		return err
	}
	return p.restart()
}

// Close stops the player.
func (p *Process) Close() error {
	return p.Pause()
}

func (p *Process) restart() error {
	if p.Paused() {
		return nil
	}
	return p.spawn(p.Position(), p.Volume())
}

func (p *Process) spawn(at, volume float64) error {
	p.kill()

	p.procMu.Lock()
	defer p.procMu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cmd := p.command(ctx, "ffplay", playArgs(p.path, at, volume)...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start ffplay: %w", err)
	}
	p.cancel, p.cmd = cancel, cmd
	p.log.Debug("player started", "at", at, "volume", volume, "pid", cmd.Process.Pid)

	go func() {
		err := cmd.Wait()
		if ctx.Err() == nil && err != nil {
			p.log.Warn("player exited", "err", err)
		}
	}()
	return nil
}

func (p *Process) kill() {
	p.procMu.Lock()
	defer p.procMu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel, p.cmd = nil, nil
	}
}

func playArgs(path string, at, volume float64) []string {
	return []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(at, 'f', 3, 64),
		"-volume", strconv.Itoa(int(volume*100 + 0.5)),
		path,
	}
}
