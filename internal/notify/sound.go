package notify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/gen2brain/beeep"
)

// Candidate players tried in order when no command is configured.
var defaultPlayers = map[string][][]string{
	"darwin": {{"afplay"}},
	"linux":  {{"paplay"}, {"aplay", "-q"}, {"mpg123", "-q"}, {"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"}},
}

// SoundPlayer plays an audio file through an external player and falls back to a
// terminal beep when there is no file or no player.
type SoundPlayer struct {
	command []string
	beep    func() error
}

// NewSoundPlayer creates a player. command overrides the player program, for example
// "mpv --no-video"; the file path is appended as the last argument.
func NewSoundPlayer(command string) *SoundPlayer {
	p := &SoundPlayer{
		beep: func() error { return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration) },
	}
	if fields := strings.Fields(command); len(fields) > 0 {
		p.command = fields
	} else {
		p.command = detectPlayer(runtime.GOOS)
	}
	return p
}

func detectPlayer(goos string) []string {
	for _, candidate := range defaultPlayers[goos] {
		if _, err := exec.LookPath(candidate[0]); err == nil {
			return candidate
		}
	}
	return nil
}

// Play plays resource, or beeps when resource is empty, missing or unplayable.
func (p *SoundPlayer) Play(ctx context.Context, resource string) error {
	if resource == "" || len(p.command) == 0 {
		return p.beep()
	}
	if _, err := os.Stat(resource); err != nil {
		if beepErr := p.beep(); beepErr != nil {
			return errors.Join(fmt.Errorf("sound file: %w", err), beepErr)
		}
		return nil
	}

	args := append(append([]string(nil), p.command[1:]...), resource)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", p.command[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
