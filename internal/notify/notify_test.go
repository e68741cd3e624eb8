package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notexe/dailybell/internal/reminder"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, title, message string, timeout time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, title+"|"+message+"|"+timeout.String())
	return r.err
}

type panickingNotifier struct{}

func (panickingNotifier) Notify(context.Context, string, string, time.Duration) error {
	panic("no display")
}

type recordingPlayer struct {
	mu        sync.Mutex
	resources []string
	err       error
}

func (p *recordingPlayer) Play(_ context.Context, resource string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resources = append(p.resources, resource)
	return p.err
}

func TestDispatcherDeliversToAllSinks(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("dbus unavailable")}
	ok := &recordingNotifier{}
	player := &recordingPlayer{err: errors.New("no audio device")}

	d := NewDispatcher(DispatcherConfig{Timeout: 10 * time.Second, Sound: "alarm.mp3"},
		[]Notifier{failing, panickingNotifier{}, ok}, player, nil)

	d.Handle(reminder.Fired{ID: "1", Description: "stretch"})
	d.Handle(reminder.Fired{ID: "2", Description: "drink water"})
	d.Wait()

	assert.ElementsMatch(t, []string{"Reminder|stretch|10s", "Reminder|drink water|10s"}, ok.calls)
	assert.Len(t, failing.calls, 2)
	assert.Equal(t, []string{"alarm.mp3", "alarm.mp3"}, player.resources)
}

func TestDispatcherWithoutPlayer(t *testing.T) {
	n := &recordingNotifier{}
	d := NewDispatcher(DispatcherConfig{Title: "DailyBell"}, []Notifier{n}, nil, nil)

	d.Handle(reminder.Fired{ID: "1", Description: "x"})
	d.Wait()

	assert.Equal(t, []string{"DailyBell|x|0s"}, n.calls)
}

func TestTelegramSender(t *testing.T) {
	var got telegramSendRequest
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	tg := NewTelegramSender("TOKEN", "42", srv.URL, 0)
	err := tg.Notify(context.Background(), "Reminder", "pay <rent>", time.Second)
	require.NoError(t, err)

	assert.Equal(t, "/botTOKEN/sendMessage", path)
	assert.Equal(t, "42", got.ChatID)
	assert.Equal(t, "HTML", got.ParseMode)
	assert.Contains(t, got.Text, "<b>Reminder</b>")
	assert.Contains(t, got.Text, "pay &lt;rent&gt;")
}

func TestTelegramSenderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegramSender("TOKEN", "42", srv.URL, 0)
	err := tg.SendMessage(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestTelegramSenderRateLimitRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	tg := NewTelegramSender("TOKEN", "42", srv.URL, 1)
	require.NoError(t, tg.SendMessage(context.Background(), "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, tg.SendMessage(ctx, "second"), "second message must wait for the next minute")
}

func TestSoundPlayerFallsBackToBeep(t *testing.T) {
	var beeps int
	p := &SoundPlayer{command: []string{"true"}, beep: func() error { beeps++; return nil }}

	require.NoError(t, p.Play(context.Background(), ""))
	require.NoError(t, p.Play(context.Background(), filepath.Join(t.TempDir(), "missing.mp3")))
	assert.Equal(t, 2, beeps)

	noPlayer := &SoundPlayer{beep: func() error { beeps++; return nil }}
	require.NoError(t, noPlayer.Play(context.Background(), "alarm.mp3"))
	assert.Equal(t, 3, beeps)
}

func TestSoundPlayerRunsCommand(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("needs /bin/sh")
	}
	sound := filepath.Join(t.TempDir(), "alarm.mp3")
	require.NoError(t, os.WriteFile(sound, []byte("ID3"), 0o644))

	p := NewSoundPlayer("")
	p.command = []string{"/bin/sh", "-c", `cp "$0" "$0.played"`}
	p.beep = func() error { return errors.New("unexpected beep") }

	require.NoError(t, p.Play(context.Background(), sound))
	_, err := os.Stat(sound + ".played")
	assert.NoError(t, err)

	p.command = []string{"/bin/sh", "-c", "exit 3"}
	assert.Error(t, p.Play(context.Background(), sound))
}

func TestDesktopNotify(t *testing.T) {
	d := NewDesktop(filepath.Join(t.TempDir(), "missing.ico"))
	assert.Empty(t, d.icon, "missing icon is dropped")

	var got []string
	d.show = func(title, message, icon string) error {
		got = append(got, title, message, icon)
		return nil
	}
	require.NoError(t, d.Notify(context.Background(), "Reminder", "stand up", time.Second))
	assert.Equal(t, []string{"Reminder", "stand up", ""}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, d.Notify(ctx, "Reminder", "late", time.Second))
}
