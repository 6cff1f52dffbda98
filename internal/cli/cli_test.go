package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/adapters/file"
	"github.com/aretw0/clearance/internal/intake"
	"github.com/aretw0/clearance/internal/sanitize"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverse_JSONLines(t *testing.T) {
	eng, err := clearance.New()
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		`"start_check"`,
		`tx_yes`,
		``,
		`"no"`,
		`Dana`,
		`{"email":"dana@example.com","phone":5125550100}`,
	}, "\n") + "\n")
	var out bytes.Buffer

	last, err := Converse(context.Background(), eng, "s1", NewJSONHandler(in, &out))
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, intake.AskOffenseLevel, last)

	dec := json.NewDecoder(&out)
	var steps []string
	for dec.More() {
		var line map[string]any
		require.NoError(t, dec.Decode(&line))
		steps = append(steps, line["step"].(string))
		assert.Contains(t, line, "quick_replies")
	}
	assert.Equal(t, []string{"GREETING", "ASK_TEXAS_CASE", "ASK_LIFETIME_BAN", "ASK_NAME", "ASK_CONTACT", "ASK_OFFENSE_LEVEL"}, steps)

	s, err := eng.Inspect(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "5125550100", s.CollectedData.Phone)
}

func TestConverse_JSONValidationError(t *testing.T) {
	eng, err := clearance.New()
	require.NoError(t, err)

	in := strings.NewReader("start_check\ntx_yes\nno\n\"   \"\n")
	var out bytes.Buffer
	_, err = Converse(context.Background(), eng, "s1", NewJSONHandler(in, &out))
	assert.ErrorIs(t, err, io.EOF)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	var last map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[4]), &last))
	assert.Equal(t, "ASK_NAME", last["step"])
	assert.Equal(t, "Please share at least your first name so we can continue.", last["validation_error"])
}

func TestRunSession_TextResumes(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	err := RunSession(RunOptions{
		Dir:       dir,
		SessionID: "dana",
		In:        strings.NewReader("1\n1\n123456789\n2\nDana\ndana@example.com\n\n/quit\n"),
		Out:       &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Session 'dana' active.")
	assert.Contains(t, out.String(), sanitize.SensitiveDataMessage)
	assert.Contains(t, out.String(), "Email (optional): ")
	assert.Contains(t, out.String(), "Misdemeanor (A/B)")
	assert.Contains(t, out.String(), "Paused at 'ASK_OFFENSE_LEVEL'")

	store := file.New(filepath.Join(dir, file.DefaultDir))
	s, err := store.Load(context.Background(), "dana")
	require.NoError(t, err)
	assert.Equal(t, intake.AskOffenseLevel, s.CurrentStateID)
	assert.Equal(t, "dana@example.com", s.CollectedData.Email)
	assert.Equal(t, domain.JurisdictionTexas, s.CollectedData.Jurisdiction)

	out.Reset()
	require.NoError(t, RunSession(RunOptions{Dir: dir, SessionID: "dana", In: strings.NewReader(""), Out: &out}))
	assert.Contains(t, out.String(), "Resuming session 'dana'.")

	out.Reset()
	require.NoError(t, RunSession(RunOptions{Dir: dir, SessionID: "dana", Fresh: true, In: strings.NewReader(""), Out: &out}))
	assert.Contains(t, out.String(), "Session 'dana' active.")
}

func TestFindRules(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, findRules(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.json"), []byte("{}"), 0o644))
	assert.Equal(t, filepath.Join(dir, "rules.json"), findRules(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte("{}"), 0o644))
	assert.Equal(t, filepath.Join(dir, "rules.yaml"), findRules(dir))
}

func TestCreateEngine_BadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jurisdiction: [unterminated"), 0o644))

	_, err := createEngine(RunOptions{Dir: dir}, createLogger(false))
	assert.ErrorContains(t, err, "error loading rules")
}

func TestTextHandler_CloseReleasesReader(t *testing.T) {
	pr, pw := io.Pipe()
	defer pr.Close()
	h := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := h.readLine(ctx, "> ")
		errCh <- err
	}()
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	// Nobody is reading anymore; the line below must not strand the reader.
	_, err := pw.Write([]byte("late answer\n"))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	select {
	case <-h.stopped:
	case <-time.After(time.Second):
		t.Fatal("background reader still blocked after Close")
	}
}
