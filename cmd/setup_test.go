package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoredFilesAreOwnerOnly(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, storeAPIKey(dir, "sk-secret"))
	require.NoError(t, writeTipsSetup(dir, TipsSetup{Answered: true}))

	for _, name := range []string{apiKeyFileName, setupFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), name)
	}
}

func TestStoreAPIKey_BlankIsNotWritten(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, storeAPIKey(dir, "   "))

	_, err := os.Stat(filepath.Join(dir, apiKeyFileName))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTipsSetup_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	missing, err := readTipsSetup(dir)
	require.NoError(t, err)
	assert.False(t, missing.Answered)

	want := TipsSetup{Answered: true, AITips: true}
	require.NoError(t, writeTipsSetup(dir, want))

	got, err := readTipsSetup(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTipsSetup_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, setupFileName), []byte("{"), 0600))

	_, err := readTipsSetup(dir)

	assert.Error(t, err)
}

func TestNeedsSetup(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	assert.False(t, needsSetup(TipsSetup{}, f), "a regular file is not a terminal")
	assert.False(t, needsSetup(TipsSetup{Answered: true}, f))
}

func press(t *testing.T, m setupModel, msg tea.KeyMsg) setupModel {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(setupModel)
	require.True(t, ok)
	return got
}

func TestSetupModel(t *testing.T) {
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	t.Run("empty answer keeps offline tips", func(t *testing.T) {
		got := press(t, newSetupModel(""), enter)
		assert.True(t, got.finished)
		assert.Equal(t, TipsSetup{Answered: true}, got.result)
		assert.Empty(t, got.key)
		assert.Contains(t, got.View(), "offline")
	})

	t.Run("typed key enables tips", func(t *testing.T) {
		m := newSetupModel("")
		for _, r := range "sk-typed" {
			m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
		require.False(t, m.finished)
		assert.NotContains(t, m.View(), "sk-typed", "the key is masked")

		got := press(t, m, enter)
		assert.Equal(t, "sk-typed", got.key)
		assert.Equal(t, TipsSetup{Answered: true, AITips: true}, got.result)
	})

	t.Run("configured key is confirmed", func(t *testing.T) {
		m := newSetupModel("sk-env")
		assert.Contains(t, m.View(), "(Y/n)")

		got := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
		assert.Equal(t, "sk-env", got.key)
		assert.True(t, got.result.AITips)
	})

	t.Run("configured key declined", func(t *testing.T) {
		m := newSetupModel("sk-env")
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
		require.False(t, m.finished, "other keys are ignored")

		got := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
		assert.Empty(t, got.key)
		assert.False(t, got.result.AITips)
	})

	t.Run("esc skips", func(t *testing.T) {
		m := newSetupModel("")
		m.input.SetValue("sk-half")
		got := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.True(t, got.finished)
		assert.Empty(t, got.key)
		assert.True(t, got.result.Answered)
	})
}
