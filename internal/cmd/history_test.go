package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/phonescan/internal/report"
	"github.com/harrison/phonescan/internal/store"
)

// scanAndGetRunID runs a recorded scan and returns its run id from the report.
func scanAndGetRunID(t *testing.T, dir string, text string) string {
	t.Helper()
	out := filepath.Join(dir, "last.json")
	_, _, err := executeCommand(t, nil, "scan", "--text", text, "--output", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotEmpty(t, doc.RunID)
	return doc.RunID
}

func TestHistory_Empty(t *testing.T) {
	dir := setupWorkspace(t)

	stdout, _, err := executeCommand(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No scan history found.")

	_, err = os.Stat(filepath.Join(dir, "home", "history.db"))
	assert.True(t, os.IsNotExist(err), "listing must not create the database")
}

func TestHistory_ListShowFind(t *testing.T) {
	dir := setupWorkspace(t)

	first := scanAndGetRunID(t, dir, sampleSentence)
	second := scanAndGetRunID(t, dir, "no numbers here")

	stdout, _, err := executeCommand(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== Scan History (2 runs) ===")
	assert.Contains(t, stdout, first)
	assert.Contains(t, stdout, second)

	stdout, _, err = executeCommand(t, nil, "history", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(1 run)")

	stdout, _, err = executeCommand(t, nil, "history", "show", first)
	require.NoError(t, err)
	assert.Contains(t, stdout, "=== Run "+first+" ===")
	assert.Contains(t, stdout, "Matches:  2")
	assert.Contains(t, stdout, "<arg:1>:11: 415-555-1234")
	assert.Contains(t, stdout, "<arg:1>:34: 415-555-9999")

	stdout, _, err = executeCommand(t, nil, "history", "find", "415-555-9999")
	require.NoError(t, err)
	assert.Contains(t, stdout, "415-555-9999: 1 occurrence")
	assert.Contains(t, stdout, first)
	assert.Contains(t, stdout, "<arg:1>:34")

	stdout, _, err = executeCommand(t, nil, "history", "find", "000-000-0000")
	require.NoError(t, err)
	assert.Contains(t, stdout, "has not been seen")
}

func TestHistory_ShowUnknownRun(t *testing.T) {
	dir := setupWorkspace(t)
	scanAndGetRunID(t, dir, sampleSentence)

	_, _, err := executeCommand(t, nil, "history", "show", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestHistory_ShowWithoutHistory(t *testing.T) {
	setupWorkspace(t)

	_, _, err := executeCommand(t, nil, "history", "show", "nope")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestHistory_FindRejectsInvalidNumber(t *testing.T) {
	setupWorkspace(t)

	_, _, err := executeCommand(t, nil, "history", "find", "4155551234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DDD-DDD-DDDD")
}
