package infra

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opspulse/workmon/internal/domain"
)

func TestFileActivityReader_FiltersBySubjectAndLimit(t *testing.T) {
	reader := NewFileActivityReader([]domain.ActivityRecord{
		{SubjectID: "e1", Kind: domain.KindFocus},
		{SubjectID: "e2", Kind: domain.KindKey},
		{SubjectID: "e1", Kind: domain.KindIdle},
		{SubjectID: "e3", Kind: domain.KindFocus},
	})

	records, err := reader.FetchRecords(context.Background(), []string{"e1", "e3"}, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "e1", records[0].SubjectID)
	assert.Equal(t, "e3", records[2].SubjectID)

	records, err = reader.FetchRecords(context.Background(), []string{"e1", "e3"}, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = reader.FetchRecords(context.Background(), []string{"ghost"}, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoadActivityRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	export := `[
		{"userId": "e1", "kind": "focus", "applicationName": "Slack", "windowTitle": "#general"},
		{"userId": "e2", "kind": "idle", "isIdle": true}
	]`
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	reader, err := LoadActivityRecords(path)
	require.NoError(t, err)

	records, err := reader.FetchRecords(context.Background(), []string{"e1"}, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Slack", records[0].AppName)
	require.NotNil(t, records[0].WindowTitle)
	assert.Equal(t, "#general", *records[0].WindowTitle)
}

func TestLoadActivityRecords_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := LoadActivityRecords(path)
	assert.Error(t, err)
}
