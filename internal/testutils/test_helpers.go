package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bofhshell/pkg/bofhtypes"
)

// UserCatalog returns a small catalog covering the common command shapes: static
// parameters with literal and service-computed defaults, a secret, an optional
// trailing parameter, a prompt-function command and a parameterless one.
func UserCatalog() bofhtypes.CommandCatalog {
	return bofhtypes.CommandCatalog{
		"user_create": {
			Path: []string{"user", "create"},
			Params: bofhtypes.StaticParams(
				bofhtypes.ParameterDescriptor{Prompt: "Owner", HelpRef: "person_id"},
				bofhtypes.ParameterDescriptor{Prompt: "Username", Default: bofhtypes.AskServiceDefault(), HelpRef: "account_name"},
				bofhtypes.ParameterDescriptor{Prompt: "Password", Type: bofhtypes.ParamSecret},
				bofhtypes.ParameterDescriptor{Prompt: "Expire date", Optional: true},
			),
		},
		"user_info": {
			Path: []string{"user", "info"},
			Params: bofhtypes.StaticParams(
				bofhtypes.ParameterDescriptor{Prompt: "Username", HelpRef: "account_name"},
			),
		},
		"user_delete": {
			Path: []string{"user", "delete"},
			Params: bofhtypes.StaticParams(
				bofhtypes.ParameterDescriptor{Prompt: "Username"},
			),
		},
		"group_add": {
			Path: []string{"group", "add"},
			Params: bofhtypes.StaticParams(
				bofhtypes.ParameterDescriptor{Prompt: "Member"},
				bofhtypes.ParameterDescriptor{Prompt: "Group", Default: bofhtypes.LiteralDefault("staff")},
			),
		},
		"group_list": {
			Path: []string{"group", "list"},
		},
		"person_create": {
			Path:   []string{"person", "create"},
			Params: bofhtypes.PromptFunction(),
		},
	}
}

// CreateTempFile creates a temporary file with given content
func CreateTempFile(t *testing.T, filename, content string) string {
	t.Helper()
	filePath := filepath.Join(t.TempDir(), filename)

	err := os.WriteFile(filePath, []byte(content), 0644)
	require.NoError(t, err, "Should create temp file successfully")

	return filePath
}

// CreateTempDir creates a temporary directory holding the given files.
func CreateTempDir(t *testing.T, files map[string]string) string {
	t.Helper()
	tmpDir := t.TempDir()

	for filename, content := range files {
		filePath := filepath.Join(tmpDir, filename)

		// Create directory if needed
		if dir := filepath.Dir(filePath); dir != tmpDir {
			err := os.MkdirAll(dir, 0755)
			require.NoError(t, err, "Should create directory %s", dir)
		}

		err := os.WriteFile(filePath, []byte(content), 0644)
		require.NoError(t, err, "Should create file %s", filename)
	}

	return tmpDir
}
