package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmailList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "Boss@Chantier.fr", want: []string{"boss@chantier.fr"}},
		{name: "trims and drops blanks", raw: " a@b.fr , ,c@d.fr ", want: []string{"a@b.fr", "c@d.fr"}},
		{name: "deduplicates case-insensitively", raw: "a@b.fr,A@B.FR", want: []string{"a@b.fr"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEmailList(tt.raw))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "firebase-key.json")
	require.NoError(t, os.WriteFile(keyPath, []byte("{}"), 0o600))

	valid := func() *Config {
		return &Config{
			FirebaseServiceAccountKeyPath: keyPath,
			StoreDriver:                   StoreDriverFirestore,
			ProfilesCollection:            "users",
			SitesCollection:               "chantiers",
		}
	}

	assert.NoError(t, valid().Validate())

	missingKey := valid()
	missingKey.FirebaseServiceAccountKeyPath = ""
	assert.Error(t, missingKey.Validate())

	absentKey := valid()
	absentKey.FirebaseServiceAccountKeyPath = filepath.Join(t.TempDir(), "nope.json")
	assert.Error(t, absentKey.Validate())

	badDriver := valid()
	badDriver.StoreDriver = "dexie"
	assert.Error(t, badDriver.Validate())

	noCollection := valid()
	noCollection.SitesCollection = " "
	assert.Error(t, noCollection.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "firebase-key.json")
	require.NoError(t, os.WriteFile(keyPath, []byte("{}"), 0o600))

	t.Setenv("FIREBASE_SERVICE_ACCOUNT_KEY_PATH", keyPath)
	t.Setenv("ADMIN_EMAILS", "Admin@Chantier.fr, second@chantier.fr")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SERVER_TIMEOUT_SECONDS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@chantier.fr", "second@chantier.fr"}, cfg.AdminEmails)
	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "users", cfg.ProfilesCollection)
	assert.Equal(t, "chantiers", cfg.SitesCollection)
	assert.Equal(t, "@hourly", cfg.ClientSiteSyncSchedule)
	assert.Equal(t, 12.0, cfg.ServerTimeout.Seconds())
}
