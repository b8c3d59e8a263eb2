package database

import (
	"testing"
	"testing/fstest"

	"sensive/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.Config
		wantSQL     bool
		wantAuto    bool
		expectError bool
	}{
		{"hybrid development", config.Config{Env: "development", DBDriver: config.DriverPostgres}, true, true, false},
		{"hybrid production", config.Config{Env: "production", DBDriver: config.DriverPostgres, DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBDriver: config.DriverPostgres, DBSchemaMode: "SQL"}, true, false, false},
		{"auto in production refused", config.Config{Env: "prod", DBDriver: config.DriverPostgres, DBSchemaMode: "auto"}, false, false, true},
		{"auto in production allowed", config.Config{Env: "prod", DBDriver: config.DriverPostgres, DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"sqlite always auto", config.Config{Env: "development", DBDriver: config.DriverSQLite, DBSchemaMode: "sql"}, false, true, false},
		{"unknown mode", config.Config{Env: "development", DBDriver: config.DriverPostgres, DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAuto, runAuto)
		})
	}
}

func TestRegisteredMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "000001_create_blog_schema", all[0].String())
	assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS post_likes")
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func keepRegistry(t *testing.T) {
	t.Helper()
	saved := append([]Migration(nil), migrations...)
	t.Cleanup(func() { migrations = saved })
}

func migrationFiles(names ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, name := range names {
		fsys["migrations/"+name] = &fstest.MapFile{Data: []byte("-- " + name)}
	}
	return fsys
}

func TestRegisterMigrations_AddsInVersionOrder(t *testing.T) {
	keepRegistry(t)

	err := RegisterMigrations(migrationFiles(
		"000003_add_post_views.up.sql", "000003_add_post_views.down.sql",
		"000002_add_tag_index.up.sql", "000002_add_tag_index.down.sql",
	))
	require.NoError(t, err)

	all := GetMigrations()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].Version, all[1].Version, all[2].Version})
	assert.Equal(t, "add_tag_index", GetMigrationByVersion(2).Name)
	assert.Equal(t, "-- 000003_add_post_views.down.sql", GetMigrationByVersion(3).DownScript)
}

func TestRegisterMigrations_RejectsBadNames(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{"non numeric version", []string{"v2_add_tag_index.up.sql", "v2_add_tag_index.down.sql"}, "invalid version"},
		{"zero version", []string{"000000_init.up.sql", "000000_init.down.sql"}, "invalid version"},
		{"missing name", []string{"000002.up.sql", "000002.down.sql"}, "expected <version>_<name>"},
		{"missing down script", []string{"000002_add_tag_index.up.sql"}, "down migration"},
		{"same version twice", []string{
			"000002_a.up.sql", "000002_a.down.sql",
			"000002_b.up.sql", "000002_b.down.sql",
		}, "already used"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keepRegistry(t)

			err := RegisterMigrations(migrationFiles(tt.files...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Len(t, GetMigrations(), 1)
		})
	}
}

func TestRegisterMigrations_RejectsDuplicateRegistration(t *testing.T) {
	keepRegistry(t)

	err := RegisterMigrations(migrationFS)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Len(t, GetMigrations(), 1)
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "create_blog_schema"}}
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1}, registered))

	err := validateAppliedVersions([]int{1, 7}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000007")
}
