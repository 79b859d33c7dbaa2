package migration

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_create_user_profiles.up.sql":   {Data: []byte("CREATE TABLE user_profiles ();")},
		"migrations/002_create_user_profiles.down.sql": {Data: []byte("DROP TABLE user_profiles;")},
		"migrations/001_create_companies.up.sql":       {Data: []byte("CREATE TABLE companies ();")},
		"migrations/001_create_companies.down.sql":     {Data: []byte("DROP TABLE companies;")},
		"migrations/README.md":                         {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "create_companies", migrations[0].Name)
	assert.Equal(t, "DROP TABLE companies;", migrations[0].DownSQL)
	assert.Len(t, migrations[0].Checksum, 64)
	assert.Equal(t, 2, migrations[1].Version)
	assert.Equal(t, "create_user_profiles", migrations[1].Name)
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "missing down file",
			fsys: fstest.MapFS{"001_create_companies.up.sql": {Data: []byte("x")}},
			want: "failed to read down migration",
		},
		{
			name: "non numeric version",
			fsys: fstest.MapFS{
				"abc_create_companies.up.sql":   {Data: []byte("x")},
				"abc_create_companies.down.sql": {Data: []byte("x")},
			},
			want: "invalid migration version",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"001_a.up.sql":   {Data: []byte("x")},
				"001_a.down.sql": {Data: []byte("x")},
				"01_b.up.sql":    {Data: []byte("y")},
				"01_b.down.sql":  {Data: []byte("y")},
			},
			want: "duplicate migration version 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStatuses(t *testing.T) {
	appliedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	all := []Migration{
		{Version: 1, Name: "create_companies", Checksum: checksum("a")},
		{Version: 2, Name: "create_user_profiles", Checksum: checksum("b")},
		{Version: 3, Name: "create_provisioning_requests", Checksum: checksum("c")},
	}
	applied := map[int]Migration{
		1: {Version: 1, Checksum: checksum("a"), AppliedAt: appliedAt},
		2: {Version: 2, Checksum: checksum("edited"), AppliedAt: appliedAt},
	}

	got := statuses(all, applied)

	require.Len(t, got, 3)
	assert.True(t, got[0].Applied)
	assert.False(t, got[0].Drifted)
	assert.Equal(t, appliedAt, got[0].AppliedAt)
	assert.True(t, got[1].Drifted)
	assert.False(t, got[2].Applied)
}

func TestEmbeddedSchemaLoads(t *testing.T) {
	migrations, err := LoadMigrations(Schema)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	for i, mg := range migrations {
		assert.Equal(t, i+1, mg.Version)
		assert.NotEmpty(t, mg.UpSQL)
		assert.NotEmpty(t, mg.DownSQL)
	}
}
