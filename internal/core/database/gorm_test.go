package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "native dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/shelter?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/shelter?parseTime=true",
		},
		{
			name: "jdbc url with overrides",
			in:   "jdbc:mysql://db:3306/shelter?useSSL=false&serverTimezone=UTC&characterEncoding=utf8",
			user: "app", pass: "secret",
			want: "app:secret@tcp(db:3306)/shelter?charset=utf8&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "url credentials and defaults",
			in:   "mysql://u:p@localhost:3306/shelter",
			want: "u:p@tcp(localhost:3306)/shelter?charset=utf8mb4&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeMySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "app:****@tcp(db:3306)/x", maskDSN("app:secret@tcp(db:3306)/x"))
	assert.Equal(t, "shelter.db", maskDSN("shelter.db"))
}

func TestNewGorm_SQLiteAndMigrate(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"animals", "adopters", "adoptions", "veterinary_records", "volunteers", "donations", "users"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.True(t, errors.Is(err, ErrUnsupportedDriver))
}
