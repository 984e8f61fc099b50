package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	forced  int
	version uint
	dirty   bool
	err     error
}

func (f *fakeMigrator) Up() error   { f.calls = append(f.calls, "up"); return f.err }
func (f *fakeMigrator) Down() error { f.calls = append(f.calls, "down"); return f.err }

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, f.dirty, f.err
}

func (f *fakeMigrator) Force(v int) error {
	f.calls = append(f.calls, "force")
	f.forced = v
	return f.err
}

func TestRunDispatch(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		call  string
		steps int
		out   string
	}{
		{name: "default is up", call: "up", out: "migrations complete\n"},
		{name: "up", args: []string{"up"}, call: "up", out: "migrations complete\n"},
		{name: "down one", args: []string{"down"}, call: "steps", steps: -1, out: "reverted 1 migration(s)\n"},
		{name: "down n", args: []string{"down", "2"}, call: "steps", steps: -2, out: "reverted 2 migration(s)\n"},
		{name: "down all", args: []string{"down", "all"}, call: "down", out: "all migrations reverted\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMigrator{}
			var out bytes.Buffer
			require.NoError(t, run(m, tt.args, &out))
			assert.Equal(t, []string{tt.call}, m.calls)
			assert.Equal(t, tt.steps, m.steps)
			assert.Equal(t, tt.out, out.String())
		})
	}
}

func TestRunToleratesNoChange(t *testing.T) {
	for _, args := range [][]string{{"up"}, {"down"}, {"down", "all"}} {
		m := &fakeMigrator{err: migrate.ErrNoChange}
		assert.NoError(t, run(m, args, &bytes.Buffer{}), args)
	}
}

func TestRunVersion(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&fakeMigrator{version: 3, dirty: true}, []string{"version"}, &out))
	assert.Equal(t, "version 3 dirty=true\n", out.String())

	out.Reset()
	require.NoError(t, run(&fakeMigrator{err: migrate.ErrNilVersion}, []string{"version"}, &out))
	assert.Equal(t, "no migrations applied\n", out.String())

	err := run(&fakeMigrator{err: errors.New("conn reset")}, []string{"version"}, &out)
	assert.ErrorContains(t, err, "read version: conn reset")
}

func TestRunForce(t *testing.T) {
	m := &fakeMigrator{}
	var out bytes.Buffer
	require.NoError(t, run(m, []string{"force", "2"}, &out))
	assert.Equal(t, 2, m.forced)
	assert.Equal(t, "forced version to 2\n", out.String())
}

func TestRunRejectsBadArguments(t *testing.T) {
	for _, args := range [][]string{{"sideways"}, {"force"}, {"force", "x"}, {"down", "0"}, {"down", "-1"}, {"down", "many"}} {
		m := &fakeMigrator{}
		assert.Error(t, run(m, args, &bytes.Buffer{}), args)
		assert.Empty(t, m.calls, args)
	}
}

func TestRunWrapsMigrateErrors(t *testing.T) {
	m := &fakeMigrator{err: errors.New("dirty database version 2")}
	err := run(m, []string{"down", "2"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "migrate down 2: dirty database version 2")
}
