package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePID(t *testing.T) {
	tests := []struct {
		pid         string
		wantGroup   string
		wantName    string
		wantVersion string
		wantPath    string
	}{
		{"my_packages:foo:1.0", "my_packages", "foo", "1.0", "/etc/packages/my_packages/foo-1.0"},
		{"my_packages:foo", "my_packages", "foo", "", "/etc/packages/my_packages/foo"},
		{"my_packages:foo:", "my_packages", "foo", "", "/etc/packages/my_packages/foo"},
		{"  adamcin/test:bar:2.0-SNAPSHOT  ", "adamcin/test", "bar", "2.0-SNAPSHOT", "/etc/packages/adamcin/test/bar-2.0-SNAPSHOT"},
	}

	for _, tt := range tests {
		t.Run(tt.pid, func(t *testing.T) {
			id, err := ParsePID(tt.pid)
			require.NoError(t, err)
			assert.Equal(t, tt.wantGroup, id.Group)
			assert.Equal(t, tt.wantName, id.Name)
			assert.Equal(t, tt.wantVersion, id.Version)
			assert.Equal(t, tt.wantPath, id.InstallationPath)
		})
	}
}

func TestParsePIDInvalid(t *testing.T) {
	for _, pid := range []string{"", "foo", "a:b:c:d", ":name", "group:"} {
		t.Run(pid, func(t *testing.T) {
			_, err := ParsePID(pid)
			assert.ErrorIs(t, err, ErrInvalidPID)
		})
	}
}

func TestPackIDFromPath(t *testing.T) {
	id, err := PackIDFromPath("/etc/packages/my_packages/foo-bar-1.0.2-SNAPSHOT.zip")
	require.NoError(t, err)
	assert.Equal(t, "my_packages", id.Group)
	assert.Equal(t, "foo-bar", id.Name)
	assert.Equal(t, "1.0.2-SNAPSHOT", id.Version)
	assert.Equal(t, "/etc/packages/my_packages/foo-bar-1.0.2-SNAPSHOT", id.InstallationPath)

	id, err = PackIDFromPath("/etc/packages/a/b/no-version.jar")
	require.NoError(t, err)
	assert.Equal(t, "a/b", id.Group)
	assert.Equal(t, "no-version", id.Name)
	assert.Empty(t, id.Version)

	_, err = PackIDFromPath("/content/foo.zip")
	assert.ErrorIs(t, err, ErrInvalidPackPath)

	_, err = PackIDFromPath("/etc/packages/foo.zip")
	assert.ErrorIs(t, err, ErrInvalidPackPath)
}

func TestPackIDCompare(t *testing.T) {
	mk := func(pid string) PackID {
		id, err := ParsePID(pid)
		require.NoError(t, err)
		return *id
	}

	assert.Zero(t, mk("g:n:1.0").Compare(mk("g:n:1.0")))
	assert.Negative(t, mk("a:n:9").Compare(mk("b:n:1")))
	assert.Negative(t, mk("g:a:9").Compare(mk("g:b:1")))
	assert.Negative(t, mk("g:n:1.2").Compare(mk("g:n:1.10")), "numeric segments compare numerically")
	assert.Positive(t, mk("g:n:2.0").Compare(mk("g:n:1.99.1")))
	assert.Negative(t, mk("g:n:1.0").Compare(mk("g:n:1.0.1")))
	assert.True(t, mk("g:n:1").Equal(mk("g:n:1")))
	assert.Equal(t, "g:n:1", mk("g:n:1").String())
}

func TestACHandling(t *testing.T) {
	assert.Equal(t, "merge_preserve", ACHandlingMergePreserve.PropertyValue())
	assert.Equal(t, "MergePreserve", ACHandlingMergePreserve.Label())
	assert.Equal(t, "unset", ACHandlingUnset.String())

	for _, in := range []string{"merge_preserve", "MergePreserve", "MERGE_PRESERVE", " mergepreserve "} {
		mode, err := ParseACHandling(in)
		require.NoError(t, err, in)
		assert.Equal(t, ACHandlingMergePreserve, mode)
	}

	_, err := ParseACHandling("sometimes")
	assert.ErrorIs(t, err, ErrInvalidACHandling)

	var mode ACHandling
	require.NoError(t, mode.UnmarshalText([]byte("Clear")))
	assert.Equal(t, ACHandlingClear, mode)
	text, err := mode.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "clear", string(text))
}

func TestDetailedResponseHasErrors(t *testing.T) {
	assert.False(t, (&DetailedResponse{Success: true, ProgressErrors: []string{}}).HasErrors())
	assert.True(t, (&DetailedResponse{Success: true, ProgressErrors: []string{"/x err"}}).HasErrors())
	assert.True(t, (&DetailedResponse{Success: false}).HasErrors())
}
