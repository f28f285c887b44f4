package response

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/granite-tools/packmgr/pkg/api"
)

func TestParseSimple(t *testing.T) {
	resp, err := ParseSimple(200, "OK", strings.NewReader(`{"success":true,"msg":"Package uploaded","path":"/etc/packages/g/n-1.0.zip"}`), "utf-8")
	require.NoError(t, err)
	assert.Equal(t, &api.SimpleResponse{Success: true, Message: "Package uploaded", Path: "/etc/packages/g/n-1.0.zip"}, resp)

	resp, err = ParseSimple(200, "OK", strings.NewReader(`{}`), "")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Message)
	assert.Empty(t, resp.Path)

	_, err = ParseSimple(200, "OK", strings.NewReader(`not json`), "")
	assert.ErrorIs(t, err, ErrDecodeJSON)

	_, err = ParseSimple(400, "Bad Request", strings.NewReader(`{}`), "")
	assert.ErrorIs(t, err, api.ErrUnsupportedCommand)

	_, err = ParseSimple(403, "Forbidden", strings.NewReader(`{}`), "")
	assert.ErrorIs(t, err, api.ErrUnexpectedStatus)
}

func TestParseList(t *testing.T) {
	body := `{"results":[
		{"group":"adamcin","name":"test","version":"1.0","hasSnapshot":true,"needsRewrap":false},
		{"group":"adamcin","name":"other","version":"","hasSnapshot":false,"needsRewrap":true}
	],"total":2}`

	resp, err := ParseList(200, "OK", strings.NewReader(body), "utf-8")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "/etc/packages/adamcin/test-1.0", resp.Results[0].PackID.InstallationPath)
	assert.True(t, resp.Results[0].HasSnapshot)
	assert.Equal(t, "/etc/packages/adamcin/other", resp.Results[1].PackID.InstallationPath)
	assert.True(t, resp.Results[1].NeedsRewrap)
}

func TestParseListErrors(t *testing.T) {
	_, err := ParseList(201, "Created", strings.NewReader(`{"results":[],"total":0}`), "")
	assert.ErrorIs(t, err, api.ErrUnexpectedStatus, "only 200 is accepted")

	_, err = ParseList(200, "OK", strings.NewReader(`{"total":0}`), "")
	assert.ErrorIs(t, err, ErrDecodeJSON)

	_, err = ParseList(200, "OK", strings.NewReader(`{"results":[{"group":"","name":"x"}],"total":1}`), "")
	assert.ErrorIs(t, err, ErrInvalidListResult)
	assert.ErrorIs(t, err, api.ErrInvalidPID)
}
