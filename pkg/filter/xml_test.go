package filter

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXML(t *testing.T) {
	fh, err := os.Open("testdata/filter.xml")
	require.NoError(t, err)
	defer fh.Close()

	f, err := ParseXML(fh)
	require.NoError(t, err)

	want := New(
		NewRoot("/apps/recap",
			Exclude("/apps/recap/install(/.*)?"),
			Include(`/apps/recap/install/recap-graniteclient-.*\.jar`),
		),
		NewRoot("/etc/map"),
	)
	assert.True(t, want.Equal(f), f.Spec())
}

func TestParseXMLErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":    `<workspaceFilter><filter root="/a">`,
		"missing root": `<workspaceFilter><filter><include pattern="/a"/></filter></workspaceFilter>`,
		"bad element":  `<workspaceFilter><filter root="/a"><permit pattern="/a"/></filter></workspaceFilter>`,
		"bad pattern":  `<workspaceFilter><filter root="/a"><include pattern="/a/(x"/></filter></workspaceFilter>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseXML(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrDecodeXML)
		})
	}
}

func TestXMLRendersParseableDocument(t *testing.T) {
	out, err := exampleFilter().XML()
	require.NoError(t, err)
	assert.Contains(t, string(out), `<exclude pattern="/etc/packages(/.*)?"></exclude>`)

	back, err := ParseXML(bytes.NewReader(out))
	require.NoError(t, err)
	assert.True(t, exampleFilter().Equal(back))
}

func TestFilterJSON(t *testing.T) {
	f := New(NewRoot("/etc", Exclude("/etc/packages(/.*)?"), Include("/etc/map")))

	data, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"root":"/etc","rules":[
		{"modifier":"exclude","pattern":"/etc/packages(/.*)?"},
		{"modifier":"include","pattern":"/etc/map"}]}]`, string(data))

	var back Filter
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, f.Equal(back))

	err = json.Unmarshal([]byte(`[{"root":"/etc","rules":[{"modifier":"maybe","pattern":"x"}]}]`), &back)
	assert.ErrorIs(t, err, ErrUnknownModifier)
}
