package restapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalogue.onebusaway.org/internal/buildinfo"
)

func TestConfigHandler(t *testing.T) {
	originalCommit := buildinfo.CommitHash
	originalVersion := buildinfo.Version
	originalBranch := buildinfo.Branch

	defer func() {
		buildinfo.CommitHash = originalCommit
		buildinfo.Version = originalVersion
		buildinfo.Branch = originalBranch
	}()

	buildinfo.CommitHash = "test-hash-1234567"
	buildinfo.Version = "1.0.0-test"
	buildinfo.Branch = "feature/testing"

	_, resp, model := serveAndRetrieveEndpoint(t, "/api/where/config.json?key=test")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", model.Text)

	entry := entryOf(t, model)

	gitProps, ok := entry["gitProperties"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "test-hash-1234567", gitProps["git.commit.id"])
	assert.Equal(t, "test-ha", gitProps["git.commit.id.abbrev"])
	assert.Equal(t, "1.0.0-test", gitProps["git.build.version"])
	assert.Equal(t, "feature/testing", gitProps["git.branch"])

	routing, ok := entry["routing"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(6), routing["busWaitTime"])
	assert.Equal(t, float64(40), routing["busVelocity"])

	network, ok := entry["network"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), network["stopCount"])
	assert.Equal(t, float64(2), network["busCount"])
	assert.Equal(t, float64(8), network["graphVertexCount"])
	assert.Equal(t, "testdata/network.json", network["networkSource"])
}

func TestConfigHandler_ShortCommitHash(t *testing.T) {
	original := buildinfo.CommitHash
	defer func() { buildinfo.CommitHash = original }()
	buildinfo.CommitHash = "abc"

	_, _, model := serveAndRetrieveEndpoint(t, "/api/where/config.json?key=test")

	gitProps := entryOf(t, model)["gitProperties"].(map[string]interface{})
	assert.Equal(t, "unknown", gitProps["git.commit.id.abbrev"])
}
