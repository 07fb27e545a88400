package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func writeProperties(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dubbo.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGet_SystemOverridesProperties(t *testing.T) {
	path := writeProperties(t, "dubbo.protocols.tri.port=50051\ndubbo.protocols.tri.name=tri\n")

	out, err := run(t, "get", "port", "--prefix", "dubbo.protocols.", "--id", "tri", "--properties", path)
	require.NoError(t, err)
	assert.Equal(t, "50051", out)

	out, err = run(t, "get", "port", "--prefix", "dubbo.protocols.", "--id", "tri",
		"--properties", path, "-D", "dubbo.protocols.tri.port=60000")
	require.NoError(t, err)
	assert.Equal(t, "60000", out)
}

func TestGet_External(t *testing.T) {
	path := writeProperties(t, "timeout=1\n")

	out, err := run(t, "get", "timeout", "--properties", path, "--external", "timeout=2")
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestGet_Missing(t *testing.T) {
	path := writeProperties(t, "")

	_, err := run(t, "get", "nothing.here", "--properties", path)
	assert.ErrorContains(t, err, `"nothing.here" not found`)
}

func TestGet_InvalidDefine(t *testing.T) {
	_, err := run(t, "get", "k", "-D", "=v", "--properties", writeProperties(t, ""))
	assert.Error(t, err)
}

func TestRuntime_CallMetadataOverSystem(t *testing.T) {
	path := writeProperties(t, "loadbalance=random\n")
	u := "tri://127.0.0.1:50051/org.demo.Greeter?application=demo&retries=3"

	out, err := run(t, "runtime", u, "retries", "--method", "sayHello", "--properties", path, "-D", "retries=9")
	require.NoError(t, err)
	assert.Equal(t, "3", out)

	out, err = run(t, "runtime", u, "loadbalance", "--properties", path)
	require.NoError(t, err)
	assert.Equal(t, "random", out)
}

func TestRuntime_InvalidURL(t *testing.T) {
	_, err := run(t, "runtime", "not a url", "k")
	assert.Error(t, err)
}

func TestConfigCenter_UnknownProtocol(t *testing.T) {
	_, err := run(t, "get", "k", "--properties", writeProperties(t, ""),
		"--config-center", "zookeeper", "--config-center-address", "127.0.0.1:2181")
	assert.Error(t, err)
}

func TestHealth_NoConfigCenter(t *testing.T) {
	out, err := run(t, "health", "--properties", writeProperties(t, ""))
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "healthy"`)
}
