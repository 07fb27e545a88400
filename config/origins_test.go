package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSystemProperty(t *testing.T) {
	k, v, err := ParseSystemProperty("dubbo.protocol.port=20880")
	require.NoError(t, err)
	assert.Equal(t, "dubbo.protocol.port", k)
	assert.Equal(t, "20880", v)

	k, v, err = ParseSystemProperty("dubbo.debug")
	require.NoError(t, err)
	assert.Equal(t, "dubbo.debug", k)
	assert.Equal(t, "true", v)

	_, _, err = ParseSystemProperty("=x")
	assert.Error(t, err)
}

func TestSystemConfiguration(t *testing.T) {
	props := NewSystemProperties()
	props.Put("dubbo.application.name", "demo")

	c := NewSystemConfiguration("dubbo.application", "", props)
	assert.Equal(t, "demo", GetString(c, "name", ""))

	props.Put("dubbo.application.owner", "ops")
	assert.Equal(t, "ops", GetString(c, "owner", ""))
}

func TestEnvironmentConfiguration(t *testing.T) {
	t.Setenv("DUBBO_PROTOCOL_PORT", "20881")

	c := NewEnvironmentConfiguration("dubbo.protocol", "")
	assert.Equal(t, "20881", GetString(c, "port", ""))
	assert.False(t, ContainsKey(c, "confenv-test-missing-key"))
}

func TestEnvironmentConfiguration_VerbatimKey(t *testing.T) {
	env := map[string]string{"dubbo.registry.address": "zk://1"}
	c := NewEnvironmentConfigurationWith("", "", func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, "zk://1", GetString(c, "dubbo.registry.address", ""))
}

func TestToEnvKey(t *testing.T) {
	assert.Equal(t, "DUBBO_PROTOCOL_PORT", ToEnvKey("dubbo.protocol.port"))
	assert.Equal(t, "DUBBO_CONFIG_CENTER", ToEnvKey("dubbo.config-center"))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileSource_Properties(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dubbo.properties",
		"dubbo.application.name=demo\ndubbo.service.com.foo.DemoService.timeout=500\n")

	data, err := NewFileSource(path, 10).Load()
	require.NoError(t, err)
	assert.Equal(t, "demo", data["dubbo.application.name"])
	assert.Equal(t, "500", data["dubbo.service.com.foo.DemoService.timeout"], "key case must be preserved")
}

func TestFileSource_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dubbo.yaml", "dubbo:\n  protocol:\n    port: 20880\n")

	data, err := NewFileSource(path, 10).Load()
	require.NoError(t, err)
	assert.Equal(t, 20880, data["dubbo.protocol.port"])
}

func TestFileSource_Missing(t *testing.T) {
	data, err := NewFileSource(filepath.Join(t.TempDir(), "none.properties"), 10).Load()
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestParseProperties(t *testing.T) {
	m, err := ParseProperties("a=1\n# comment\nb = two\n")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "two"}, m)
}

func TestLoaderBuilder_ProfileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "dubbo.properties", "dubbo.protocol.port=20880\ndubbo.application.name=demo\n")
	writeFile(t, dir, "dubbo-test.properties", "dubbo.protocol.port=20881\n")
	t.Setenv("DUBBO_APPLICATION_NAME", "from-env")

	loader, err := NewLoaderBuilder().WithFile(base).WithProfile("test").WithEnvPrefix("DUBBO").Build()
	require.NoError(t, err)

	v, ok := loader.Lookup("dubbo.protocol.port")
	assert.True(t, ok)
	assert.Equal(t, "20881", v)

	v, _ = loader.Lookup("dubbo.application.name")
	assert.Equal(t, "from-env", v)
	assert.Len(t, loader.LoadedFiles(), 2)
}

func TestLoader_Unmarshal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dubbo.yaml", "logger:\n  level: debug\n  encoding: json\n")

	loader, err := NewLoaderBuilder().WithFile(path).Build()
	require.NoError(t, err)

	var out struct {
		Level    string `mapstructure:"level"`
		Encoding string `mapstructure:"encoding"`
	}
	require.NoError(t, loader.Unmarshal("logger", &out))
	assert.Equal(t, "debug", out.Level)
	assert.Equal(t, "json", out.Encoding)
}

func TestPropertiesConfiguration_LazyLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dubbo.properties")
	file := NewPropertiesFile(NewLoaderBuilder().WithFile(path))

	// Written before the first lookup, so the lazy load sees it.
	writeFile(t, dir, "dubbo.properties", "dubbo.registry.address=zk://127.0.0.1:2181\n")

	c := NewPropertiesConfiguration("dubbo.registry", "", file)
	assert.Equal(t, "zk://127.0.0.1:2181", GetString(c, "address", ""))
	assert.NoError(t, file.Err())
	assert.NotNil(t, file.Loader())
}

func TestPropertiesConfiguration_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dubbo.yaml", "dubbo: [unclosed\n")

	file := NewPropertiesFile(NewLoaderBuilder().WithFile(path))
	c := NewPropertiesConfiguration("", "", file)

	assert.False(t, ContainsKey(c, "dubbo"))
	assert.Error(t, file.Err())
}

func TestResolvePropertiesFile(t *testing.T) {
	t.Setenv(PropertiesFileEnv, "")
	assert.Equal(t, DefaultPropertiesFile, ResolvePropertiesFile(nil))

	t.Setenv(PropertiesFileEnv, "/etc/env.properties")
	assert.Equal(t, "/etc/env.properties", ResolvePropertiesFile(nil))

	sys := NewSystemProperties()
	sys.Put(PropertiesFileKey, "/etc/sys.properties")
	assert.Equal(t, "/etc/sys.properties", ResolvePropertiesFile(sys))
}

func TestResolveProfile(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")
	assert.Equal(t, "", ResolveProfile(nil))

	t.Setenv("ENV", "staging")
	assert.Equal(t, "staging", ResolveProfile(nil))

	t.Setenv("APP_ENV", "prod")
	assert.Equal(t, "prod", ResolveProfile(nil))

	sys := NewSystemProperties()
	sys.Put(ProfileKey, " test ")
	assert.Equal(t, "test", ResolveProfile(sys))
}
