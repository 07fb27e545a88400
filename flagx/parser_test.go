package flagx

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupOptions struct {
	Prefix  string        `flag:"prefix,p" usage:"key prefix"`
	Retries int           `flag:"retries" default:"3"`
	Strict  bool          `flag:"strict"`
	Timeout time.Duration `flag:"timeout" default:"2s"`
	Define  []string      `flag:"define,D"`
	ignored string        `flag:"ignored"`
	Plain   string
}

func TestBindAndParse(t *testing.T) {
	cmd := &cobra.Command{Use: "lookup", RunE: func(*cobra.Command, []string) error { return nil }}
	var opts lookupOptions
	require.NoError(t, BindFlags(cmd, &opts))

	assert.NotNil(t, cmd.Flags().Lookup("prefix"))
	assert.Equal(t, "p", cmd.Flags().Lookup("prefix").Shorthand)
	assert.Nil(t, cmd.Flags().Lookup("ignored"))

	require.NoError(t, cmd.Flags().Parse([]string{
		"-p", "dubbo.registries", "--strict", "--timeout", "500ms",
		"-D", "a=1,2", "-D", "b=3",
	}))
	require.NoError(t, ParseFlags(cmd, &opts))

	assert.Equal(t, "dubbo.registries", opts.Prefix)
	assert.Equal(t, 3, opts.Retries)
	assert.True(t, opts.Strict)
	assert.Equal(t, 500*time.Millisecond, opts.Timeout)
	assert.Equal(t, []string{"a=1,2", "b=3"}, opts.Define)
}

func TestDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "lookup"}
	var opts lookupOptions
	require.NoError(t, BindFlags(cmd, &opts))
	require.NoError(t, cmd.Flags().Parse(nil))
	require.NoError(t, ParseFlags(cmd, &opts))

	assert.Equal(t, "", opts.Prefix)
	assert.Equal(t, 3, opts.Retries)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Empty(t, opts.Define)
}

func TestRequired(t *testing.T) {
	type req struct {
		Name string `flag:"name" required:"true"`
	}
	cmd := &cobra.Command{Use: "x"}
	require.NoError(t, BindFlags(cmd, &req{}))
	ann := cmd.Flags().Lookup("name").Annotations
	assert.Contains(t, ann, cobra.BashCompOneRequiredFlag)
}

func TestInvalidTarget(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	assert.Error(t, BindFlags(cmd, lookupOptions{}))
	assert.Error(t, ParseFlags(cmd, "nope"))
}

func TestUnsupportedType(t *testing.T) {
	type bad struct {
		Ratio float32 `flag:"ratio"`
	}
	assert.Error(t, BindFlags(&cobra.Command{Use: "x"}, &bad{}))
}

func TestBadDefault(t *testing.T) {
	type bad struct {
		N int `flag:"n" default:"many"`
	}
	err := BindFlags(&cobra.Command{Use: "x"}, &bad{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--n")
}

func TestParseUndefinedFlag(t *testing.T) {
	type opt struct {
		Name string `flag:"name"`
	}
	err := ParseFlags(&cobra.Command{Use: "x"}, &opt{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name")
}
