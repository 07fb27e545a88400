package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayeredError_New(t *testing.T) {
	err := New(21, 1, "configcenter", "error.configcenter.init", "config center init failed")

	assert.Equal(t, 210001, err.Code())
	assert.Equal(t, "configcenter", err.Module())
	assert.Equal(t, "error.configcenter.init", err.MsgKey())
	assert.Equal(t, "config center init failed", err.Error())
}

func TestLayeredError_Wrap(t *testing.T) {
	base := New(21, 1, "configcenter", "error.configcenter.init", "config center init failed")
	cause := errors.New("dial tcp: refused")

	wrapped := base.Wrap(cause)

	assert.Equal(t, "config center init failed: dial tcp: refused", wrapped.Error())
	assert.True(t, errors.Is(wrapped, base))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Nil(t, base.Unwrap(), "Wrap must not mutate the original")
	assert.Same(t, base, base.Wrap(nil))
}

func TestLayeredError_IsThroughFmtWrap(t *testing.T) {
	base := New(22, 3, "dynamic", "error.dynamic.read", "read failed")
	err := fmt.Errorf("etcd: %w", base.WithMsgf("read %s failed", "k"))

	assert.True(t, errors.Is(err, base))

	var le *LayeredError
	assert.True(t, errors.As(err, &le))
	assert.Equal(t, "read k failed", le.Message())
}

func TestLayeredError_WithData(t *testing.T) {
	base := New(20, 1, "environment", "error.environment.x", "x")
	withData := base.WithData("key", "dubbo.")

	assert.Empty(t, base.Data())
	assert.Equal(t, "dubbo.", withData.Data()["key"])
	assert.Contains(t, withData.String(), "code:200001")
}
