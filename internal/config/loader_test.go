package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Run("set variable wins", func(t *testing.T) {
		t.Setenv("TP_TEST_KEY", "from-env")
		assert.Equal(t, "api_key: from-env", expandEnv("api_key: ${TP_TEST_KEY:fallback}"))
	})

	t.Run("unset variable uses default", func(t *testing.T) {
		assert.Equal(t, "host: localhost", expandEnv("host: ${TP_TEST_UNSET:localhost}"))
	})

	t.Run("unset variable without default preserved", func(t *testing.T) {
		assert.Equal(t, "key: ${TP_TEST_UNSET}", expandEnv("key: ${TP_TEST_UNSET}"))
	})

	t.Run("set variable overrides empty default", func(t *testing.T) {
		t.Setenv("TP_TEST_EMPTY_DEFAULT", "value")
		assert.Equal(t, "k: value", expandEnv("k: ${TP_TEST_EMPTY_DEFAULT:}"))
	})

	t.Run("multiple placeholders in one document", func(t *testing.T) {
		t.Setenv("TP_TEST_A", "1")
		got := expandEnv("a: ${TP_TEST_A:0}\nb: ${TP_TEST_B:2}")
		assert.Equal(t, "a: 1\nb: 2", got)
	})
}
