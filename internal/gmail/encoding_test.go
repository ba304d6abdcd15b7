package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody(t *testing.T) {
	payload := []byte("attachment bytes \xfb\xff with url-unsafe content")

	t.Run("base64url", func(t *testing.T) {
		data, err := decodeBody(base64.URLEncoding.EncodeToString(payload))
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("standard base64 fallback", func(t *testing.T) {
		data, err := decodeBody(base64.StdEncoding.EncodeToString(payload))
		require.NoError(t, err)
		assert.Equal(t, payload, data)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := decodeBody("not base64 at all!!!")
		assert.Error(t, err)
	})
}
