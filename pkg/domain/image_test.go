package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageReference_Kinds(t *testing.T) {
	t.Run("ゼロ値は unknown として扱われる", func(t *testing.T) {
		var ref ImageReference
		assert.Equal(t, ReferenceUnknown, ref.Kind())

		_, err := ref.ReadAll()
		assert.ErrorIs(t, err, ErrInvalidImageFormat)
	})

	t.Run("LocalResource はロケータを保持する", func(t *testing.T) {
		ref := LocalResource("blob:1234")
		assert.Equal(t, ReferenceLocalResource, ref.Kind())
		assert.Equal(t, "blob:1234", ref.Locator())
		assert.Equal(t, "local_resource", ref.Kind().String())
	})

	t.Run("FileHandle は呼び出し元のスライス変更の影響を受けない", func(t *testing.T) {
		data := []byte{0x89, 'P', 'N', 'G'}
		ref := FileHandle(data, "image/png")
		data[0] = 0x00

		got, err := ref.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, got)
		assert.Equal(t, "image/png", ref.MimeType())
	})

	t.Run("FileHandleFromReader は Reader を読み出す", func(t *testing.T) {
		ref := FileHandleFromReader(strings.NewReader("jpeg-bytes"), "image/jpeg")
		got, err := ref.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(got))
	})
}

func TestIsLocalLocator(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"blob:7f2c", true},
		{"blob:", false},
		{"https://example.com/a.png", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsLocalLocator(tt.in), tt.in)
	}
}

func TestErrors_Taxonomy(t *testing.T) {
	t.Run("APIRequestError は ErrAPIRequestFailed にマッチする", func(t *testing.T) {
		err := error(&APIRequestError{StatusCode: 403, Attempts: 1})
		assert.ErrorIs(t, err, ErrAPIRequestFailed)
		assert.Equal(t, "API request failed: 403", err.Error())

		var apiErr *APIRequestError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 403, apiErr.StatusCode)
	})

	t.Run("リトライ枯渇時のメッセージ", func(t *testing.T) {
		err := &APIRequestError{StatusCode: 500, Attempts: 3, Exhausted: true}
		assert.Equal(t, "API request failed after all retries with status: 500", err.Error())
	})

	t.Run("MissingImageDataError は ErrMissingImageData にマッチする", func(t *testing.T) {
		err := error(&MissingImageDataError{FinishReason: "SAFETY", RawResponse: []byte(`{}`)})
		assert.ErrorIs(t, err, ErrMissingImageData)
		assert.Contains(t, err.Error(), "SAFETY")
	})

	t.Run("ReadError は原因と ErrReadImage の両方にマッチする", func(t *testing.T) {
		cause := errors.New("disk gone")
		err := ReadError(cause)
		assert.ErrorIs(t, err, ErrReadImage)
		assert.ErrorIs(t, err, cause)
	})
}

func TestSceneVocabulary(t *testing.T) {
	assert.Equal(t, []string{"handshake"}, Gestures())
	assert.Equal(t, []string{"beach", "theatre", "office", "playground"}, Backgrounds())
}
