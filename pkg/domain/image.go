package domain

import (
	"bytes"
	"io"
	"strings"
)

// LocalResourceScheme はローカルの一時バイナリを指すロケータのスキームです。
const LocalResourceScheme = "blob:"

// ReferenceKind は ImageReference がどちらの形式かを表すタグです。
type ReferenceKind int

const (
	// ReferenceUnknown はゼロ値です。エンコード時に InvalidImageFormat となります。
	ReferenceUnknown ReferenceKind = iota
	// ReferenceLocalResource は "blob:" ロケータで参照されるローカルの一時データです。
	ReferenceLocalResource
	// ReferenceFileHandle はメモリ上のファイルハンドルです。
	ReferenceFileHandle
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceLocalResource:
		return "local_resource"
	case ReferenceFileHandle:
		return "file_handle"
	default:
		return "unknown"
	}
}

// ImageReference は呼び出し元が保持する画像への参照です。
// LocalResource と FileHandle のどちらかで生成し、生成後は変更しません。
type ImageReference struct {
	kind     ReferenceKind
	locator  string
	read     func() ([]byte, error)
	mimeType string
}

// LocalResource は "blob:" ロケータから ImageReference を作成します。
func LocalResource(locator string) ImageReference {
	return ImageReference{kind: ReferenceLocalResource, locator: locator}
}

// FileHandle はメモリ上のバイト列と宣言された MIME タイプから ImageReference を作成します。
// 読み出しのたびにコピーを返すため、呼び出し元のスライスは変更されません。
func FileHandle(data []byte, mimeType string) ImageReference {
	owned := bytes.Clone(data)
	return ImageReference{
		kind:     ReferenceFileHandle,
		mimeType: mimeType,
		read: func() ([]byte, error) {
			return bytes.Clone(owned), nil
		},
	}
}

// FileHandleFromReader はアップロードされたファイル等の Reader を FileHandle として扱います。
// Reader は最初のエンコード時に一度だけ読み出されます。
func FileHandleFromReader(r io.Reader, mimeType string) ImageReference {
	return ImageReference{
		kind:     ReferenceFileHandle,
		mimeType: mimeType,
		read: func() ([]byte, error) {
			return io.ReadAll(r)
		},
	}
}

func (r ImageReference) Kind() ReferenceKind { return r.kind }

// Locator は LocalResource のロケータ文字列を返します。
func (r ImageReference) Locator() string { return r.locator }

// MimeType は FileHandle に宣言された MIME タイプを返します。
func (r ImageReference) MimeType() string { return r.mimeType }

// IsLocalLocator は文字列が認識可能なローカルリソースのロケータかを判定します。
func IsLocalLocator(s string) bool {
	return strings.HasPrefix(s, LocalResourceScheme) && len(s) > len(LocalResourceScheme)
}

// ReadAll は FileHandle の生データを読み出します。
func (r ImageReference) ReadAll() ([]byte, error) {
	if r.kind != ReferenceFileHandle || r.read == nil {
		return nil, ErrInvalidImageFormat
	}
	return r.read()
}

// EncodedImage は base64 テキスト化した画像データと MIME タイプです。
type EncodedImage struct {
	Data     string
	MimeType string
}

// GenerationRequest は 1 回の生成操作で送信する内容です。
type GenerationRequest struct {
	Image1     EncodedImage
	Image2     EncodedImage
	Gesture    string
	Background string
}

// GenerationResult は生成画像を埋め込み可能な data URI で表したものです。
type GenerationResult string

func (r GenerationResult) String() string { return string(r) }
