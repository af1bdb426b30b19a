package imgutil

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

const dataURIPrefix = "data:"

// EncodeBase64 は画像のバイト列を標準 base64 テキストに変換します。
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 は EncodeBase64 の逆変換です。
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// DetectMimeType は宣言された MIME タイプがあればそれを優先し、
// 空または application/octet-stream の場合のみ先頭バイトから推定します。
func DetectMimeType(declared string, data []byte) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

// ToDataURI は base64 ペイロードを <img src> にそのまま使える data URI に包みます。
func ToDataURI(mimeType, b64 string) string {
	return dataURIPrefix + mimeType + ";base64," + b64
}

// ParseDataURI は ToDataURI の形式の文字列から MIME タイプと base64 ペイロードを取り出します。
func ParseDataURI(uri string) (mimeType, b64 string, err error) {
	rest, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return "", "", fmt.Errorf("data URI ではありません: %.16q", uri)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("data URI にペイロードがありません")
	}
	mimeType, ok = strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", "", fmt.Errorf("base64 以外の data URI は扱えません: %s", meta)
	}
	return mimeType, payload, nil
}
