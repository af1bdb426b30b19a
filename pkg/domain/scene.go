package domain

// UI が提示するジェスチャーと背景の選択肢です。
// コアはこの集合で入力を検証せず、任意の文字列をそのままプロンプトに渡します。
const (
	GestureHandshake = "handshake"

	BackgroundBeach      = "beach"
	BackgroundTheatre    = "theatre"
	BackgroundOffice     = "office"
	BackgroundPlayground = "playground"
)

// Gestures は選択可能なジェスチャーの一覧を返します。
func Gestures() []string {
	return []string{GestureHandshake}
}

// Backgrounds は選択可能な背景の一覧を返します。
func Backgrounds() []string {
	return []string{BackgroundBeach, BackgroundTheatre, BackgroundOffice, BackgroundPlayground}
}
