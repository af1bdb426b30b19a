package generator

import "fmt"

const promptTemplate = `Create a photorealistic image of two people.
- The first person is from the first uploaded image.
- The second person is from the second uploaded image.
- They are performing a %s.
- The setting is a %s.
- Ensure the final image is seamless, well-composed, and naturally blends the two individuals into the new scene.`

// BuildPrompt は固定テンプレートにジェスチャーと背景だけを埋め込みます。
// 値は検証せずそのまま渡します。
func BuildPrompt(gesture, background string) string {
	return fmt.Sprintf(promptTemplate, gesture, background)
}
