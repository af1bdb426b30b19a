package generator

import (
	"google.golang.org/genai"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
)

// generateContent リクエストのワイヤ形式。
// EncodedImage の base64 テキストをデコードせずにそのまま載せるため、SDK の Blob ではなく独自型を使います。
type generateContentRequest struct {
	Contents         []content               `json:"contents"`
	GenerationConfig *genai.GenerationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// buildPayload はプロンプト、画像1、画像2 の順で 1 つの content にまとめ、画像のみの応答を要求します。
func buildPayload(req domain.GenerationRequest) generateContentRequest {
	return generateContentRequest{
		Contents: []content{{
			Parts: []part{
				{Text: BuildPrompt(req.Gesture, req.Background)},
				{InlineData: &inlineData{MimeType: req.Image1.MimeType, Data: req.Image1.Data}},
				{InlineData: &inlineData{MimeType: req.Image2.MimeType, Data: req.Image2.Data}},
			},
		}},
		GenerationConfig: &genai.GenerationConfig{
			ResponseModalities: []genai.Modality{genai.ModalityImage},
		},
	}
}
