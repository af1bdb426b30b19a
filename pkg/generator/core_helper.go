package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"google.golang.org/genai"

	"github.com/shouni/gemini-duo-kit/pkg/domain"
)

// send は 429 / 5xx の場合にバックオフしながら最大 MaxAttempts 回まで送信します。
// 成功ステータスのレスポンス本文を返します。
func (g *GeminiGenerator) send(ctx context.Context, body []byte) ([]byte, error) {
	var lastStatus, attempts int

	for attempt, wait := range g.backoff.Attempts() {
		if wait > 0 {
			slog.WarnContext(ctx, "リトライ前に待機します",
				"attempt", attempt, "max_attempts", g.backoff.MaxAttempts,
				"last_status", lastStatus, "wait", wait)
			if err := g.sleep(ctx, wait); err != nil {
				return nil, fmt.Errorf("backoff wait before attempt %d interrupted: %w", attempt, err)
			}
		}
		attempts = attempt

		status, respBody, err := g.post(ctx, body)
		if err != nil {
			slog.ErrorContext(ctx, "Gemini API への送信に失敗しました",
				"url", g.logURL(), "attempt", attempt, "error", err)
			return nil, &domain.APIRequestError{Attempts: attempt, Err: err}
		}

		if status >= 200 && status < 300 {
			if attempt > 1 {
				slog.InfoContext(ctx, "リトライ後に成功しました", "attempt", attempt)
			}
			return respBody, nil
		}
		lastStatus = status

		if !IsRetryable(status) {
			slog.ErrorContext(ctx, "Gemini API がエラーを返しました",
				"status", status, "attempt", attempt, "response", string(respBody))
			return nil, &domain.APIRequestError{StatusCode: status, Attempts: attempt}
		}
		slog.WarnContext(ctx, "リトライ対象のステータスを受信しました",
			"status", status, "attempt", attempt, "max_attempts", g.backoff.MaxAttempts)
	}

	slog.ErrorContext(ctx, "リトライ回数を使い切りました",
		"status", lastStatus, "attempts", attempts)
	return nil, &domain.APIRequestError{StatusCode: lastStatus, Attempts: attempts, Exhausted: true}
}

// post は 1 回分の POST を実行し、ステータスと本文を返します。
// err が返るのはレスポンスを受け取れなかった場合だけです。
func (g *GeminiGenerator) post(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.requestURL(), bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// requestURL は認証情報をクエリパラメータとして付与したエンドポイントです。
func (g *GeminiGenerator) requestURL() string {
	return g.logURL() + "?" + url.Values{"key": {g.apiKey}}.Encode()
}

// logURL は認証情報を含まない、ログ出力用のエンドポイントです。
func (g *GeminiGenerator) logURL() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.endpoint, g.model)
}

// candidateImages は generateContent レスポンスのうち画像抽出に必要な部分です。
// inlineData.data は []byte を経由させず、受け取った base64 テキストをそのまま保持します。
type candidateImages struct {
	Candidates     []*candidateImage                            `json:"candidates"`
	PromptFeedback *genai.GenerateContentResponsePromptFeedback `json:"promptFeedback,omitempty"`
}

type candidateImage struct {
	Content *struct {
		Parts []*imagePart `json:"parts"`
	} `json:"content,omitempty"`
	FinishReason genai.FinishReason `json:"finishReason,omitempty"`
}

type imagePart struct {
	InlineData *inlineData `json:"inlineData,omitempty"`
}

// extractImageData は最初の候補の最初の inlineData パーツから base64 ペイロードを取り出します。
func extractImageData(raw []byte) (string, error) {
	var resp candidateImages
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &domain.MissingImageDataError{RawResponse: raw, Err: err}
	}

	// 現在の仕様では、最初の候補 (Candidate) のみを利用する。
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		reason := ""
		if resp.PromptFeedback != nil {
			reason = string(resp.PromptFeedback.BlockReason)
		}
		return "", &domain.MissingImageDataError{FinishReason: reason, RawResponse: raw}
	}
	candidate := resp.Candidates[0]

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if part.InlineData.Data == "" {
				break
			}
			return part.InlineData.Data, nil
		}
	}

	// 安全フィルター等によるブロックの確認
	reason := ""
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		reason = string(candidate.FinishReason)
	}
	return "", &domain.MissingImageDataError{FinishReason: reason, RawResponse: raw}
}
