// ai_client.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/localnerve/traction-tracker/internal/types"
	"github.com/tidwall/gjson"
	"go.uber.org/multierr"
)

// AIClient generates text with an OpenAI compatible chat completions endpoint
type AIClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewAIClient builds an AIClient from configuration
func NewAIClient(cfg *config.Config) *AIClient {
	return &AIClient{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

// Generate sends one chat completion and returns the first choice's content.
func (c *AIClient) Generate(ctx context.Context, system, user string) (string, error) {
	if c.APIKey == "" {
		return "", types.NewUpstreamError(nil, "AI provider is not configured")
	}

	timeout := c.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
	}
	if err := ctx.Err(); err != nil || timeout <= 0 {
		return "", types.NewUpstreamError(context.DeadlineExceeded, "AI request deadline exceeded")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode AI request: %w", err)
	}

	agent := fiber.Post(c.BaseURL + "/chat/completions")
	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.APIKey)
	agent.ContentType(fiber.MIMEApplicationJSON)
	agent.Body(body)
	agent.Timeout(timeout)

	code, resBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", types.NewUpstreamError(multierr.Combine(errs...), "AI request failed")
	}

	if code != fiber.StatusOK {
		msg := gjson.GetBytes(resBody, "error.message").String()
		if msg == "" {
			msg = fiber.ErrBadGateway.Message
		}
		return "", types.NewUpstreamError(fmt.Errorf("status %d: %s", code, msg), "AI provider returned an error")
	}

	content := gjson.GetBytes(resBody, "choices.0.message.content")
	if !content.Exists() {
		return "", types.NewUpstreamError(fmt.Errorf("no choices in response"), "AI provider returned no content")
	}
	return content.String(), nil
}
