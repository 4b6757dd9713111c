// suggestions.go
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
	"errors"
	"regexp"
	"strings"

	"github.com/localnerve/traction-tracker/internal/models"
	"github.com/localnerve/traction-tracker/internal/types"
	"go.uber.org/zap"
)

// SuggestionCount is the number of suggestions returned per request
const SuggestionCount = 3

// PlaceholderSuggestion fills the list when fewer suggestions could be read
const PlaceholderSuggestion = "No suggestion available, try generating again."

// TextGenerator produces unstructured text for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// SuggestionRequest is the optional caller context for a suggestion request
type SuggestionRequest struct {
	Context string `json:"context" validate:"max=2000"`
}

const suggestionSystemPrompt = "You are a growth advisor for small software products. " +
	"Reply with a JSON array of exactly 3 short, concrete growth actions as strings."

// SuggestionPrompt renders the user prompt for app and the optional context.
func SuggestionPrompt(app *models.App, extra string) string {
	facts := map[string]interface{}{
		"name":        app.Name,
		"description": app.Description,
		"userCount":   app.UserCount,
		"revenue":     app.Revenue,
	}
	if app.Domain != nil {
		facts["domain"] = *app.Domain
	}
	if app.Strategy != nil {
		facts["strategy"] = *app.Strategy
	}
	b, _ := json.Marshal(facts)

	var sb strings.Builder
	sb.WriteString("App facts: ")
	sb.Write(b)
	if extra = strings.TrimSpace(extra); extra != "" {
		sb.WriteString("\nAdditional context: ")
		sb.WriteString(extra)
	}
	return sb.String()
}

// GenerateSuggestions asks gen for growth suggestions for app and extracts
// exactly SuggestionCount of them.
func GenerateSuggestions(ctx context.Context, gen TextGenerator, app *models.App, req SuggestionRequest) ([]string, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	raw, err := gen.Generate(ctx, suggestionSystemPrompt, SuggestionPrompt(app, req.Context))
	if err != nil {
		var ce *types.CustomError
		if !errors.As(err, &ce) {
			err = types.NewUpstreamError(err, "suggestion generation failed")
		}
		return nil, err
	}

	suggestions := ExtractSuggestions(raw, SuggestionCount)
	zap.L().Debug("suggestions generated", zap.String("appId", app.ID), zap.Int("rawBytes", len(raw)))
	return suggestions, nil
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+(.+)$`)

// ExtractSuggestions reads up to n suggestions from unstructured text. The
// first JSON array of strings found in raw wins; otherwise bullet and
// numbered lines are used. The result is padded with PlaceholderSuggestion
// and truncated so it always has length n.
func ExtractSuggestions(raw string, n int) []string {
	if n <= 0 {
		n = SuggestionCount
	}

	items := extractJSONArray(raw)
	if len(items) == 0 {
		items = extractListLines(raw)
	}

	for len(items) < n {
		items = append(items, PlaceholderSuggestion)
	}
	return items[:n]
}

func extractJSONArray(raw string) []string {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '[' {
			continue
		}

		// The decoder stops after the first value, so trailing prose is ignored.
		var arr []string
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		if err := dec.Decode(&arr); err != nil {
			continue
		}

		items := make([]string, 0, len(arr))
		for _, s := range arr {
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, s)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

func extractListLines(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		m := listMarker.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if s := strings.TrimSpace(m[1]); s != "" {
			items = append(items, s)
		}
	}
	return items
}
