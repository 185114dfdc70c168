// internal/application/ocr/suggest.go
package ocr

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Candidate is one recognized text token with its confidence (0..1).
type Candidate struct {
	Token      string  `json:"token"`
	Confidence float64 `json:"confidence"`
}

// Recognizer is the text-recognition output port. Production wires an
// on-device / cloud OCR engine; absent, the feature is simply off.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) ([]Candidate, error)
}

const (
	// DefaultMinConfidence filters low-quality tokens.
	DefaultMinConfidence = 0.6
	// MaxSuggestions caps the advisory chips offered to the user.
	MaxSuggestions = 5
)

// tokenRe: 英数字のみ 2 文字以上（記号・空白を含むトークンは捨てる）。
var tokenRe = regexp.MustCompile(`^[A-Za-z0-9]{2,}$`)

// Suggest ranks candidates into at most MaxSuggestions name-field chips.
// 候補はあくまで提案であり、呼び出し側が自動適用してはならない。
func Suggest(cands []Candidate, minConfidence float64) []string {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	type scored struct {
		token string
		conf  float64
	}
	seen := make(map[string]struct{}, len(cands))
	kept := make([]scored, 0, len(cands))
	for _, c := range cands {
		tok := strings.TrimSpace(c.Token)
		if c.Confidence < minConfidence || !tokenRe.MatchString(tok) {
			continue
		}
		// 英数字以外に意味のある字形はないので小文字キーで重複排除。
		key := strings.ToLower(tok)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, scored{token: tok, conf: c.Confidence})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].conf > kept[j].conf })

	if len(kept) > MaxSuggestions {
		kept = kept[:MaxSuggestions]
	}
	out := make([]string, 0, len(kept))
	for _, s := range kept {
		out = append(out, s.token)
	}
	return out
}
