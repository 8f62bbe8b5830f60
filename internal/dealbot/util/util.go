package util

import (
	"strings"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/rng"
)

// SanitizeName trims and truncates a display name. A banned-substring hit
// masks every vowel with '*'; the masked form is the canonical name.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if runes := []rune(name); len(runes) > resource.MaxNameLen {
		name = string(runes[:resource.MaxNameLen])
	}

	lower := strings.ToLower(name)
	for _, banned := range resource.BannedNameWords {
		if strings.Contains(lower, banned) {
			return maskVowels(name)
		}
	}

	return name
}

func maskVowels(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
			return '*'
		}
		return r
	}, name)
}

// GenerateCode draws a room code uniformly over the code alphabet. Collision
// handling is the caller's concern.
func GenerateCode(src rng.Source) string {
	b := make([]byte, resource.CodeLen)
	for i := range b {
		b[i] = resource.CodeAlphabet[src.Uint32n(uint32(len(resource.CodeAlphabet)))]
	}
	return string(b)
}
