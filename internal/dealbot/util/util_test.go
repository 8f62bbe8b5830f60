package util

import (
	"strings"
	"testing"

	"github.com/Koushik890/deal-or-no-deal-multiplayer/internal/dealbot/resource"
)

type seqSource struct {
	vals []uint32
	idx  int
}

func (s *seqSource) Uint32n(n uint32) uint32 {
	v := s.vals[s.idx%len(s.vals)]
	s.idx++
	return v % n
}

func (s *seqSource) Float64() float64 { return 0 }

func TestSanitizeNameTrimsAndTruncates(t *testing.T) {
	t.Parallel()

	if got := SanitizeName("  Alice  "); got != "Alice" {
		t.Errorf("expected Alice, got %q", got)
	}

	long := strings.Repeat("x", 40)
	if got := SanitizeName(long); len([]rune(got)) != resource.MaxNameLen {
		t.Errorf("expected %d runes, got %d", resource.MaxNameLen, len([]rune(got)))
	}
}

func TestSanitizeNameMasksBanned(t *testing.T) {
	t.Parallel()

	got := SanitizeName("TheAdminGuy")
	if got != "Th**dm*nG*y" {
		t.Errorf("expected vowels masked, got %q", got)
	}
}

func TestSanitizeNameIdempotent(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Alice", "  bob ", "TheAdminGuy", "bAnKeR99", strings.Repeat("admin", 10)} {
		once := SanitizeName(name)
		if twice := SanitizeName(once); twice != once {
			t.Errorf("sanitize not idempotent for %q: %q != %q", name, once, twice)
		}
	}
}

func TestGenerateCode(t *testing.T) {
	t.Parallel()

	code := GenerateCode(&seqSource{vals: []uint32{0, 5, 9, 13, 21, 31}})
	if len(code) != resource.CodeLen {
		t.Fatalf("expected %d chars, got %d", resource.CodeLen, len(code))
	}
	for _, c := range code {
		if !strings.ContainsRune(resource.CodeAlphabet, c) {
			t.Errorf("character %q outside code alphabet", c)
		}
	}
	for _, banned := range "01IO" {
		if strings.ContainsRune(resource.CodeAlphabet, banned) {
			t.Errorf("ambiguous character %q in alphabet", banned)
		}
	}
}
