package bot

import (
	"math/rand"

	"atlas/internal/domain"
	"atlas/internal/geo"
)

// letters a strategy may open with when the required letter is unconstrained.
var openingLetters = []rune("abcdefghijklmnopqrstuvwxyz")

// EasyBot plays the first unused name it stumbles on for the required letter.
type EasyBot struct {
	rng *rand.Rand
}

func (b *EasyBot) PickName(sess *domain.Session, index *geo.Index) (string, bool) {
	for _, letter := range candidateLetters(b.rng, sess.RequiredLetter) {
		if name, ok := pickUnused(b.rng, sess, index, letter, func(string) int { return 0 }); ok {
			return name, true
		}
	}
	return "", false
}

// SmartBot prefers names whose terminal letter leaves the next player with
// few remaining continuations, steering the game toward scarce letters.
type SmartBot struct {
	rng *rand.Rand
}

func (b *SmartBot) PickName(sess *domain.Session, index *geo.Index) (string, bool) {
	score := func(name string) int {
		// Fewer continuations for the opponent scores lower (better).
		return index.CountByLetter(geo.TerminalLetter(name))
	}
	for _, letter := range candidateLetters(b.rng, sess.RequiredLetter) {
		if name, ok := pickUnused(b.rng, sess, index, letter, score); ok {
			return name, true
		}
	}
	return "", false
}

// candidateLetters returns the letters to search: only the required one, or a
// shuffled alphabet for the unconstrained opening move.
func candidateLetters(rng *rand.Rand, required rune) []rune {
	if required != 0 {
		return []rune{required}
	}
	letters := append([]rune(nil), openingLetters...)
	rng.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	return letters
}

// pickUnused scans up to maxScan unused names for the letter, starting at a
// random offset, and returns the best-scoring one (lowest score wins).
func pickUnused(rng *rand.Rand, sess *domain.Session, index *geo.Index, letter rune, score func(string) int) (string, bool) {
	names := index.NamesByLetter(letter)
	if len(names) == 0 {
		return "", false
	}
	offset := rng.Intn(len(names))

	best := ""
	bestScore := 0
	scanned := 0
	for i := 0; i < len(names) && scanned < maxScan; i++ {
		name := names[(offset+i)%len(names)]
		if sess.HasUsed(name) {
			continue
		}
		scanned++
		s := score(name)
		if best == "" || s < bestScore {
			best, bestScore = name, s
		}
	}
	if best == "" {
		return "", false
	}
	if display, ok := index.Display(best); ok {
		return display, true
	}
	return best, true
}
