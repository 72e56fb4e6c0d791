/*
Package dictionary holds the word list behind inline suggestions.

Words live in a Patricia trie keyed by their lowercase form with a frequency
as the item. Lookups walk the subtree under the typed token, drop the token
itself and anything below the frequency threshold, carry the token's
capitalization over to each word and return the most frequent words first.

A Dictionary doubles as a suggest.Loader through Loader, either answering
inside the key event (sync) or on its own goroutine (async).
*/
package dictionary

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/bastiangx/typr-suggest/internal/utils"
	"github.com/bastiangx/typr-suggest/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Suggestion is one completion with its frequency.
type Suggestion struct {
	Word      string
	Frequency int
}

// Dictionary is a frequency ranked word trie, safe for concurrent use.
type Dictionary struct {
	trie         *patricia.Trie
	totalWords   int
	maxFrequency int
	minFrequency int
	filter       *utils.TokenFilter
	mu           sync.RWMutex
}

// New creates an empty dictionary. Words with a frequency below
// minFrequency are never suggested.
func New(minFrequency int) *Dictionary {
	return &Dictionary{
		trie:         patricia.NewTrie(),
		minFrequency: minFrequency,
	}
}

// AddWord inserts or updates word. Words are stored lowercase.
func (d *Dictionary) AddWord(word string, frequency int) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.trie.Insert(patricia.Prefix(word), frequency) {
		d.totalWords++
	} else {
		d.trie.Set(patricia.Prefix(word), frequency)
	}
	if frequency > d.maxFrequency {
		d.maxFrequency = frequency
	}
}

// SetFilter installs the filter tokens must pass before a lookup. A nil
// filter looks up every token.
func (d *Dictionary) SetFilter(filter *utils.TokenFilter) {
	d.mu.Lock()
	d.filter = filter
	d.mu.Unlock()
}

// Len returns the number of distinct words.
func (d *Dictionary) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.totalWords
}

// Stats reports dictionary counters.
func (d *Dictionary) Stats() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return map[string]int{
		"totalWords":   d.totalWords,
		"maxFrequency": d.maxFrequency,
		"minFrequency": d.minFrequency,
	}
}

// Complete returns up to limit words starting with prefix, most frequent
// first. A limit <= 0 returns every match.
func (d *Dictionary) Complete(ctx context.Context, prefix string, limit int) ([]Suggestion, error) {
	lowerPrefix := strings.ToLower(prefix)
	capitals := capitalPositions(prefix)

	d.mu.RLock()
	if d.filter != nil && !d.filter.Accept(prefix) {
		d.mu.RUnlock()
		log.Debugf("Filtered token: %q", prefix)
		return nil, nil
	}
	var suggestions []Suggestion
	err := d.trie.VisitSubtree(patricia.Prefix(lowerPrefix), func(p patricia.Prefix, item patricia.Item) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		word := string(p)
		if word == lowerPrefix {
			return nil
		}

		freq, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, word)
			return nil
		}
		if freq < d.minFrequency {
			return nil
		}

		suggestions = append(suggestions, Suggestion{
			Word:      ApplyCapitalization(word, capitals),
			Frequency: freq,
		})
		return nil
	})
	d.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Frequency != suggestions[j].Frequency {
			return suggestions[i].Frequency > suggestions[j].Frequency
		}
		return suggestions[i].Word < suggestions[j].Word
	})

	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// Words is Complete without the frequencies.
func (d *Dictionary) Words(ctx context.Context, prefix string, limit int) ([]string, error) {
	suggestions, err := d.Complete(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}
	words := make([]string, len(suggestions))
	for i, s := range suggestions {
		words[i] = s.Word
	}
	return words, nil
}

// Loader exposes the dictionary as a suggestion source returning at most
// limit candidates per token.
func (d *Dictionary) Loader(limit int, async bool) suggest.Loader {
	lookup := func(ctx context.Context, token string) ([]string, error) {
		return d.Words(ctx, token, limit)
	}
	if async {
		return suggest.Async(lookup)
	}
	return suggest.Sync(lookup)
}

func capitalPositions(s string) []bool {
	positions := make([]bool, 0, len(s))
	for _, r := range s {
		positions = append(positions, unicode.IsUpper(r))
	}
	return positions
}

// ApplyCapitalization uppercases the letters of word at the rune positions
// marked in capitalPositions.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] {
			wordRunes[i] = unicode.ToUpper(wordRunes[i])
		}
	}
	return string(wordRunes)
}
