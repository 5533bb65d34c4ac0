// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keyshare.
//
// go-keyshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package slip39

import (
	"sort"
	"strings"
)

const (
	// RadixBits is the number of bits encoded by one word.
	RadixBits = 10

	// RadixWords is the size of the word list.
	RadixWords = 1 << RadixBits

	// PrefixLength is the number of leading letters that identify a word.
	PrefixLength = 4
)

var (
	wordIndex   = make(map[string]int, RadixWords)
	prefixIndex = make(map[string]int, RadixWords)
)

func init() {
	for i, w := range wordlist {
		wordIndex[w] = i
		prefixIndex[w[:PrefixLength]] = i
	}
}

// Word returns the word for a 10-bit index.
func Word(index int) (string, bool) {
	if index < 0 || index >= RadixWords {
		return "", false
	}
	return wordlist[index], true
}

// WordIndex returns the 10-bit index of a word. Matching is case
// insensitive and a word may be abbreviated to any prefix of at least four
// letters, the way hardware signers accept input.
func WordIndex(word string) (int, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if i, ok := wordIndex[word]; ok {
		return i, true
	}
	if len(word) < PrefixLength {
		return 0, false
	}
	i, ok := prefixIndex[word[:PrefixLength]]
	if !ok || !strings.HasPrefix(wordlist[i], word) {
		return 0, false
	}
	return i, true
}

// ClosestWord returns the first word at or after prefix in list order and
// whether that word starts with prefix.
func ClosestWord(prefix string) (int, bool) {
	prefix = strings.ToLower(prefix)
	i := sort.SearchStrings(wordlist[:], prefix)
	if i == RadixWords {
		return -1, false
	}
	return i, strings.HasPrefix(wordlist[i], prefix)
}

// WordsWithPrefix returns every word that starts with prefix. An empty
// prefix returns the whole list.
func WordsWithPrefix(prefix string) []string {
	prefix = strings.ToLower(prefix)
	start := sort.SearchStrings(wordlist[:], prefix)
	var out []string
	for i := start; i < RadixWords && strings.HasPrefix(wordlist[i], prefix); i++ {
		out = append(out, wordlist[i])
	}
	return out
}
