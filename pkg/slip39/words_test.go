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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordlist(t *testing.T) {
	assert.Len(t, wordlist, RadixWords)
	prefixes := make(map[string]bool, RadixWords)
	for i, w := range wordlist {
		assert.GreaterOrEqual(t, len(w), 4, w)
		assert.LessOrEqual(t, len(w), 8, w)
		if i > 0 {
			assert.Less(t, wordlist[i-1], w)
		}
		assert.False(t, prefixes[w[:PrefixLength]], "duplicate prefix %s", w)
		prefixes[w[:PrefixLength]] = true
	}
}

func TestWordIndex(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		found bool
	}{
		{"academic", 0, true},
		{"zero", 1023, true},
		{"ZERO", 1023, true},
		{" acid ", 1, true},
		{"acad", 0, true},
		{"academ", 0, true},
		{"academix", 0, false},
		{"aca", 0, false},
		{"", 0, false},
		{"bitcoin", 0, false},
	}
	for _, tt := range tests {
		got, ok := WordIndex(tt.in)
		assert.Equal(t, tt.found, ok, tt.in)
		if tt.found {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestWord(t *testing.T) {
	w, ok := Word(0)
	assert.True(t, ok)
	assert.Equal(t, "academic", w)

	w, ok = Word(1023)
	assert.True(t, ok)
	assert.Equal(t, "zero", w)

	_, ok = Word(-1)
	assert.False(t, ok)
	_, ok = Word(RadixWords)
	assert.False(t, ok)
}

func TestClosestWord(t *testing.T) {
	i, ok := ClosestWord("sha")
	assert.True(t, ok)
	assert.Equal(t, "shadow", wordlist[i])

	i, ok = ClosestWord("acx")
	assert.False(t, ok)
	assert.Equal(t, "adapt", wordlist[i])

	_, ok = ClosestWord("zzz")
	assert.False(t, ok)
}

func TestWordsWithPrefix(t *testing.T) {
	assert.Equal(t, []string{"acid", "acne"}, WordsWithPrefix("ac")[1:3])
	assert.Equal(t, []string{"zero"}, WordsWithPrefix("ze"))
	assert.Empty(t, WordsWithPrefix("qq"))
	assert.Len(t, WordsWithPrefix(""), RadixWords)
}
