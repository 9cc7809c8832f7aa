// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import "strings"

// NamingPolicy derives a wire name from a Go struct field name. A struct
// tag always wins over the policy; the policy only sees untagged fields.
//
// Policies must be pure functions: the engine assumes the same input
// always yields the same output and caches accordingly.
type NamingPolicy func(field string) string

// IdentityNaming keeps the field name as declared.
func IdentityNaming(field string) string { return field }

// LowerCamelNaming lower-cases the first letter: "AuthorName" becomes
// "authorName".
func LowerCamelNaming(field string) string {
	return changeFirst(field, toLowerASCII)
}

// UpperCamelNaming upper-cases the first letter. Go's export rule means
// this is usually the identity, but it normalizes tagless lowercase
// names from embedded generators.
func UpperCamelNaming(field string) string {
	return changeFirst(field, toUpperASCII)
}

// UpperCamelSpaceNaming upper-cases the first letter and separates words
// with spaces: "AuthorName" becomes "Author Name".
func UpperCamelSpaceNaming(field string) string {
	return changeFirst(separateWords(field, " "), toUpperASCII)
}

// SnakeCaseNaming lower-cases everything and separates words with
// underscores: "AuthorName" becomes "author_name".
func SnakeCaseNaming(field string) string {
	return strings.ToLower(separateWords(field, "_"))
}

// KebabCaseNaming lower-cases everything and separates words with
// dashes: "AuthorName" becomes "author-name".
func KebabCaseNaming(field string) string {
	return strings.ToLower(separateWords(field, "-"))
}

// UpperSnakeNaming upper-cases everything and separates words with
// underscores: "AuthorName" becomes "AUTHOR_NAME".
func UpperSnakeNaming(field string) string {
	return strings.ToUpper(separateWords(field, "_"))
}

// separateWords inserts sep before each interior uppercase letter. Runs
// of uppercase letters (initialisms such as "URL") are kept together:
// only the first letter of a run starts a new word.
func separateWords(s string, sep string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevUpper := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		upper := c >= 'A' && c <= 'Z'
		if upper && !prevUpper && i > 0 {
			b.WriteString(sep)
		}
		b.WriteByte(c)
		prevUpper = upper
	}
	return b.String()
}

func changeFirst(s string, f func(byte) byte) string {
	if s == "" {
		return s
	}
	c := f(s[0])
	if c == s[0] {
		return s
	}
	return string(c) + s[1:]
}

func toLowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func toUpperASCII(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
