// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ExecutableInPath finds command name in path, a missing command is not an error
func ExecutableInPath(file string) (string, bool, error) {
	f, err := exec.LookPath(file)
	if errors.Is(err, exec.ErrNotFound) {
		return "", false, nil
	}

	return f, err == nil, err
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func IsDirectory(path string) bool {
	stat, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	if stat == nil {
		return false
	}

	return stat.IsDir()
}

// IsTerminal determines if stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DumpJson prints v as indented JSON to stdout
func DumpJson(v any) error {
	j, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(j))

	return nil
}

// SplitNames splits comma separated lists of names, trims white space and drops empty entries
func SplitNames(names ...string) []string {
	var res []string

	for _, n := range names {
		for _, p := range strings.Split(n, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				res = append(res, p)
			}
		}
	}

	return res
}

var (
	versionSegmentRe = regexp.MustCompile(`[-.]|\d+|[^-.\d]+`)
	trailingZeroRe   = regexp.MustCompile(`([.0]+)$`)
	epochRe          = regexp.MustCompile(`^(\d+):(.+)$`)
)

// VersionCmp compares two pacman style [epoch:]pkgver-pkgrel versions.
// It returns -1 if versionA < versionB, 0 if equal, 1 if versionA > versionB.
// A missing epoch is 0 and a higher epoch always wins. If ignoreTrailingZeroes
// is true trailing ".0" segments before the first "-" are dropped, "1.0.0-1" is "1-1".
func VersionCmp(versionA, versionB string, ignoreTrailingZeroes bool) int {
	epochA, versionA := splitEpoch(versionA)
	epochB, versionB := splitEpoch(versionB)

	switch {
	case epochA < epochB:
		return -1
	case epochA > epochB:
		return 1
	}

	if ignoreTrailingZeroes {
		versionA = normalize(versionA)
		versionB = normalize(versionB)
	}

	ax := versionSegmentRe.FindAllString(versionA, -1)
	bx := versionSegmentRe.FindAllString(versionB, -1)

	for len(ax) > 0 && len(bx) > 0 {
		a := ax[0]
		b := bx[0]
		ax = ax[1:]
		bx = bx[1:]

		if a == b {
			continue
		}
		if a == "-" {
			return -1
		}
		if b == "-" {
			return 1
		}
		if a == "." {
			return -1
		}
		if b == "." {
			return 1
		}

		aIsDigits := isDigits(a)
		bIsDigits := isDigits(b)

		if aIsDigits && bIsDigits {
			// leading zeros compare lexically
			if strings.HasPrefix(a, "0") || strings.HasPrefix(b, "0") {
				return cmpStringsCaseInsensitive(a, b)
			}

			ai, _ := strconv.Atoi(a)
			bi, _ := strconv.Atoi(b)
			if ai < bi {
				return -1
			}
			if ai > bi {
				return 1
			}
			return 0
		}

		return cmpStringsCaseInsensitive(a, b)
	}

	// one is a prefix of the other
	return strings.Compare(versionA, versionB)
}

func splitEpoch(version string) (int, string) {
	m := epochRe.FindStringSubmatch(version)
	if m == nil {
		return 0, version
	}

	epoch, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, version
	}

	return epoch, m[2]
}

// normalize removes trailing zeros and dots from the pkgver part of the version
func normalize(version string) string {
	parts := strings.Split(version, "-")
	parts[0] = trailingZeroRe.ReplaceAllString(parts[0], "")

	return strings.Join(parts, "-")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func cmpStringsCaseInsensitive(a, b string) int {
	au := strings.ToUpper(a)
	bu := strings.ToUpper(b)
	if au < bu {
		return -1
	}
	if au > bu {
		return 1
	}
	return 0
}

// ShallowMerge copies target and sets every key from source on the copy, nested values are replaced not merged
func ShallowMerge(target map[string]any, source map[string]any) map[string]any {
	result := make(map[string]any, len(target)+len(source))
	for k, v := range target {
		result[k] = cloneValue(v)
	}
	for k, v := range source {
		result[k] = cloneValue(v)
	}

	return result
}

// DeepMergeMap merges source maps into target recursively. Map values are merged, slices are concatenated, and other values override.
func DeepMergeMap(target map[string]any, source map[string]any) map[string]any {
	result := CloneMap(target)
	for key, value := range source {
		if existing, ok := result[key]; ok {
			switch existingTyped := existing.(type) {
			case map[string]any:
				if incomingMap, ok := value.(map[string]any); ok {
					result[key] = DeepMergeMap(existingTyped, incomingMap)
					continue
				}
			case []any:
				if incomingSlice, ok := value.([]any); ok {
					combined := append(cloneSlice(existingTyped), incomingSlice...)
					result[key] = combined
					continue
				}
			}
		}
		result[key] = cloneValue(value)
	}
	return result
}

// CloneMap creates a shallow copy of the provided map with cloned values.
func CloneMap(source map[string]any) map[string]any {
	result := make(map[string]any, len(source))
	for key, value := range source {
		result[key] = cloneValue(value)
	}
	return result
}

// cloneSlice returns a shallow copy of a slice with cloned elements.
func cloneSlice(source []any) []any {
	result := make([]any, len(source))
	for i, value := range source {
		result[i] = cloneValue(value)
	}
	return result
}

// cloneValue duplicates maps and slices to avoid mutating caller state.
func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneMap(typed)
	case []any:
		return cloneSlice(typed)
	default:
		return typed
	}
}
