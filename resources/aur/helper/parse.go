// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package helper

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/choria-io/aurm/model"
)

// parseStatus interprets the result of an expac query, a missing package is absent and not an error
func parseStatus(pkg string, stdout []byte, stderr []byte, exitcode int) (*model.PackageStatus, error) {
	absent := &model.PackageStatus{Name: pkg}
	out := bytes.TrimSpace(stdout)

	if exitcode != 0 {
		if bytes.Contains(bytes.ToLower(stderr), []byte("not found")) || (len(out) == 0 && len(bytes.TrimSpace(stderr)) == 0) {
			return absent, nil
		}

		return nil, fmt.Errorf("%w: %s exited %d: %s", model.ErrSubprocessFailure, ExpacBinary, exitcode, lastLines(stderr, stdout))
	}

	if len(out) == 0 {
		return absent, nil
	}

	line, _, _ := bytes.Cut(out, []byte("\n"))
	if !gjson.ValidBytes(line) {
		return nil, fmt.Errorf("%w: invalid status for %s: %q", model.ErrParse, pkg, line)
	}

	res := gjson.ParseBytes(line)
	version := res.Get("version").String()
	if version == "" {
		return nil, fmt.Errorf("%w: no version in status for %s", model.ErrParse, pkg)
	}

	name := res.Get("name").String()
	if name == "" {
		name = pkg
	}

	return &model.PackageStatus{Name: name, Version: version, Installed: true}, nil
}

// parseInfo parses "Key : Value" blocks, lines without a separator continue the previous value
func parseInfo(pkg string, stdout []byte) (*model.PackageInfo, error) {
	fields := map[string]string{}
	last := ""

	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		key, value, found := strings.Cut(line, " : ")
		if found && !strings.HasPrefix(line, " ") {
			last = strings.TrimSpace(key)
			fields[last] = strings.TrimSpace(value)
			continue
		}

		if last == "" {
			continue
		}

		fields[last] = strings.TrimSpace(fields[last] + " " + strings.TrimSpace(line))
	}

	err := scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrParse, err)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no package information for %s", model.ErrParse, pkg)
	}

	info := &model.PackageInfo{
		Name:        fields["Name"],
		Version:     fields["Version"],
		Description: fields["Description"],
		URL:         fields["URL"],
		Maintainer:  fields["Maintainer"],
		Fields:      fields,
	}

	if info.Name == "" {
		info.Name = pkg
	}

	if info.Version == "" {
		return nil, fmt.Errorf("%w: no version in package information for %s", model.ErrParse, pkg)
	}

	return info, nil
}

// lastLines returns the final lines of the first non empty output for use in error messages
func lastLines(outputs ...[]byte) string {
	for _, o := range outputs {
		o = bytes.TrimSpace(o)
		if len(o) == 0 {
			continue
		}

		lines := strings.Split(string(o), "\n")
		if len(lines) > 5 {
			lines = lines[len(lines)-5:]
		}

		return strings.Join(lines, "\n")
	}

	return "no output"
}
