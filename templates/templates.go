// Copyright (c) 2025-2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/CloudyKit/jet/v6"
	"github.com/expr-lang/expr"
	"github.com/tidwall/gjson"
)

// Matches: {{ something }}, capture group 1 is the expression
var placeholderRe = regexp.MustCompile(`{{\s*(.*?)\s*}}`)

// Env represents the template execution environment containing facts and data
type Env struct {
	Facts   map[string]any    `json:"facts" yaml:"facts"`
	Data    map[string]any    `json:"data" yaml:"data"`
	Environ map[string]string `json:"environ" yaml:"environ"`

	envJSON json.RawMessage
	mu      sync.Mutex
}

// query looks up a gjson path in the JSON form of the environment, the JSON is built once
func (e *Env) query(key string) (gjson.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.envJSON == nil {
		j, err := json.Marshal(e)
		if err != nil {
			return gjson.Result{}, err
		}
		e.envJSON = j
	}

	return gjson.GetBytes(e.envJSON, key), nil
}

func (e *Env) lookup(params ...any) (any, error) {
	if len(params) == 0 || len(params) > 2 {
		return nil, fmt.Errorf("lookup requires 1 or 2 arguments")
	}

	key, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("lookup requires a string argument")
	}

	res, err := e.query(key)
	if err != nil {
		return "", err
	}

	if !res.Exists() {
		if len(params) == 2 {
			return params[1], nil
		}

		return "", fmt.Errorf("missing key '%s' in environment", key)
	}

	if res.Type == gjson.Number {
		if strings.Contains(res.Raw, ".") {
			return res.Float(), nil
		}

		return res.Int(), nil
	}

	return res.Value(), nil
}

// jet renders a jet template, arguments are the body, an optional context and optional delimiters.
//
// The context is either a map or a lookup path, keys of the map become variables and a path
// also sets context_name to its final element.
func (e *Env) jet(params ...any) (any, error) {
	var body string
	var jctx any
	left, right := "[[", "]]"
	var ok bool

	switch len(params) {
	case 1, 2, 3, 4:
	default:
		return nil, fmt.Errorf("jet requires 1, 2, 3 or 4 arguments")
	}

	body, ok = params[0].(string)
	if !ok {
		return nil, fmt.Errorf("jet requires a string argument for template body")
	}

	delims := params[1:]
	if len(params) == 2 || len(params) == 4 {
		jctx = params[1]
		delims = params[2:]
	}

	if len(delims) == 2 {
		left, ok = delims[0].(string)
		if !ok {
			return nil, fmt.Errorf("jet requires a string argument for left delimiter")
		}

		right, ok = delims[1].(string)
		if !ok {
			return nil, fmt.Errorf("jet requires a string argument for right delimiter")
		}
	}

	variables := e.JetVariables()

	switch c := jctx.(type) {
	case nil:
	case string:
		res, err := e.query(c)
		if err != nil {
			return nil, err
		}

		m, ok := res.Value().(map[string]any)
		if !ok {
			return nil, fmt.Errorf("jet context %q is not a map", c)
		}

		for k, v := range m {
			variables.Set(k, v)
		}

		parts := strings.Split(c, ".")
		variables.Set("context_name", parts[len(parts)-1])

	case map[string]any:
		for k, v := range c {
			variables.Set(k, v)
		}

	default:
		return nil, fmt.Errorf("jet requires a map or lookup path as context, got %T", jctx)
	}

	return RenderJet("inline", body, variables, e, left, right)
}

// JetVariables are the variables every jet template can access
func (e *Env) JetVariables() jet.VarMap {
	return jet.VarMap{
		"facts":   reflect.ValueOf(e.Facts),
		"Facts":   reflect.ValueOf(e.Facts),
		"data":    reflect.ValueOf(e.Data),
		"Data":    reflect.ValueOf(e.Data),
		"environ": reflect.ValueOf(e.Environ),
		"Environ": reflect.ValueOf(e.Environ),
	}
}

// RenderJet renders body as a jet template using the delimiters left and right
func RenderJet(name string, body string, variables jet.VarMap, context any, left string, right string) (string, error) {
	set := jet.NewSet(jet.NewInMemLoader(), jet.WithDelims(left, right))

	tpl, err := set.Parse(name, body)
	if err != nil {
		return "", err
	}

	buff := bytes.NewBuffer([]byte{})
	err = tpl.Execute(buff, variables, context)
	if err != nil {
		return "", err
	}

	return buff.String(), nil
}

// ResolveTemplateString resolves {{ expression }} placeholders in a template string and returns the result as a string
func ResolveTemplateString(template string, env *Env) (string, error) {
	if template == "" {
		return "", nil
	}

	if !placeholderRe.MatchString(template) {
		return template, nil
	}

	return applyFactsString(template, env)
}

// ResolveTemplateStrings resolves every string in templates, the input is not modified
func ResolveTemplateStrings(templates []string, env *Env) ([]string, error) {
	if templates == nil {
		return nil, nil
	}

	res := make([]string, len(templates))
	for i, t := range templates {
		r, err := ResolveTemplateString(t, env)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		res[i] = r
	}

	return res, nil
}

// applyFactsString parses {{ expression }} placeholders using expr and replace them with the resulting values
func applyFactsString(template string, env *Env) (string, error) {
	var result strings.Builder
	lastIndex := 0

	for _, loc := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		fullStart, fullEnd := loc[0], loc[1]
		innerStart, innerEnd := loc[2], loc[3]

		value, err := exprParse(template[innerStart:innerEnd], env)
		if err != nil {
			return "", err
		}

		result.WriteString(template[lastIndex:fullStart])
		result.WriteString(fmt.Sprint(value))

		lastIndex = fullEnd
	}

	result.WriteString(template[lastIndex:])

	return result.String(), nil
}

func exprParse(query string, env *Env) (any, error) {
	program, err := expr.Compile(query, expr.Env(env), expr.Function("lookup", env.lookup), expr.Function("jet", env.jet))
	if err != nil {
		return "", fmt.Errorf("expr compile error for '%s': %w", query, err)
	}

	return expr.Run(program, env)
}
