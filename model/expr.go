package model

import (
	"context"
	"fmt"
	"math"
	"strings"
	"text/scanner"

	"github.com/PaesslerAG/gval"
)

var constants = map[string]float64{
	"pi": math.Pi,
}

var exprLanguage = func() gval.Language {
	langs := []gval.Language{gval.Arithmetic()}
	for name, v := range constants {
		langs = append(langs, gval.Constant(name, v))
	}
	for name, f := range map[string]func(float64) float64{
		"sqrt": math.Sqrt,
		"exp":  math.Exp,
		"log":  math.Log,
		"ln":   math.Log,
		"sin":  math.Sin,
		"cos":  math.Cos,
		"tan":  math.Tan,
		"abs":  math.Abs,
	} {
		langs = append(langs, unary(name, f))
	}
	langs = append(langs, binary("min", math.Min), binary("max", math.Max))
	return gval.NewLanguage(langs...)
}()

func unary(name string, f func(float64) float64) gval.Language {
	return gval.Function(name, func(args ...any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		x, err := number(name, args[0])
		if err != nil {
			return nil, err
		}
		return f(x), nil
	})
}

func binary(name string, f func(float64, float64) float64) gval.Language {
	return gval.Function(name, func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", name, len(args))
		}
		a, err := number(name, args[0])
		if err != nil {
			return nil, err
		}
		b, err := number(name, args[1])
		if err != nil {
			return nil, err
		}
		return f(a, b), nil
	})
}

func number(fn string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%s: argument %v is not a number", fn, v)
	}
}

// expression is a compiled parameter expression.
type expression struct {
	source string
	eval   gval.Evaluable
	refs   []string
}

func compile(source string) (*expression, error) {
	ev, err := exprLanguage.NewEvaluable(source)
	if err != nil {
		return nil, err
	}
	return &expression{source: source, eval: ev, refs: references(source)}, nil
}

func (e *expression) value(vars map[string]any) (float64, error) {
	return e.eval.EvalFloat64(context.Background(), vars)
}

// references lists the distinct identifiers of source that are neither
// function names nor constants, in order of first appearance.
func references(source string) []string {
	var s scanner.Scanner
	s.Init(strings.NewReader(source))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats
	s.Error = func(*scanner.Scanner, string) {}

	type token struct {
		tok  rune
		text string
	}
	var toks []token
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		toks = append(toks, token{tok, s.TokenText()})
	}

	var refs []string
	seen := map[string]bool{}
	for i, t := range toks {
		if t.tok != scanner.Ident {
			continue
		}
		if i+1 < len(toks) && toks[i+1].tok == '(' {
			continue
		}
		if _, ok := constants[t.text]; ok || seen[t.text] {
			continue
		}
		seen[t.text] = true
		refs = append(refs, t.text)
	}
	return refs
}
