// Package selector compiles the constrained XPath dialect used by rule files into CSS selectors.
//
// Rule files express their selectors in a small XPath subset. CSS engines cover
// almost all of it, so compilation is a textual rewrite; the one construct with
// no CSS equivalent, position() > n, is extracted into a PositionFilter that the
// caller applies after selection.
//
// Supported patterns:
//   - `//div` → `div`
//   - `//div[1]` → `div:nth-of-type(1)`
//   - `//div[@class='x']` → `div.x`
//   - `//div[@id='x']` → `div#x`
//   - `//div[contains(@class, 'x')]` → `div[class*="x"]`
//   - `//div/a` → `div > a`
//   - `//div//a` → `div a`
//   - `//*[@id='x']` → `#x`
//   - `.//a` → `a`
//
// Unrecognized fragments pass through unchanged rather than failing; a rule with
// an exotic selector degrades to an empty result at query time, not at compile time.
package selector

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/mo"
)

// ErrEmptyExpression is returned when the input selector string is empty.
var ErrEmptyExpression = errors.New("empty selector expression")

// PositionFilter is a positional predicate that CSS cannot express.
// It keeps only elements whose zero-based ordinal position among the matched set is >= GreaterThan.
type PositionFilter struct {
	GreaterThan int
}

// Keep reports whether the element at the given zero-based position survives the filter.
func (f PositionFilter) Keep(position int) bool {
	return position >= f.GreaterThan
}

// Compiled is the result of translating one rule selector.
type Compiled struct {
	// Selector is the CSS selector string.
	Selector string
	// Filter holds the out-of-band positional predicate, when the expression used one.
	Filter mo.Option[PositionFilter]
}

// Precompiled rewrite expressions. The application order in convertSegment is a
// functional contract: the generic attribute rewrite is a catch-all that must
// run after the class/id/contains rewrites so it never re-processes their output.
var (
	rePositionGT = regexp.MustCompile(`\[position\s*\(\s*\)\s*>\s*(\d+)\]`)
	reClassAttr  = regexp.MustCompile(`\[@class=['"]([^'"]+)['"]\]`)
	reIDAttr     = regexp.MustCompile(`\[@id=['"]([^'"]+)['"]\]`)
	reContains   = regexp.MustCompile(`\[contains\s*\(\s*@class\s*,\s*['"]([^'"]+)['"]\s*\)\]`)
	reGenericAtt = regexp.MustCompile(`\[@([a-zA-Z_][a-zA-Z0-9_-]*)=['"]([^'"]+)['"]\]`)
	reIndex      = regexp.MustCompile(`\[(\d+)\]`)
)

// Translate compiles a constrained-XPath expression into a CSS selector plus an
// optional position filter. The only failure mode is an empty input.
func Translate(xpath string) (Compiled, error) {
	xpath = strings.TrimSpace(xpath)
	if xpath == "" {
		return Compiled{}, ErrEmptyExpression
	}

	// Axis prefixes and trailing text() have no CSS meaning.
	switch {
	case strings.HasPrefix(xpath, ".//"):
		xpath = xpath[3:]
	case strings.HasPrefix(xpath, "//"):
		xpath = xpath[2:]
	case strings.HasPrefix(xpath, "./"):
		xpath = xpath[2:]
	case strings.HasPrefix(xpath, "/"):
		xpath = xpath[1:]
	}
	xpath = strings.TrimSuffix(xpath, "/text()")

	// position() > n is applied by the caller after selection.
	filter := mo.None[PositionFilter]()
	if caps := rePositionGT.FindStringSubmatch(xpath); caps != nil {
		if n, err := strconv.Atoi(caps[1]); err == nil {
			filter = mo.Some(PositionFilter{GreaterThan: n})
		}
		xpath = rePositionGT.ReplaceAllString(xpath, "")
	}

	var parts []string
	for i, seg := range splitSegments(xpath) {
		el := convertSegment(seg.text)
		if el == "" {
			continue
		}
		// A segment reduced to a bare refinement ([...], #id, .class, :pseudo)
		// glues onto the previous token instead of opening a child combinator.
		if i > 0 && seg.child && !strings.ContainsRune("[#.:", rune(el[0])) {
			el = "> " + el
		}
		parts = append(parts, el)
	}

	return Compiled{Selector: strings.Join(parts, " "), Filter: filter}, nil
}

// segment is one step of the path together with the axis that introduced it.
type segment struct {
	text string
	// child is true when the segment was preceded by a single `/`.
	// The first segment and `//` segments are joined by a descendant combinator.
	child bool
}

// splitSegments splits the path on `/`, distinguishing `/` from `//`.
// Bracket contents are not parsed here; the dialect never puts a slash inside
// a predicate.
func splitSegments(xpath string) []segment {
	var (
		segments []segment
		current  strings.Builder
		child    bool
	)

	runes := []rune(xpath)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '/' {
			current.WriteRune(runes[i])
			continue
		}
		if current.Len() > 0 {
			segments = append(segments, segment{text: current.String(), child: child})
			current.Reset()
		}
		child = true
		if i+1 < len(runes) && runes[i+1] == '/' {
			child = false
			i++
		}
	}
	if current.Len() > 0 {
		segments = append(segments, segment{text: current.String(), child: child})
	}

	return segments
}

// convertSegment rewrites a single path segment into its CSS form.
// The rewrite order must not change; see the note on the regexp block above.
func convertSegment(el string) string {
	// Bare wildcards disappear; `*[@id='x']` becomes `[@id='x']`.
	if el == "*" || strings.HasPrefix(el, "*[") {
		el = strings.Replace(el, "*", "", 1)
	}

	el = reClassAttr.ReplaceAllStringFunc(el, func(m string) string {
		caps := reClassAttr.FindStringSubmatch(m)
		var b strings.Builder
		for _, class := range strings.Fields(caps[1]) {
			b.WriteByte('.')
			b.WriteString(class)
		}
		return b.String()
	})

	el = reIDAttr.ReplaceAllStringFunc(el, func(m string) string {
		caps := reIDAttr.FindStringSubmatch(m)
		return "#" + caps[1]
	})

	el = reContains.ReplaceAllStringFunc(el, func(m string) string {
		caps := reContains.FindStringSubmatch(m)
		return fmt.Sprintf("[class*=%q]", caps[1])
	})

	el = reGenericAtt.ReplaceAllStringFunc(el, func(m string) string {
		caps := reGenericAtt.FindStringSubmatch(m)
		return fmt.Sprintf("[%s=%q]", caps[1], caps[2])
	})

	el = reIndex.ReplaceAllStringFunc(el, func(m string) string {
		caps := reIndex.FindStringSubmatch(m)
		return ":nth-of-type(" + caps[1] + ")"
	})

	return strings.TrimSpace(el)
}
