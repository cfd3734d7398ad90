// Package export renders selections into typeset documents, spreadsheets,
// CSV dumps, and zip bundles.
package export

import (
	"regexp"
	"strings"
)

// segKind tags a parsed markup segment.
type segKind int

const (
	segText segKind = iota
	segMath
	segImage
)

type segment struct {
	kind segKind
	text string // plain text or math body (delimiters stripped)
	url  string // image URL for segImage
}

var (
	imageRefRe = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	mathSpanRe = regexp.MustCompile(`\$\$[\s\S]+?\$\$|\\\[[\s\S]+?\\\]|\\\([\s\S]+?\\\)|\$[^$\n]+\$`)
)

// HasRichContent reports whether text carries math markup or an embedded
// image reference and therefore needs the raster renderer.
func HasRichContent(text string) bool {
	return strings.Contains(text, "$") ||
		strings.Contains(text, `\[`) ||
		strings.Contains(text, `\(`) ||
		strings.Contains(text, "![")
}

// parseMarkup splits mixed text into plain, math, and image segments in
// document order.
func parseMarkup(text string) []segment {
	var segs []segment

	// Image references first so their URLs don't get chopped by the math
	// splitter.
	last := 0
	for _, loc := range imageRefRe.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, splitMath(text[last:loc[0]])...)
		}
		segs = append(segs, segment{kind: segImage, url: text[loc[4]:loc[5]]})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, splitMath(text[last:])...)
	}
	return segs
}

func splitMath(text string) []segment {
	var segs []segment
	last := 0
	for _, loc := range mathSpanRe.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, segment{kind: segText, text: text[last:loc[0]]})
		}
		segs = append(segs, segment{kind: segMath, text: stripMathDelims(text[loc[0]:loc[1]])})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, segment{kind: segText, text: text[last:]})
	}
	return segs
}

func stripMathDelims(span string) string {
	switch {
	case strings.HasPrefix(span, "$$") && strings.HasSuffix(span, "$$"):
		return strings.TrimSpace(span[2 : len(span)-2])
	case strings.HasPrefix(span, `\[`) && strings.HasSuffix(span, `\]`):
		return strings.TrimSpace(span[2 : len(span)-2])
	case strings.HasPrefix(span, `\(`) && strings.HasSuffix(span, `\)`):
		return strings.TrimSpace(span[2 : len(span)-2])
	case strings.HasPrefix(span, "$") && strings.HasSuffix(span, "$"):
		return strings.TrimSpace(span[1 : len(span)-1])
	}
	return strings.TrimSpace(span)
}

// flattenMarkup reduces mixed markup to a single plain-text line for the
// fallback path: math bodies inline, image refs dropped.
func flattenMarkup(text string) string {
	var b strings.Builder
	for _, seg := range parseMarkup(text) {
		switch seg.kind {
		case segText, segMath:
			b.WriteString(seg.text)
		case segImage:
			b.WriteString(" [diagram] ")
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
