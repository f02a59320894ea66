// Package vector applies the supported edits to SVG icon documents.
package vector

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/hpungsan/sicon/internal/errors"
)

// ApplyOpacity sets the opacity attribute on the root <svg> element.
// An opacity of 1 returns doc unchanged. Nested elements are never touched.
func ApplyOpacity(doc []byte, opacity float64) ([]byte, error) {
	if math.IsNaN(opacity) || opacity < 0 || opacity > 1 {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("opacity must be between 0.0 and 1.0, got %v", opacity))
	}
	if opacity == 1 {
		return doc, nil
	}

	tag, err := findRootTag(doc)
	if err != nil {
		return nil, errors.NewRender("opacity edit", err)
	}

	value := []byte(FormatOpacity(opacity))
	out := make([]byte, 0, len(doc)+len(value)+12)

	if tag.valueStart >= 0 {
		out = append(out, doc[:tag.valueStart]...)
		if tag.quoted {
			out = append(out, value...)
		} else {
			out = append(out, '"')
			out = append(out, value...)
			out = append(out, '"')
		}
		out = append(out, doc[tag.valueEnd:]...)
		return out, nil
	}

	insertAt := tag.start + len("<svg")
	out = append(out, doc[:insertAt]...)
	out = append(out, ` opacity="`...)
	out = append(out, value...)
	out = append(out, '"')
	out = append(out, doc[insertAt:]...)
	return out, nil
}

// FormatOpacity renders v with the fewest digits that round-trip.
func FormatOpacity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// rootTag locates the root start tag and its opacity value, if any.
type rootTag struct {
	start int // offset of '<'
	end   int // offset just past '>'

	// valueStart/valueEnd bound the opacity value, excluding quotes.
	// valueStart is -1 when the attribute is absent.
	valueStart int
	valueEnd   int
	quoted     bool
}

// findRootTag skips the prolog (XML declaration, comments, doctype) and
// returns the first <svg start tag.
func findRootTag(doc []byte) (*rootTag, error) {
	i := 0
	for {
		lt := bytes.IndexByte(doc[i:], '<')
		if lt < 0 {
			return nil, fmt.Errorf("document has no <svg> element")
		}
		i += lt
		rest := doc[i:]

		switch {
		case bytes.HasPrefix(rest, []byte("<!--")):
			end := bytes.Index(rest, []byte("-->"))
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment")
			}
			i += end + len("-->")
			continue
		case bytes.HasPrefix(rest, []byte("<?")):
			end := bytes.Index(rest, []byte("?>"))
			if end < 0 {
				return nil, fmt.Errorf("unterminated processing instruction")
			}
			i += end + len("?>")
			continue
		case bytes.HasPrefix(rest, []byte("<!")):
			end := bytes.IndexByte(rest, '>')
			if end < 0 {
				return nil, fmt.Errorf("unterminated declaration")
			}
			i += end + 1
			continue
		case bytes.HasPrefix(rest, []byte("<svg")) && len(rest) > 4 && isNameEnd(rest[4]):
			return parseRootTag(doc, i)
		}
		i++
	}
}

func parseRootTag(doc []byte, start int) (*rootTag, error) {
	tag := &rootTag{start: start, valueStart: -1}
	i := start + len("<svg")

	for i < len(doc) {
		for i < len(doc) && isSpace(doc[i]) {
			i++
		}
		if i >= len(doc) {
			break
		}
		switch doc[i] {
		case '>':
			tag.end = i + 1
			return tag, nil
		case '/':
			i++
			continue
		}

		nameStart := i
		for i < len(doc) && !isSpace(doc[i]) && doc[i] != '=' && doc[i] != '>' && doc[i] != '/' {
			i++
		}
		name := string(doc[nameStart:i])

		for i < len(doc) && isSpace(doc[i]) {
			i++
		}
		if i >= len(doc) || doc[i] != '=' {
			// Attribute without a value
			continue
		}
		i++
		for i < len(doc) && isSpace(doc[i]) {
			i++
		}
		if i >= len(doc) {
			break
		}

		var vStart, vEnd int
		quoted := false
		if q := doc[i]; q == '"' || q == '\'' {
			quoted = true
			vStart = i + 1
			end := bytes.IndexByte(doc[vStart:], q)
			if end < 0 {
				return nil, fmt.Errorf("unterminated attribute value in <svg> tag")
			}
			vEnd = vStart + end
			i = vEnd + 1
		} else {
			vStart = i
			for i < len(doc) && !isSpace(doc[i]) && doc[i] != '>' {
				i++
			}
			vEnd = i
		}

		if name == "opacity" && tag.valueStart < 0 {
			tag.valueStart, tag.valueEnd, tag.quoted = vStart, vEnd, quoted
		}
	}
	return nil, fmt.Errorf("unterminated <svg> tag")
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isNameEnd(b byte) bool {
	return isSpace(b) || b == '/' || b == '>'
}
