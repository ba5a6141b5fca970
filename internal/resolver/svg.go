package resolver

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// SVGNamespace is the namespace KanjiVG stroke paths live in.
const SVGNamespace = "http://www.w3.org/2000/svg"

// CountStrokes counts the stroke paths in an SVG document.
//
// Paths in the SVG namespace are counted first; if there are none,
// unnamespaced paths are counted instead. Documents that are not
// well-formed XML are retried with a lenient HTML tokenizer.
func CountStrokes(data []byte) (int, error) {
	n, err := countXMLPaths(data)
	if err == nil {
		return n, nil
	}
	lenient, lerr := countTokenizedPaths(data)
	if lerr != nil {
		return 0, errors.Join(fmt.Errorf("parse svg: %w", err), lerr)
	}
	return lenient, nil
}

func countXMLPaths(data []byte) (int, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var namespaced, plain int
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !sawRoot {
			// The root element itself is never counted.
			sawRoot = true
			continue
		}
		if se.Name.Local != "path" {
			continue
		}
		switch se.Name.Space {
		case SVGNamespace:
			namespaced++
		case "":
			plain++
		}
	}
	if !sawRoot {
		return 0, errors.New("empty document")
	}
	if namespaced > 0 {
		return namespaced, nil
	}
	return plain, nil
}

// countTokenizedPaths scans tag names only, so it tolerates markup that
// encoding/xml rejects.
func countTokenizedPaths(data []byte) (int, error) {
	z := html.NewTokenizer(bytes.NewReader(data))
	var namespaced, plain int
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return 0, fmt.Errorf("tokenize svg: %w", err)
			}
			if namespaced > 0 {
				return namespaced, nil
			}
			return plain, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := strings.ToLower(string(name))
			switch {
			case tag == "svg:path":
				namespaced++
			case tag == "path":
				plain++
			}
		}
	}
}
