package pmc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// defaultRootTag is used when encoding a Document that was built in code.
const defaultRootTag = "pmc"

// node is one child of an element, kept in document order for re-encoding.
type node interface {
	encode(x *xmlWriter) error
}

// tokenNode is character data, a comment, a processing instruction or a
// directive copied from the input.
type tokenNode struct {
	tok xml.Token
}

// element is an XML element the model has no typed field for.
type element struct {
	start    xml.StartElement
	children []node
}

// textField is a simple text child (name, variable, value, ...) whose text
// lives in a typed field of its owner.
type textField struct {
	start xml.StartElement
	text  *string
}

// Parse decodes a PMC document.
//
// Every <device> element below the root is collected into Devices in
// document order. Malformed input returns an error wrapping ErrParse.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	doc := &Document{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if doc.root != nil {
				return nil, fmt.Errorf("%w: multiple root elements", ErrParse)
			}
			root, err := decodeElement(dec, t.Copy(), doc)
			if err != nil {
				return nil, err
			}
			doc.root = root
		case xml.ProcInst:
			if t.Target == "xml" {
				continue // the declaration is rewritten on encode
			}
			doc.appendOuter(tokenNode{tok: t.Copy()})
		case xml.CharData:
			if isBlank(t) {
				continue
			}
			if doc.root != nil {
				return nil, fmt.Errorf("%w: text after root element", ErrParse)
			}
			return nil, fmt.Errorf("%w: text before root element", ErrParse)
		default:
			doc.appendOuter(tokenNode{tok: xml.CopyToken(tok)})
		}
	}

	if doc.root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrParse)
	}
	return doc, nil
}

// appendOuter stores a node that sits before or after the root element.
func (doc *Document) appendOuter(n node) {
	if doc.root == nil {
		doc.prolog = append(doc.prolog, n)
		return
	}
	doc.epilog = append(doc.epilog, n)
}

// charsetReader accepts ASCII-declared files, which are valid UTF-8.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(label) {
	case "us-ascii", "ascii":
		return input, nil
	}
	return nil, fmt.Errorf("unsupported charset %q", label)
}

// decodeNode decodes the element opened by start, typed if it is a device.
func decodeNode(dec *xml.Decoder, start xml.StartElement, doc *Document) (node, error) {
	if start.Name.Local == TagDevice {
		return decodeDevice(dec, start, doc)
	}
	return decodeElement(dec, start, doc)
}

func decodeElement(dec *xml.Decoder, start xml.StartElement, doc *Document) (*element, error) {
	el := &element{start: start}
	for {
		tok, err := nextToken(dec)
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeNode(dec, t.Copy(), doc)
			if err != nil {
				return nil, err
			}
			el.children = append(el.children, child)
		case xml.EndElement:
			return el, nil
		default:
			el.children = append(el.children, tokenNode{tok: xml.CopyToken(tok)})
		}
	}
}

func decodeDevice(dec *xml.Decoder, start xml.StartElement, doc *Document) (*Device, error) {
	d := &Device{start: start, present: make(map[string]bool)}
	doc.Devices = append(doc.Devices, d)

	for {
		tok, err := nextToken(dec)
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := d.decodeChild(dec, t.Copy(), doc)
			if err != nil {
				return nil, err
			}
			d.children = append(d.children, child)
		case xml.EndElement:
			return d, nil
		default:
			d.children = append(d.children, tokenNode{tok: xml.CopyToken(tok)})
		}
	}
}

func (d *Device) decodeChild(dec *xml.Decoder, start xml.StartElement, doc *Document) (node, error) {
	tag := start.Name.Local
	switch {
	case (tag == TagName || tag == TagDevClass || tag == TagDevName) && !d.present[tag]:
		text, err := readText(dec)
		if err != nil {
			return nil, err
		}
		field := d.field(tag)
		*field = text
		d.present[tag] = true
		return textField{start: start, text: field}, nil

	case tag == TagConfig:
		p, err := decodeConfig(dec, start, doc)
		if err != nil {
			return nil, err
		}
		d.Configs = append(d.Configs, p)
		return p, nil

	case tag == TagSdr && d.Sdr == nil:
		s, err := decodeSdr(dec, start, doc)
		if err != nil {
			return nil, err
		}
		d.Sdr = s
		return s, nil

	case tag == TagGlyph && d.glyph == nil:
		el, err := decodeElement(dec, start, doc)
		if err != nil {
			return nil, err
		}
		d.glyph = el
		return el, nil
	}
	return decodeNode(dec, start, doc)
}

// field returns the typed storage for a device text field.
func (d *Device) field(tag string) *string {
	switch tag {
	case TagName:
		return &d.Name
	case TagDevClass:
		return &d.DevClass
	default:
		return &d.DevName
	}
}

func decodeSdr(dec *xml.Decoder, start xml.StartElement, doc *Document) (*Sdr, error) {
	s := &Sdr{start: start}
	for {
		tok, err := nextToken(dec)
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child node
			switch {
			case t.Name.Local == TagName && !s.hasName:
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				s.Name = text
				s.hasName = true
				child = textField{start: t.Copy(), text: &s.Name}
			case t.Name.Local == TagConfig:
				p, err := decodeConfig(dec, t.Copy(), doc)
				if err != nil {
					return nil, err
				}
				s.Configs = append(s.Configs, p)
				child = p
			default:
				child, err = decodeNode(dec, t.Copy(), doc)
				if err != nil {
					return nil, err
				}
			}
			s.children = append(s.children, child)
		case xml.EndElement:
			return s, nil
		default:
			s.children = append(s.children, tokenNode{tok: xml.CopyToken(tok)})
		}
	}
}

func decodeConfig(dec *xml.Decoder, start xml.StartElement, doc *Document) (*ConfigPair, error) {
	p := &ConfigPair{start: start, noVariable: true, noValue: true}
	for {
		tok, err := nextToken(dec)
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var child node
			switch {
			case t.Name.Local == TagVariable && p.noVariable:
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				p.Variable = text
				p.noVariable = false
				child = textField{start: t.Copy(), text: &p.Variable}
			case t.Name.Local == TagValue && p.noValue:
				text, err := readText(dec)
				if err != nil {
					return nil, err
				}
				p.Value = text
				p.noValue = false
				child = textField{start: t.Copy(), text: &p.Value}
			default:
				child, err = decodeNode(dec, t.Copy(), doc)
				if err != nil {
					return nil, err
				}
			}
			p.children = append(p.children, child)
		case xml.EndElement:
			return p, nil
		default:
			p.children = append(p.children, tokenNode{tok: xml.CopyToken(tok)})
		}
	}
}

// readText returns the character data of the current element and consumes
// it up to and including its end tag. Nested elements are skipped.
func readText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := nextToken(dec)
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", fmt.Errorf("%w: %w", ErrParse, err)
			}
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

// nextToken reads a token inside an open element, where EOF is an error.
func nextToken(dec *xml.Decoder) (xml.Token, error) {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected end of document", ErrParse)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return tok, nil
}

// isBlank reports whether character data is whitespace only.
func isBlank(cd xml.CharData) bool {
	return len(bytes.TrimSpace(cd)) == 0
}

// childText returns the text of the first child element named tag.
func (e *element) childText(tag string) *string {
	for _, c := range e.children {
		child, ok := c.(*element)
		if !ok || child.start.Name.Local != tag {
			continue
		}
		var sb strings.Builder
		for _, gc := range child.children {
			if tn, ok := gc.(tokenNode); ok {
				if cd, ok := tn.tok.(xml.CharData); ok {
					sb.Write(cd)
				}
			}
		}
		text := sb.String()
		return &text
	}
	return nil
}

// xmlWriter writes tokens through an xml.Encoder. Whitespace-only character
// data bypasses the encoder so indentation is written back byte for byte.
type xmlWriter struct {
	enc *xml.Encoder
	w   io.Writer
}

func (x *xmlWriter) token(t xml.Token) error {
	return x.enc.EncodeToken(t)
}

func (x *xmlWriter) raw(b []byte) error {
	if err := x.enc.Flush(); err != nil {
		return err
	}
	_, err := x.w.Write(b)
	return err
}

// Encode writes the document as UTF-8 XML with a declaration header.
func (doc *Document) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	x := &xmlWriter{enc: xml.NewEncoder(w), w: w}

	for _, n := range doc.prolog {
		if err := n.encode(x); err != nil {
			return err
		}
		if err := x.raw([]byte("\n")); err != nil {
			return err
		}
	}

	if err := doc.rootNode().encode(x); err != nil {
		return err
	}

	for _, n := range doc.epilog {
		if err := x.raw([]byte("\n")); err != nil {
			return err
		}
		if err := n.encode(x); err != nil {
			return err
		}
	}

	return x.raw([]byte("\n"))
}

// rootNode returns the decoded root, or a synthetic <pmc> root holding the
// devices of a document built in code.
func (doc *Document) rootNode() node {
	if doc.root != nil {
		return doc.root
	}
	root := &element{start: startTag(defaultRootTag)}
	for _, d := range doc.Devices {
		root.children = append(root.children, d)
	}
	return root
}

func startTag(local string) xml.StartElement {
	return xml.StartElement{Name: xml.Name{Local: local}}
}

func (n tokenNode) encode(x *xmlWriter) error {
	if cd, ok := n.tok.(xml.CharData); ok && isBlank(cd) {
		return x.raw(cd)
	}
	return x.token(n.tok)
}

func (e *element) encode(x *xmlWriter) error {
	return encodeElement(x, e.start, e.children)
}

func (f textField) encode(x *xmlWriter) error {
	if err := x.token(f.start); err != nil {
		return err
	}
	if *f.text != "" {
		if err := x.token(xml.CharData(*f.text)); err != nil {
			return err
		}
	}
	return x.token(f.start.End())
}

func (d *Device) encode(x *xmlWriter) error {
	start := d.start
	if start.Name.Local == "" {
		start = startTag(TagDevice)
	}
	return encodeElement(x, start, d.layout())
}

// layout returns the child nodes to encode. Devices built in code have no
// decoded layout, so one is derived from the typed fields.
func (d *Device) layout() []node {
	if d.children != nil {
		return d.children
	}
	var nodes []node
	for _, tag := range []string{TagName, TagDevClass, TagDevName} {
		if d.HasField(tag) {
			nodes = append(nodes, textField{start: startTag(tag), text: d.field(tag)})
		}
	}
	if d.glyph != nil {
		nodes = append(nodes, d.glyph)
	}
	for _, p := range d.Configs {
		nodes = append(nodes, p)
	}
	if d.Sdr != nil {
		nodes = append(nodes, d.Sdr)
	}
	return nodes
}

func (s *Sdr) encode(x *xmlWriter) error {
	start := s.start
	if start.Name.Local == "" {
		start = startTag(TagSdr)
	}
	children := s.children
	if children == nil {
		if s.HasName() {
			children = append(children, textField{start: startTag(TagName), text: &s.Name})
		}
		for _, p := range s.Configs {
			children = append(children, p)
		}
	}
	return encodeElement(x, start, children)
}

func (p *ConfigPair) encode(x *xmlWriter) error {
	start := p.start
	if start.Name.Local == "" {
		start = startTag(TagConfig)
	}
	children := p.children
	if children == nil && p.Complete() {
		children = []node{
			textField{start: startTag(TagVariable), text: &p.Variable},
			textField{start: startTag(TagValue), text: &p.Value},
		}
	}
	return encodeElement(x, start, children)
}

func encodeElement(x *xmlWriter, start xml.StartElement, children []node) error {
	if err := x.token(start); err != nil {
		return err
	}
	for _, c := range children {
		if err := c.encode(x); err != nil {
			return err
		}
	}
	return x.token(start.End())
}

// appendIndented appends n to children, reusing the indentation of the
// existing siblings so the new element lines up with them.
func appendIndented(children []node, n node) []node {
	last := len(children) - 1
	if last < 0 {
		return append(children, n)
	}
	trailing, ok := blankToken(children[last])
	if !ok {
		return append(children, n)
	}
	if last >= 2 {
		if _, blankBefore := blankToken(children[last-1]); !blankBefore {
			if sep, ok := blankToken(children[last-2]); ok {
				out := append(children[:last:last], sep, n, trailing)
				return out
			}
		}
	}
	out := append(children[:last:last], n, trailing)
	return out
}

// blankToken returns n as a tokenNode if it is whitespace-only character data.
func blankToken(n node) (tokenNode, bool) {
	tn, ok := n.(tokenNode)
	if !ok {
		return tokenNode{}, false
	}
	cd, ok := tn.tok.(xml.CharData)
	if !ok || !isBlank(cd) {
		return tokenNode{}, false
	}
	return tn, true
}
