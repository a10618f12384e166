package extract

import (
	"encoding/xml"
)

// namespace lists the URIs an OOXML vocabulary is published under
// (transitional and strict).
type namespace []string

var (
	nsPresentation = namespace{
		"http://schemas.openxmlformats.org/presentationml/2006/main",
		"http://purl.oclc.org/ooxml/presentationml/main",
	}
	nsDrawing = namespace{
		"http://schemas.openxmlformats.org/drawingml/2006/main",
		"http://purl.oclc.org/ooxml/drawingml/main",
	}
)

func (ns namespace) has(uri string) bool {
	for _, u := range ns {
		if u == uri {
			return true
		}
	}
	return false
}

// xmlNode is a generic element tree, enough to walk slide XML in document
// order.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
	Text    string     `xml:",chardata"`
}

func (n *xmlNode) is(ns namespace, local string) bool {
	return n != nil && n.XMLName.Local == local && ns.has(n.XMLName.Space)
}

// child returns the first direct child element matching ns:local.
func (n *xmlNode) child(ns namespace, local string) *xmlNode {
	if n == nil {
		return nil
	}
	for i := range n.Nodes {
		if n.Nodes[i].is(ns, local) {
			return &n.Nodes[i]
		}
	}
	return nil
}

// find returns the first descendant matching ns:local in document order.
func (n *xmlNode) find(ns namespace, local string) *xmlNode {
	if n == nil {
		return nil
	}
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.is(ns, local) {
			return c
		}
		if d := c.find(ns, local); d != nil {
			return d
		}
	}
	return nil
}

// findAll returns every descendant matching ns:local in document order.
func (n *xmlNode) findAll(ns namespace, local string) []*xmlNode {
	if n == nil {
		return nil
	}
	var out []*xmlNode
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.is(ns, local) {
			out = append(out, c)
		}
		out = append(out, c.findAll(ns, local)...)
	}
	return out
}

// attr returns an unqualified attribute.
func (n *xmlNode) attr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}
