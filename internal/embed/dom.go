package embed

import (
	"html"
	"sort"
	"strings"
	"sync"
)

// Node is a minimal element tree. Enough to describe the markup each
// provider expects without pulling in a browser.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

func NewNode(tag string, attrs map[string]string, children ...*Node) *Node {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Node{Tag: tag, Attrs: attrs, Children: children}
}

func (n *Node) Attr(key string) string {
	if n == nil {
		return ""
	}
	return n.Attrs[key]
}

// HTML renders the node with attributes in key order so output is stable.
func (n *Node) HTML() string {
	var b strings.Builder
	n.render(&b)
	return b.String()
}

func (n *Node) render(b *strings.Builder) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		b.WriteString(html.EscapeString(n.Text))
		return
	}
	b.WriteString("<")
	b.WriteString(n.Tag)

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := n.Attrs[k]
		b.WriteString(" ")
		b.WriteString(k)
		if v != "" {
			b.WriteString(`="`)
			b.WriteString(html.EscapeString(v))
			b.WriteString(`"`)
		}
	}
	b.WriteString(">")
	if n.Text != "" {
		b.WriteString(html.EscapeString(n.Text))
	}
	for _, c := range n.Children {
		c.render(b)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteString(">")
}

// Container is the slot a feed item hands to an adapter.
type Container struct {
	mu    sync.Mutex
	nodes []*Node
}

func NewContainer() *Container {
	return &Container{}
}

// Replace makes n the only child.
func (c *Container) Replace(n *Node) {
	c.mu.Lock()
	c.nodes = []*Node{n}
	c.mu.Unlock()
}

// Remove drops n if it is still a child. Reports whether it was.
func (c *Container) Remove(n *Node) bool {
	if n == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, cur := range c.nodes {
		if cur == n {
			c.nodes = append(c.nodes[:i], c.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Nodes returns a copy of the top-level nodes.
func (c *Container) Nodes() []*Node {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

func (c *Container) HTML() string {
	var b strings.Builder
	for _, n := range c.Nodes() {
		n.render(&b)
	}
	return b.String()
}

// Page tracks document-level state shared by every container, which for
// embeds means the provider scripts.
type Page struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	scripts []string
}

func NewPage() *Page {
	return &Page{seen: map[string]struct{}{}}
}

// InjectScript adds src once per page. Reports whether it was newly added.
func (p *Page) InjectScript(src string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[src]; ok {
		return false
	}
	p.seen[src] = struct{}{}
	p.scripts = append(p.scripts, src)
	return true
}

func (p *Page) Scripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.scripts))
	copy(out, p.scripts)
	return out
}
