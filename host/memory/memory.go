// Package memory is an in-memory host renderer that journals every mutation.
package memory

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/AnatoleLucet/fiber/host"
)

type Node struct {
	Tag   string // empty for text nodes
	Text  string
	Props host.Props

	Parent   *Node
	Children []*Node

	fiber any
}

// NewContainer returns a detached root node to render into.
func NewContainer() *Node {
	return &Node{Tag: "root", Props: host.Props{}}
}

func (n *Node) IsText() bool { return n.Tag == "" }

// String names the node in journal entries.
func (n *Node) String() string {
	if n.IsText() {
		return strconv.Quote(n.Text)
	}
	if id, ok := n.Props["id"]; ok {
		return fmt.Sprintf("%s#%v", n.Tag, id)
	}
	return n.Tag
}

// Markup serializes the node and its subtree.
func (n *Node) Markup() string {
	var b strings.Builder
	n.writeMarkup(&b)
	return b.String()
}

// InnerMarkup serializes the children of the node.
func (n *Node) InnerMarkup() string {
	var b strings.Builder
	for _, child := range n.Children {
		child.writeMarkup(&b)
	}
	return b.String()
}

func (n *Node) writeMarkup(b *strings.Builder) {
	if n.IsText() {
		b.WriteString(host.EscapeText(n.Text))
		return
	}

	b.WriteString("<" + n.Tag)
	host.WriteAttributes(b, n.Props)
	b.WriteString(">")
	for _, child := range n.Children {
		child.writeMarkup(b)
	}
	b.WriteString("</" + n.Tag + ">")
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.Children, child)
}

func (n *Node) detach(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.Children = slices.Delete(n.Children, i, i+1)
	}
	child.Parent = nil
}

// Renderer implements host.Renderer and host.FiberCache over Nodes.
type Renderer struct {
	ops []string
}

var (
	_ host.Renderer   = (*Renderer)(nil)
	_ host.FiberCache = (*Renderer)(nil)
)

func New() *Renderer {
	return &Renderer{}
}

// Ops returns the journal of mutations since the last Reset.
func (r *Renderer) Ops() []string {
	return slices.Clone(r.ops)
}

func (r *Renderer) Reset() {
	r.ops = r.ops[:0]
}

func (r *Renderer) record(format string, args ...any) {
	r.ops = append(r.ops, fmt.Sprintf(format, args...))
}

func (r *Renderer) CreateInstance(tag string, props host.Props) host.Instance {
	n := &Node{Tag: tag, Props: host.Props{}}
	if id, ok := props["id"]; ok {
		n.Props["id"] = id
	}
	r.record("create %s", n)
	return n
}

func (r *Renderer) CreateTextInstance(text string) host.Instance {
	n := &Node{Text: text}
	r.record("create %s", n)
	return n
}

func (r *Renderer) AppendChild(parent, child host.Instance) {
	p, c := parent.(*Node), child.(*Node)
	if c.Parent != nil {
		c.Parent.detach(c)
	}
	p.Children = append(p.Children, c)
	c.Parent = p
	r.record("append %s > %s", p, c)
}

func (r *Renderer) InsertBefore(parent, child, before host.Instance) {
	p, c, ref := parent.(*Node), child.(*Node), before.(*Node)
	if c.Parent != nil {
		c.Parent.detach(c)
	}

	i := p.indexOf(ref)
	if i < 0 {
		panic(fmt.Sprintf("memory: %s is not a child of %s", ref, p))
	}
	p.Children = slices.Insert(p.Children, i, c)
	c.Parent = p
	r.record("insert %s > %s before %s", p, c, ref)
}

func (r *Renderer) RemoveChild(parent, child host.Instance) {
	p, c := parent.(*Node), child.(*Node)
	p.detach(c)
	r.record("remove %s > %s", p, c)
}

func (r *Renderer) SetInitialProperties(instance host.Instance, tag string, props host.Props) {
	n := instance.(*Node)
	for k, v := range props {
		if k == "children" {
			continue
		}
		n.Props[k] = v
	}
}

func (r *Renderer) DiffProperties(instance host.Instance, tag string, oldProps, newProps host.Props) host.Patch {
	return host.DiffProps(oldProps, newProps)
}

func (r *Renderer) CommitPropertyPatches(instance host.Instance, tag string, patch host.Patch) {
	n := instance.(*Node)

	changes := make([]string, 0, len(patch))
	for _, c := range patch {
		if c.Removed {
			delete(n.Props, c.Key)
			changes = append(changes, "-"+c.Key)
			continue
		}
		n.Props[c.Key] = c.Value
		if host.IsEventProp(c.Key) {
			changes = append(changes, c.Key)
		} else {
			changes = append(changes, fmt.Sprintf("%s=%v", c.Key, c.Value))
		}
	}
	r.record("update %s %s", n, strings.Join(changes, " "))
}

func (r *Renderer) CommitTextUpdate(instance host.Instance, oldText, newText string) {
	n := instance.(*Node)
	n.Text = newText
	r.record("text %s -> %s", strconv.Quote(oldText), strconv.Quote(newText))
}

func (r *Renderer) PrecacheFiber(instance host.Instance, fiber any) {
	instance.(*Node).fiber = fiber
}

func (r *Renderer) FiberFromInstance(instance host.Instance) any {
	if n, ok := instance.(*Node); ok {
		return n.fiber
	}
	return nil
}
