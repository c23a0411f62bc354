package reconciler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber/host/memory"
)

func TestEffects(t *testing.T) {
	t.Run("passive effects run after commit and only when deps change", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		log := []string{}
		comp := func(d Dispatcher, props Props) Node {
			a := props["a"]
			d.UseEffect(func() func() {
				log = append(log, fmt.Sprint("create ", a))
				return func() { log = append(log, fmt.Sprint("destroy ", a)) }
			}, []any{a})
			return nil
		}

		tr.render(el(comp, Props{"a": 1}))
		assert.Empty(t, log)
		tr.host.Flush()
		assert.Equal(t, []string{"create 1"}, log)

		tr.render(el(comp, Props{"a": 1}))
		tr.host.Flush()
		assert.Equal(t, []string{"create 1"}, log)

		tr.render(el(comp, Props{"a": 2}))
		tr.host.Flush()
		assert.Equal(t, []string{"create 1", "destroy 1", "create 2"}, log)

		tr.render(nil)
		assert.Equal(t, []string{"create 1", "destroy 1", "create 2", "destroy 2"}, log)
	})

	t.Run("effects without deps run after every render", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		runs := 0
		comp := func(d Dispatcher, props Props) Node {
			d.UseEffect(func() func() {
				runs++
				return nil
			}, nil)
			return props["text"]
		}

		tr.render(el(comp, Props{"text": "a"}))
		tr.host.Flush()
		tr.render(el(comp, Props{"text": "b"}))
		tr.host.Flush()

		assert.Equal(t, 2, runs)
	})

	t.Run("layout effects run before passive effects", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		log := []string{}
		comp := func(d Dispatcher, props Props) Node {
			d.UseEffect(func() func() {
				log = append(log, "passive")
				return nil
			}, []any{})
			d.UseLayoutEffect(func() func() {
				log = append(log, "layout sees "+tr.markup())
				return nil
			}, []any{})
			return el("p", nil, "hi")
		}

		tr.render(el(comp, nil))
		assert.Equal(t, []string{"layout sees <p>hi</p>"}, log)

		tr.host.Flush()
		assert.Equal(t, []string{"layout sees <p>hi</p>", "passive"}, log)
	})

	t.Run("pending passive effects flush before the next commit", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		log := []string{}
		comp := func(d Dispatcher, props Props) Node {
			v := props["v"]
			d.UseEffect(func() func() {
				log = append(log, fmt.Sprint("effect ", v))
				return nil
			}, []any{v})
			return nil
		}

		tr.render(el(comp, Props{"v": 1}))
		tr.render(el(comp, Props{"v": 2}))
		assert.Equal(t, []string{"effect 1"}, log)

		assert.True(t, tr.rt.FlushPassiveEffects())
		assert.Equal(t, []string{"effect 1", "effect 2"}, log)
		assert.False(t, tr.rt.FlushPassiveEffects())
	})

	t.Run("state set in an effect renders right after", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		comp := func(d Dispatcher, props Props) Node {
			v, set := d.UseState("loading")
			d.UseEffect(func() func() {
				set("ready")
				return nil
			}, []any{})
			return v
		}

		tr.render(el(comp, nil))
		assert.Equal(t, "loading", tr.markup())

		tr.host.Flush()
		assert.Equal(t, "ready", tr.markup())
	})

	t.Run("unmount cleans up parents before children", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		log := []string{}
		cleanup := func(d Dispatcher, name string) {
			d.UseEffect(func() func() {
				return func() { log = append(log, "cleanup "+name) }
			}, []any{})
		}
		child := func(d Dispatcher, props Props) Node {
			cleanup(d, "child")
			return el("span", nil)
		}
		parent := func(d Dispatcher, props Props) Node {
			cleanup(d, "parent")
			return el("div", nil, el(child, nil))
		}

		tr.render(el(parent, nil))
		tr.host.Flush()
		tr.render(nil)

		assert.Equal(t, []string{"cleanup parent", "cleanup child"}, log)
		assert.Equal(t, "", tr.markup())
	})

	t.Run("deleted cleanups run before new nodes are placed", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		log := []string{}
		item := func(d Dispatcher, props Props) Node {
			name := props["name"].(string)
			d.UseLayoutEffect(func() func() {
				return func() { log = append(log, "cleanup "+name+" sees "+tr.markup()) }
			}, []any{})
			return el("p", Props{"id": name})
		}
		render := func(name string) {
			tr.render(el("div", Props{"id": "c"}, el(item, Props{"name": name, "key": name})))
		}

		render("old")
		render("new")

		assert.Equal(t, []string{`cleanup old sees <div id="c"><p id="old"></p></div>`}, log)
		assert.Equal(t, `<div id="c"><p id="new"></p></div>`, tr.markup())
	})

	t.Run("a panicking effect does not stop the commit", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		log := []string{}
		bad := func(d Dispatcher, props Props) Node {
			d.UseLayoutEffect(func() func() { panic("bad effect") }, []any{})
			return "bad"
		}
		good := func(d Dispatcher, props Props) Node {
			d.UseLayoutEffect(func() func() {
				log = append(log, "good")
				return nil
			}, []any{})
			return "good"
		}

		assert.NotPanics(t, func() {
			tr.render(el(FragmentType{}, nil, el(bad, nil), el(good, nil)))
		})

		assert.Equal(t, "badgood", tr.markup())
		assert.Equal(t, []string{"good"}, log)
		assert.Contains(t, tr.logs.String(), "commit failed")
		assert.Contains(t, tr.logs.String(), "bad effect")
	})
}

func TestRefs(t *testing.T) {
	tr := newTestRoot(LegacyRoot)
	ref := &Ref{}

	tr.render(el("input", Props{"id": "name", "ref": ref}))
	node, ok := ref.Current.(*memory.Node)
	require.True(t, ok)
	assert.Equal(t, "input", node.Tag)
	assert.Same(t, tr.container.Children[0], node)

	other := &Ref{}
	tr.render(el("input", Props{"id": "name", "ref": other}))
	assert.Nil(t, ref.Current)
	assert.Same(t, node, other.Current)

	tr.render(nil)
	assert.Nil(t, other.Current)
}
