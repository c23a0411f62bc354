package reconciler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"

	"github.com/AnatoleLucet/fiber/host/memory"
	"github.com/AnatoleLucet/fiber/internal/logging"
	"github.com/AnatoleLucet/fiber/internal/scheduler"
)

type testRoot struct {
	host      *scheduler.VirtualHost
	renderer  *memory.Renderer
	container *memory.Node
	logs      *bytes.Buffer
	rt        *Runtime
	root      *FiberRoot
}

func newTestRoot(tag RootTag) *testRoot {
	vh := scheduler.NewVirtualHost()
	renderer := memory.New()
	container := memory.NewContainer()
	logs := &bytes.Buffer{}
	logger := logging.New(slog.NewTextHandler(logs, nil), logiface.LevelWarning)

	rt := New(renderer, scheduler.New(vh, scheduler.WithLogger(logger)), logger)
	return &testRoot{
		host:      vh,
		renderer:  renderer,
		container: container,
		logs:      logs,
		rt:        rt,
		root:      rt.CreateRoot(container, tag),
	}
}

// render commits node: synchronously on a legacy root, by flushing the
// scheduler on a concurrent one.
func (tr *testRoot) render(node Node) {
	if tr.root.Tag() == LegacyRoot {
		tr.rt.UnbatchedUpdates(func() { tr.rt.UpdateContainer(node, tr.root) })
		return
	}
	tr.rt.UpdateContainer(node, tr.root)
	tr.host.Flush()
}

func (tr *testRoot) markup() string {
	return tr.container.InnerMarkup()
}

func (tr *testRoot) ops() []string {
	defer tr.renderer.Reset()
	return tr.renderer.Ops()
}

func el(typ any, props Props, children ...Node) *Element {
	return CreateElement(typ, props, children...)
}

func TestRender(t *testing.T) {
	t.Run("mounts a host tree in one placement", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)

		tr.render(el("div", Props{"id": "app"}, el("span", nil, "hello"), "world"))

		assert.Equal(t, `<div id="app"><span>hello</span>world</div>`, tr.markup())
		if diff := cmp.Diff([]string{
			`create "hello"`,
			"create span",
			`append span > "hello"`,
			`create "world"`,
			"create div#app",
			"append div#app > span",
			`append div#app > "world"`,
			"append root > div#app",
		}, tr.ops()); diff != "" {
			t.Errorf("ops mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("patches props and text in place", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)

		tr.render(el("div", Props{"id": "app", "class": "a"}, "one"))
		tr.ops()

		tr.render(el("div", Props{"id": "app", "class": "b"}, "two"))

		assert.Equal(t, `<div class="b" id="app">two</div>`, tr.markup())
		assert.Equal(t, []string{
			`text "one" -> "two"`,
			"update div#app class=b",
		}, tr.ops())
	})

	t.Run("rendering nil unmounts the tree", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)

		tr.render(el("div", Props{"id": "app"}, "x"))
		tr.ops()
		tr.render(nil)

		assert.Equal(t, "", tr.markup())
		assert.Equal(t, []string{"remove root > div#app"}, tr.ops())
	})

	t.Run("fragments, slices and numbers", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)

		tr.render(el(FragmentType{}, nil, "a", []Node{"b", 1, nil, true}, el(FragmentType{}, nil, 2.5)))

		assert.Equal(t, "ab12.5", tr.markup())
	})

	t.Run("components render their returned tree", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)

		greeting := func(d Dispatcher, props Props) Node {
			return el("p", nil, "hello ", props["name"])
		}
		app := func(d Dispatcher, props Props) Node {
			return el("main", nil, el(greeting, Props{"name": "ann"}), el(greeting, Props{"name": "bob"}))
		}

		tr.render(el(app, nil))

		assert.Equal(t, "<main><p>hello ann</p><p>hello bob</p></main>", tr.markup())
	})

	t.Run("changing the element type remounts", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)

		tr.render(el("div", Props{"id": "a"}))
		tr.ops()
		tr.render(el("span", Props{"id": "a"}))

		assert.Equal(t, `<span id="a"></span>`, tr.markup())
		assert.Equal(t, []string{
			"create span#a",
			"remove root > div#a",
			"append root > span#a",
		}, tr.ops())
	})

	t.Run("rendering the same element again does nothing", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		renders := 0
		app := func(d Dispatcher, props Props) Node {
			renders++
			return "x"
		}

		root := el(app, nil)
		tr.render(root)
		tr.ops()
		tr.render(root)

		assert.Equal(t, 1, renders)
		assert.Empty(t, tr.ops())
	})

	t.Run("a panicking component abandons the render", func(t *testing.T) {
		tr := newTestRoot(LegacyRoot)
		boom := func(d Dispatcher, props Props) Node {
			if props["fail"] == true {
				panic("boom")
			}
			return props["text"]
		}

		tr.render(el(boom, Props{"text": "ok"}))
		assert.PanicsWithValue(t, "boom", func() {
			tr.render(el(boom, Props{"fail": true}))
		})

		assert.Equal(t, NoContext, tr.rt.executionContext)
		assert.Nil(t, tr.rt.workInProgress)
		assert.Nil(t, tr.rt.workInProgressRoot)
		assert.Equal(t, "ok", tr.markup())
		assert.Contains(t, tr.logs.String(), "render abandoned")

		tr.render(el(boom, Props{"text": "again"}))
		assert.Equal(t, "again", tr.markup())
	})
}
