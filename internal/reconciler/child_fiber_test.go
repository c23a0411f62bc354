package reconciler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type childSummary struct {
	Key    string
	Flags  Flags
	Reused bool
}

func summarize(first *Fiber) []childSummary {
	var out []childSummary
	for f := first; f != nil; f = f.sibling {
		out = append(out, childSummary{Key: f.key, Flags: f.effectTag, Reused: f.alternate != nil})
	}
	return out
}

func deletions(parent *Fiber) []string {
	var keys []string
	for f := parent.firstEffect; f != nil; f = f.nextEffect {
		if f.effectTag.HasDeletion() {
			keys = append(keys, f.key)
		}
	}
	return keys
}

// mountedParent returns a committed ul fiber whose children are the given nodes.
func mountedParent(children ...Node) *Fiber {
	parent := newFiber(HostComponent, Props{}, "", NoMode)
	parent.typ = "ul"
	parent.child = mountChildFibers.reconcile(parent, nil, children, Sync)
	return parent
}

func li(key string) *Element {
	return el("li", Props{"id": key, "key": key}, key)
}

func TestReconcileChildren(t *testing.T) {
	t.Run("keyed moves, insertions and deletions", func(t *testing.T) {
		parent := mountedParent(li("1"), li("2"), li("3"))
		wip := createWorkInProgress(parent, Props{})

		first := reconcileChildFibers.reconcile(wip, parent.child, []Node{li("3"), li("1"), li("4")}, Sync)

		want := []childSummary{
			{Key: "3", Flags: NoFlags, Reused: true},
			{Key: "1", Flags: Placement, Reused: true},
			{Key: "4", Flags: Placement, Reused: false},
		}
		if diff := cmp.Diff(want, summarize(first)); diff != "" {
			t.Errorf("children mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, []string{"2"}, deletions(wip))
	})

	t.Run("mounting tags nothing", func(t *testing.T) {
		parent := newFiber(HostComponent, Props{}, "", NoMode)
		first := mountChildFibers.reconcile(parent, nil, []Node{li("a"), "text"}, Sync)

		for f := first; f != nil; f = f.sibling {
			assert.Equal(t, NoFlags, f.effectTag)
			assert.Same(t, parent, f.parent)
		}
		assert.Nil(t, parent.firstEffect)
	})

	t.Run("unkeyed children match by index", func(t *testing.T) {
		parent := mountedParent(el("p", nil), el("span", nil))
		wip := createWorkInProgress(parent, Props{})

		first := reconcileChildFibers.reconcile(wip, parent.child, []Node{el("p", nil), el("div", nil)}, Sync)

		assert.Equal(t, []childSummary{
			{Flags: NoFlags, Reused: true},
			{Flags: Placement, Reused: false},
		}, summarize(first))
		require.NotNil(t, wip.firstEffect)
		assert.Equal(t, "span", wip.firstEffect.typ)
	})

	t.Run("a key hit with another type drops every following sibling", func(t *testing.T) {
		parent := mountedParent(
			el("p", Props{"key": "a"}),
			el("span", Props{"key": "b"}),
			el("div", Props{"key": "c"}),
		)
		wip := createWorkInProgress(parent, Props{})

		first := reconcileChildFibers.reconcile(wip, parent.child, el("div", Props{"key": "b"}), Sync)

		assert.Equal(t, []childSummary{{Key: "b", Flags: Placement}}, summarize(first))
		assert.Equal(t, []string{"a", "b", "c"}, deletions(wip))
	})

	t.Run("a single text reuses a text fiber", func(t *testing.T) {
		parent := mountedParent("x")
		wip := createWorkInProgress(parent, Props{})

		first := reconcileChildFibers.reconcile(wip, parent.child, "y", Sync)

		assert.Equal(t, []childSummary{{Reused: true}}, summarize(first))
		assert.Equal(t, "y", first.pendingProps)
		assert.Nil(t, wip.firstEffect)
	})

	t.Run("text replaces an element", func(t *testing.T) {
		parent := mountedParent(el("span", nil))
		wip := createWorkInProgress(parent, Props{})

		first := reconcileChildFibers.reconcile(wip, parent.child, "y", Sync)

		assert.Equal(t, HostText, first.tag)
		assert.Equal(t, Placement, first.effectTag)
		require.NotNil(t, wip.firstEffect)
		assert.Equal(t, Deletion, wip.firstEffect.effectTag)
	})

	t.Run("nothing deletes everything", func(t *testing.T) {
		parent := mountedParent(li("1"), li("2"))
		wip := createWorkInProgress(parent, Props{})

		assert.Nil(t, reconcileChildFibers.reconcile(wip, parent.child, nil, Sync))
		assert.Equal(t, []string{"1", "2"}, deletions(wip))
	})

	t.Run("an unkeyed top level fragment is flattened", func(t *testing.T) {
		parent := newFiber(HostComponent, Props{}, "", NoMode)
		first := mountChildFibers.reconcile(parent, nil, el(FragmentType{}, nil, "a", "b"), Sync)

		assert.Equal(t, HostText, first.tag)
		require.NotNil(t, first.sibling)
		assert.Equal(t, HostText, first.sibling.tag)
	})

	t.Run("a keyed fragment keeps its own fiber", func(t *testing.T) {
		parent := newFiber(HostComponent, Props{}, "", NoMode)
		first := mountChildFibers.reconcile(parent, nil, el(FragmentType{}, Props{"key": "f"}, "a", "b"), Sync)

		assert.Equal(t, Fragment, first.tag)
		assert.Equal(t, "f", first.key)
	})
}

func TestKeyedListCommit(t *testing.T) {
	tr := newTestRoot(LegacyRoot)
	list := func(keys ...string) *Element {
		items := make([]Node, 0, len(keys))
		for _, k := range keys {
			items = append(items, el("li", Props{"id": k, "key": k}, k))
		}
		return el("ul", Props{"id": "list"}, items)
	}

	tr.render(list("1", "2", "3"))
	tr.ops()

	tr.render(list("3", "1", "4"))

	assert.Equal(t, `<ul id="list"><li id="3">3</li><li id="1">1</li><li id="4">4</li></ul>`, tr.markup())
	if diff := cmp.Diff([]string{
		`create "4"`,
		"create li#4",
		`append li#4 > "4"`,
		"remove ul#list > li#2",
		"append ul#list > li#1",
		"append ul#list > li#4",
	}, tr.ops()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}
