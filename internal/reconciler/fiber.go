package reconciler

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/AnatoleLucet/fiber/internal/equal"
)

type WorkTag uint8

const (
	FunctionComponent WorkTag = iota
	HostRoot
	HostComponent
	HostText
	Fragment
	MemoComponent
)

func (t WorkTag) String() string {
	switch t {
	case FunctionComponent:
		return "FunctionComponent"
	case HostRoot:
		return "HostRoot"
	case HostComponent:
		return "HostComponent"
	case HostText:
		return "HostText"
	case Fragment:
		return "Fragment"
	case MemoComponent:
		return "MemoComponent"
	}
	return fmt.Sprintf("WorkTag(%d)", uint8(t))
}

// Flags are the side effects a fiber carries into the commit.
type Flags uint16

const (
	NoFlags       Flags = 0
	PerformedWork Flags = 1 << 0
	Placement     Flags = 1 << 1
	Update        Flags = 1 << 2
	Deletion      Flags = 1 << 3
	AttachRef     Flags = 1 << 7
	Passive       Flags = 1 << 9

	PlacementAndUpdate = Placement | Update
)

func (f Flags) HasPlacement() bool     { return f&Placement != 0 }
func (f Flags) HasUpdate() bool        { return f&Update != 0 }
func (f Flags) HasDeletion() bool      { return f&Deletion != 0 }
func (f Flags) HasRef() bool           { return f&AttachRef != 0 }
func (f Flags) HasPassiveEffect() bool { return f&Passive != 0 }
func (f Flags) HasHostEffect() bool    { return f > PerformedWork }
func (f Flags) mutation() Flags        { return f & (Placement | Update | Deletion) }

func (f Flags) String() string {
	if f == NoFlags {
		return "none"
	}

	var names []string
	for _, flag := range []struct {
		flag Flags
		name string
	}{
		{PerformedWork, "PerformedWork"},
		{Placement, "Placement"},
		{Update, "Update"},
		{Deletion, "Deletion"},
		{AttachRef, "Ref"},
		{Passive, "Passive"},
	} {
		if f&flag.flag != 0 {
			names = append(names, flag.name)
		}
	}
	return strings.Join(names, "|")
}

type Mode uint8

const (
	NoMode         Mode = 0
	ConcurrentMode Mode = 1 << 0
)

// Fiber is one position in the tree. Each fiber is paired with its alternate:
// one of them is committed, the other is the work in progress.
type Fiber struct {
	tag       WorkTag
	key       string
	typ       any
	stateNode any

	parent  *Fiber
	child   *Fiber
	sibling *Fiber
	index   int

	ref *Ref

	pendingProps  any
	memoizedProps any
	updateQueue   any
	memoizedState any

	mode Mode

	effectTag   Flags
	nextEffect  *Fiber
	firstEffect *Fiber
	lastEffect  *Fiber

	expirationTime      ExpirationTime
	childExpirationTime ExpirationTime

	alternate *Fiber
}

func newFiber(tag WorkTag, pendingProps any, key string, mode Mode) *Fiber {
	return &Fiber{
		tag:          tag,
		key:          key,
		pendingProps: pendingProps,
		mode:         mode,
	}
}

func (f *Fiber) Tag() WorkTag       { return f.tag }
func (f *Fiber) Key() string        { return f.key }
func (f *Fiber) EffectTag() Flags   { return f.effectTag }
func (f *Fiber) StateNode() any     { return f.stateNode }
func (f *Fiber) Alternate() *Fiber  { return f.alternate }
func (f *Fiber) MemoizedProps() any { return f.memoizedProps }

func (f *Fiber) String() string {
	name := typeName(f.typ)
	if f.key != "" {
		return fmt.Sprintf("%s(%s key=%s)", f.tag, name, f.key)
	}
	if name == "" {
		return f.tag.String()
	}
	return fmt.Sprintf("%s(%s)", f.tag, name)
}

func typeName(typ any) string {
	switch t := typ.(type) {
	case nil, FragmentType:
		return ""
	case string:
		return t
	case Component:
		return funcName(t)
	case *Memo:
		return "memo " + funcName(t.Render)
	}
	return fmt.Sprintf("%T", typ)
}

func funcName(fn Component) string {
	if fn == nil {
		return ""
	}
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// sameType reports whether a fiber of type a can be reused for an element of type b.
// Components compare by their code pointer.
func sameType(a, b any) bool {
	ca, ok := a.(Component)
	if !ok {
		return equal.SameValue(a, b)
	}
	cb, ok := b.(Component)
	return ok && reflect.ValueOf(ca).Pointer() == reflect.ValueOf(cb).Pointer()
}

// createWorkInProgress returns the alternate of current, allocating it on
// first use, reset to render pendingProps.
func createWorkInProgress(current *Fiber, pendingProps any) *Fiber {
	wip := current.alternate
	if wip == nil {
		wip = newFiber(current.tag, pendingProps, current.key, current.mode)
		wip.typ = current.typ
		wip.stateNode = current.stateNode
		wip.alternate = current
		current.alternate = wip
	} else {
		wip.pendingProps = pendingProps
		wip.effectTag = NoFlags
		wip.nextEffect = nil
		wip.firstEffect = nil
		wip.lastEffect = nil
	}

	wip.childExpirationTime = current.childExpirationTime
	wip.expirationTime = current.expirationTime

	wip.child = current.child
	wip.memoizedProps = current.memoizedProps
	wip.memoizedState = current.memoizedState
	wip.updateQueue = current.updateQueue

	wip.sibling = current.sibling
	wip.index = current.index
	wip.ref = current.ref

	return wip
}

func createFiberFromElement(el *Element, mode Mode, exp ExpirationTime) *Fiber {
	typ := normalizeType(el.Type)
	pending := any(el.Props)

	var tag WorkTag
	switch typ.(type) {
	case string:
		tag = HostComponent
	case Component:
		tag = FunctionComponent
	case *Memo:
		tag = MemoComponent
	case FragmentType:
		tag = Fragment
		pending = el.Props["children"]
	default:
		panic(fmt.Errorf("%w: %T", ErrInvalidElementType, el.Type))
	}

	f := newFiber(tag, pending, el.Key, mode)
	f.typ = typ
	f.expirationTime = exp
	return f
}

func createFiberFromText(text string, mode Mode, exp ExpirationTime) *Fiber {
	f := newFiber(HostText, text, "", mode)
	f.expirationTime = exp
	return f
}

func createFiberFromFragment(children Node, mode Mode, exp ExpirationTime, key string) *Fiber {
	f := newFiber(Fragment, children, key, mode)
	f.typ = FragmentType{}
	f.expirationTime = exp
	return f
}

func isHostParent(f *Fiber) bool {
	return f.tag == HostComponent || f.tag == HostRoot
}

func isHostNode(f *Fiber) bool {
	return f.tag == HostComponent || f.tag == HostText
}
