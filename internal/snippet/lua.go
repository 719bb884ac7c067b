package snippet

import (
	"context"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/superle3/snippet-leaf/internal/log"
)

// LuaTimeout bounds a single replacement function call.
const LuaTimeout = 200 * time.Millisecond

// luaRuntime is the Lua state shared by the replacement functions of one
// snippet set. gopher-lua states are not goroutine-safe, calls go through
// the mutex.
type luaRuntime struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

func newLuaRuntime() *luaRuntime {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return &luaRuntime{L: L}
}

// compile evaluates src, which must be a function expression such as
// "function(m) return m[1] end".
func (r *luaRuntime) compile(src string) (*luaFunc, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var fn *lua.LFunction
	err := doWithRecovery(func() error {
		if err := r.L.DoString("return " + src); err != nil {
			return err
		}
		v := r.L.Get(-1)
		r.L.Pop(1)
		f, ok := v.(*lua.LFunction)
		if !ok {
			return fmt.Errorf("expected a function, got %s", v.Type())
		}
		fn = f
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("compiling replacement function: %w", err)
	}
	return &luaFunc{rt: r, fn: fn}, nil
}

func (r *luaRuntime) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.closed {
		r.L.Close()
		r.closed = true
	}
}

// luaFunc is a compiled replacement function.
type luaFunc struct {
	rt *luaRuntime
	fn *lua.LFunction
}

// callString calls the function with a single string argument.
func (f *luaFunc) callString(arg string) (string, error) {
	return f.call(func(L *lua.LState) lua.LValue { return lua.LString(arg) })
}

// callMatch calls the function with a table holding the whole match at
// index 0 and the capture groups from index 1.
func (f *luaFunc) callMatch(groups []string) (string, error) {
	return f.call(func(L *lua.LState) lua.LValue {
		t := L.NewTable()
		for i, g := range groups {
			t.RawSetInt(i, lua.LString(g))
		}
		return t
	})
}

func (f *luaFunc) call(arg func(L *lua.LState) lua.LValue) (string, error) {
	f.rt.mu.Lock()
	defer f.rt.mu.Unlock()
	if f.rt.closed {
		return "", fmt.Errorf("%w: lua state closed", ErrReplacementFailed)
	}

	L := f.rt.L
	ctx, cancel := context.WithTimeout(context.Background(), LuaTimeout)
	defer cancel()
	L.SetContext(ctx)
	defer L.RemoveContext()

	var out lua.LValue
	err := doWithRecovery(func() error {
		if err := L.CallByParam(lua.P{Fn: f.fn, NRet: 1, Protect: true}, arg(L)); err != nil {
			return err
		}
		out = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		log.ErrorErr(log.CatLua, "replacement function failed", err)
		return "", fmt.Errorf("%w: %w", ErrReplacementFailed, err)
	}
	s, ok := out.(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w: got %s", ErrBadReplacement, out.Type())
	}
	return string(s), nil
}

// doWithRecovery runs fn, turning a panic inside the Lua VM into an error.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
