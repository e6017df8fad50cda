//go:build js && wasm

package wasm

import (
	"context"
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	domainerrors "github.com/tauri-wasm/tauri-go/domain/errors"
)

type settlement struct {
	value    js.Value
	rejected bool
}

// await blocks the calling goroutine until promise settles or ctx is done.
// While blocked, the Go scheduler yields to the JavaScript event loop.
// A rejection is returned as *entities.Rejection.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	promise = js.Global().Get("Promise").Call("resolve", promise)

	ch := make(chan settlement, 1)
	var onResolve, onReject js.Func
	release := func() {
		onResolve.Release()
		onReject.Release()
	}
	// The callbacks release themselves so an abandoned wait does not leave
	// the promise calling into released functions.
	onResolve = js.FuncOf(func(this js.Value, args []js.Value) any {
		ch <- settlement{value: first(args)}
		release()
		return nil
	})
	onReject = js.FuncOf(func(this js.Value, args []js.Value) any {
		ch <- settlement{value: first(args), rejected: true}
		release()
		return nil
	})
	promise.Call("then", onResolve, onReject)

	select {
	case s := <-ch:
		if s.rejected {
			return js.Undefined(), &entities.Rejection{Reason: reason(s.value)}
		}
		return s.value, nil
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}

func first(args []js.Value) js.Value {
	if len(args) == 0 {
		return js.Undefined()
	}
	return args[0]
}

func isThenable(v js.Value) bool {
	return v.Type() == js.TypeObject && v.Get("then").Type() == js.TypeFunction
}

// reason serializes a rejection value. Error objects carry no enumerable
// fields, so their message is used instead.
func reason(v js.Value) json.RawMessage {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	if v.InstanceOf(js.Global().Get("Error")) {
		data, _ := json.Marshal(v.Get("message").String())
		return data
	}
	raw, err := stringify(v)
	if err != nil {
		data, _ := json.Marshal(v.String())
		return data
	}
	return raw
}

// stringify converts a JS value into a JSON document. undefined becomes null.
func stringify(v js.Value) (raw json.RawMessage, err error) {
	if v.IsUndefined() {
		return json.RawMessage("null"), nil
	}
	defer func() {
		if r := recover(); r != nil {
			raw, err = nil, &domainerrors.MarshalError{Operation: "decode", Type: v.Type().String(), Err: fmt.Errorf("%v", r)}
		}
	}()
	s := js.Global().Get("JSON").Call("stringify", v)
	if s.IsUndefined() {
		return nil, &domainerrors.MarshalError{Operation: "decode", Type: v.Type().String(), Err: fmt.Errorf("value has no JSON form")}
	}
	return json.RawMessage(s.String()), nil
}

// parse converts a JSON document into a JS value.
func parse(raw json.RawMessage) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = js.Undefined(), &domainerrors.MarshalError{Operation: "encode", Type: "json.RawMessage", Err: fmt.Errorf("%v", r)}
		}
	}()
	return js.Global().Get("JSON").Call("parse", string(raw)), nil
}

// call invokes a method and converts a thrown exception into a rejection.
func call(obj js.Value, method string, args ...any) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = js.Undefined(), thrown(r)
		}
	}()
	return obj.Call(method, args...), nil
}

func invokeFunc(fn js.Value, args ...any) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = js.Undefined(), thrown(r)
		}
	}()
	return fn.Invoke(args...), nil
}

func thrown(r any) error {
	if jsErr, ok := r.(js.Error); ok {
		return &entities.Rejection{Reason: reason(jsErr.Value)}
	}
	data, _ := json.Marshal(fmt.Sprint(r))
	return &entities.Rejection{Reason: data}
}
