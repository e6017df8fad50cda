// Package tauri lets Go code compiled to WebAssembly call commands exposed by
// a Tauri host and subscribe to the events it broadcasts.
//
// The package-level functions use a default Client whose transport talks to
// the host through syscall/js. Outside a js/wasm build, or in a page that was
// not loaded by the host, every call fails with an *errors.EnvironmentError
// and IsTauri reports false.
//
//	msg, err := tauri.InvokeAs[string](ctx, nil, "greet", map[string]string{"name": "Ada"})
//
//	sub, err := tauri.Listen(ctx, "ping", func(ev tauri.Event) {
//	    fmt.Println(string(ev.Payload))
//	}, tauri.WithTarget(tauri.WindowTarget("main")))
//	defer sub.Cancel(ctx)
package tauri
