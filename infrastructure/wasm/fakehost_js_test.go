//go:build js && wasm

// Run with:
//
//	GOOS=js GOARCH=wasm go test -exec="$(go env GOROOT)/lib/wasm/go_js_wasm_exec" ./infrastructure/wasm/

package wasm

import (
	"syscall/js"
	"testing"
)

const fakeHostScript = `(() => {
  const fake = { calls: [], listeners: [], unlistens: 0 };
  fake.emit = (event, payload) => {
    for (const l of fake.listeners) {
      if (l.event === event && !l.removed) l.cb({ event, id: l.id, payload });
    }
  };
  fake.emitLater = (event, payload) => setTimeout(() => fake.emit(event, payload), 0);
  fake.callsJSON = () => JSON.stringify(fake.calls);
  fake.optionsJSON = (i) => JSON.stringify(fake.listeners[i].options ?? null);
  globalThis.__fake = fake;
  globalThis.isTauri = true;
  globalThis.__TAURI__ = {
    core: {
      invoke(cmd, args, options) {
        fake.calls.push({
          cmd,
          args: args instanceof Uint8Array ? Array.from(args) : (args ?? null),
          options: options ?? null,
        });
        switch (cmd) {
          case "greet": return Promise.resolve({ greeting: "hello " + args.name });
          case "nothing": return Promise.resolve(undefined);
          case "deny_object": return Promise.reject({ message: "denied", code: 7 });
          case "deny_string": return Promise.reject("nope");
          case "deny_error": return Promise.reject(new Error("boom"));
          case "throws": throw new Error("sync failure");
          case "never": return new Promise(() => {});
          default: return Promise.resolve(args ?? null);
        }
      },
    },
    event: {
      listen(event, cb, options) {
        const l = { event, cb, options, id: fake.listeners.length + 1, removed: false };
        fake.listeners.push(l);
        return Promise.resolve(() => { l.removed = true; fake.unlistens++; });
      },
    },
  };
})();`

// InstallFakeHost installs a scripted window.__TAURI__ and returns its
// control object: emit, emitLater, callsJSON, optionsJSON, unlistens.
func InstallFakeHost(t testing.TB) js.Value {
	t.Helper()
	js.Global().Call("eval", fakeHostScript)
	t.Cleanup(func() {
		js.Global().Call("eval", "delete globalThis.__TAURI__; delete globalThis.isTauri; delete globalThis.__fake;")
	})
	return js.Global().Get("__fake")
}
