//go:build !wasip1

package tauri

import (
	"github.com/tauri-wasm/tauri-go/domain/ports"
	"github.com/tauri-wasm/tauri-go/infrastructure/wasm"
)

func defaultTransport() ports.HostTransport {
	return wasm.NewTransport()
}
