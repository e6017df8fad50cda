//go:build wasip1

package tauri

import (
	"github.com/tauri-wasm/tauri-go/domain/ports"
	"github.com/tauri-wasm/tauri-go/infrastructure/wasip1"
)

func defaultTransport() ports.HostTransport {
	return wasip1.NewTransport()
}
