package tauri

// IsTauri reports whether the host runtime is attached. The host flag is
// read on every call, never cached.
func (c *Client) IsTauri() bool {
	return c.transport.Present()
}

// IsTauri reports whether the default client's host runtime is attached.
func IsTauri() bool {
	return Default().IsTauri()
}
