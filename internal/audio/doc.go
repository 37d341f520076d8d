// Package audio plays decoded speech through the system audio device using
// oto/v3. The device context is created once per process; each call to
// Play returns a Handle that can be stopped and whose end can be awaited.
package audio
