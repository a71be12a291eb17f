// Package daemon provides the main orchestration for stratumd.
// It coordinates the layout engine, the shell controller, the D-Bus control
// server, and configuration hot-reload functionality. The engine itself is
// single-threaded; the daemon serializes every access behind one mutex.
package daemon
