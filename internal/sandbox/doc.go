/*
Package sandbox hosts the map engine document in an isolated goja runtime.

The runtime is the bridge's remote peer: it is reachable only through
InjectScript (the postMessage-style primitive the bridge dispatches with)
and talks back only through the registered emit function. There are no
shared data structures between host and engine.

Engine-side emits are delivered after the currently-executing script
returns, never re-entrantly, mirroring how a real webview schedules message
events. Scripts run with an execution timeout and a bounded call stack;
dangerous globals are removed before the document loads.

Injection into an engine that has not finished loading (or has been closed)
is a silent no-op: the bridge's contract is that early sends are swallowed
by the hosting view, not queued.
*/
package sandbox
