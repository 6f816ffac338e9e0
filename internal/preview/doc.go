// Package preview serves a built site locally and rebuilds it on change.
//
// The server watches the input directory with fsnotify, coalesces bursts of
// filesystem events into one rebuild, and tells open browser tabs to reload
// over a server-sent events stream. Rebuilds are serialised: at most one
// runs and at most one more waits behind it. An optional gocron job
// rebuilds on a fixed interval for content generated outside the watched
// tree.
package preview
