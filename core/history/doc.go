// Package history connects the router to a history backend.
//
// A Backend is the platform side of navigation: it reports the current URL,
// stores new entries and notifies subscribers when the user moves through
// history on their own (popstate) or edits the fragment (hashchange).
// MemoryBackend is an in-process implementation for tests, server-driven UIs
// and tools.
//
// The Synchronizer sits between the router and a Backend. It maps router
// URLs to backend URLs (base path or "#/" prefix), and decides per committed
// navigation whether to push, replace or skip the write. Navigations caused
// by the backend itself are never written back.
package history
