// Package toggle applies per-item include/exclude marks optimistically.
//
// Toggle flips a mark locally and immediately, then confirms it with the
// server. The two marks are mutually exclusive: turning one on clears the
// other. While a request for an item is pending, further toggles of that item
// are rejected with ErrConflict and never reach the network.
//
// On success the server returns a fragment for the shared summary region,
// which is swapped in, and a confirmation toast is shown. On any failure the
// item's state is restored from the snapshot taken before the change and an
// error toast carries the status and the server's message.
//
// # Markup
//
// The toggler reflects each item's state onto the element carrying its
// identity:
//
//	<li data-item-id="7" data-included="true" data-excluded="false" aria-busy="false">
package toggle
