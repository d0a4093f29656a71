// Package exchange is the partial-update layer: it turns element attributes
// into HTTP exchanges, swaps the returned markup into the page and emits the
// lifecycle events around each step.
//
// Supported attributes:
//
//	hx-get, hx-post   request URL (the verb follows the attribute)
//	hx-target         "this" (default), "#id" or "closest <tag>"
//	hx-swap           innerHTML (default), outerHTML, beforeend, afterbegin, none
//	hx-trigger        events that issue the request; defaults to click,
//	                  change for inputs, submit for forms
//
// Network completions are posted back onto the scheduler, so swaps and the
// AfterSwap event always run on the scheduler goroutine and never overlap a
// markup mutation.
package exchange
