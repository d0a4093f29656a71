// Package vdom provides the headless element tree the engine operates on.
//
// A VNode tree stands in for the page's DOM. All mutations go through a
// Document, which records one Patch per change. Tests use the patch log to
// assert that an operation touched the tree (or, just as often, that it did
// not).
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text and
// fragments. Props holds attributes. Document applies and records mutations.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(ID("results"), Data("virtual", "local"),
//	    Li(Class("card"), Text("one")),
//	    Li(Class("card"), Text("two")),
//	)
//
// # Identity
//
// Items carry an explicit integer identity in their data-item-id attribute,
// assigned at first encounter by an IdentityGenerator. Identities never change
// and are never reused.
//
// # HTML
//
// ParseFragment turns a partial-update payload into VNodes; RenderHTML goes
// the other way.
package vdom
