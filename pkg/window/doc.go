// Package window renders a large item collection as a small visible slice.
//
// A surface opts in with data-virtual. Once its collection reaches the
// configured minimum, every item is parked in a hidden container and only
// the items in the current window are moved into a live container between
// two height-only spacers:
//
//	<ul data-virtual="local">
//	  <div data-virtual-spacer="before" style="height:3600px"></div>
//	  <div data-virtual-live> ...items 72..99... </div>
//	  <div data-virtual-spacer="after" style="height:20000px"></div>
//	  <div data-virtual-parking hidden> ...every other item... </div>
//	</ul>
//
// Items are identified by the integer in their data-item-id attribute, so
// reconciliation after a partial update can tell known items from new ones
// without holding references across swaps.
//
// Geometry comes from a Layout. Measurement never touches the page: a
// detached clone of a representative item is measured, and a failing or
// panicking Layout leaves the previous estimate in place.
package window
