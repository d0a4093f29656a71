// Package toast provides transient feedback notifications.
//
// The engine never renders notifications itself. Instead, toasts are
// dispatched as a named custom event through an Emitter, and the host page
// chooses how to show them:
//
//	window.addEventListener("swapgrid:toast", (e) => {
//	    const { level, message, title } = e.detail;
//	    showCustomToast(level, message);
//	});
//
// Transport failures and rejected toggles are surfaced this way:
//
//	if err != nil {
//	    toast.FromError(emitter, err)
//	    return
//	}
//	toast.Success(emitter, "Added to favourites")
package toast
