// Package lifecycle implements the order state machine: Processing is the
// initial status, Cancelled and Delivered are terminal, and the orthogonal
// partially-delivered flag can be true only while Processing.
package lifecycle

import "vendora/internal/model"

// VendorStatuses builds one undelivered sub-status per distinct vendor
// appearing among the line items, in order of first appearance.
func VendorStatuses(items []model.LineItem) []model.VendorStatus {
	seen := make(map[string]bool, len(items))
	statuses := make([]model.VendorStatus, 0, len(items))
	for _, item := range items {
		if seen[item.VendorID] {
			continue
		}
		seen[item.VendorID] = true
		statuses = append(statuses, model.VendorStatus{VendorID: item.VendorID})
	}
	return statuses
}

// Cancel moves a processing order to Cancelled and stores the note.
// Returns false without touching the order when it is already terminal.
// Note validation is the caller's concern, not the state machine's.
func Cancel(o *model.Order, note string) bool {
	if o.Status != model.OrderStatusProcessing {
		return false
	}
	o.Status = model.OrderStatusCancelled
	o.Note = note
	return true
}

// MarkDelivered moves a processing order straight to Delivered, clearing the
// partial-delivery state. Returns false on terminal orders.
func MarkDelivered(o *model.Order) bool {
	if o.Status != model.OrderStatusProcessing {
		return false
	}
	o.Status = model.OrderStatusDelivered
	o.PartiallyDelivered = false
	for i := range o.Items {
		o.Items[i].Delivered = true
	}
	for i := range o.VendorStatuses {
		o.VendorStatuses[i].Delivered = true
	}
	return true
}

// MarkVendorDelivered records that one vendor has delivered its portion of
// the order, propagating the flag to that vendor's line items. When every
// vendor has delivered, the order transitions to Delivered and the
// partially-delivered flag is cleared; otherwise the flag is set. Returns
// false when the order is terminal or the vendor has no items in it.
func MarkVendorDelivered(o *model.Order, vendorID string) bool {
	if o.Status != model.OrderStatusProcessing {
		return false
	}

	found := false
	for i := range o.VendorStatuses {
		if o.VendorStatuses[i].VendorID == vendorID {
			o.VendorStatuses[i].Delivered = true
			found = true
		}
	}
	if !found {
		return false
	}

	for i := range o.Items {
		if o.Items[i].VendorID == vendorID {
			o.Items[i].Delivered = true
		}
	}

	if allDelivered(o.VendorStatuses) {
		o.Status = model.OrderStatusDelivered
		o.PartiallyDelivered = false
	} else {
		o.PartiallyDelivered = true
	}
	return true
}

func allDelivered(statuses []model.VendorStatus) bool {
	for _, s := range statuses {
		if !s.Delivered {
			return false
		}
	}
	return true
}
