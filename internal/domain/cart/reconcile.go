// internal/domain/cart/reconcile.go
package cart

// reconcileAction says how local state follows a confirmed server add
type reconcileAction int

const (
	// actionMerge bumps the quantity of a line the store already holds
	actionMerge reconcileAction = iota
	// actionResync reloads the cart because the line is unknown locally and
	// its product details (name, price, image) only come from the server
	actionResync
)

func (a reconcileAction) String() string {
	switch a {
	case actionMerge:
		return "merge"
	case actionResync:
		return "resync"
	default:
		return "unknown"
	}
}

// reconcileAdd decides between a local merge and a full resync after the
// server accepted an add for key. The index is valid only for actionMerge.
func reconcileAdd(items []LineItem, key LineKey) (reconcileAction, int) {
	if i := indexOf(items, key); i >= 0 {
		return actionMerge, i
	}
	return actionResync, -1
}

func indexOf(items []LineItem, key LineKey) int {
	for i := range items {
		if items[i].Key() == key {
			return i
		}
	}
	return -1
}
