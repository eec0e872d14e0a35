package controllers

// Set bundles every collection controller so session-level concerns can be
// applied across all of them at once.
type Set struct {
	Catalog       *CatalogController
	Progress      *ProgressController
	Notifications *NotificationController
	Following     *FollowingController
}

// ResetSessionGuards clears the once-per-session reconciliation guard of
// every collection. Called when the hosting session was explicitly reloaded
// rather than navigated to, allowing one fresh reconciliation each.
func (s *Set) ResetSessionGuards() {
	s.Catalog.ResetGuards()
	s.Progress.ResetGuard()
	s.Notifications.ResetGuard()
	s.Following.ResetGuard()
}
