// Package activation tracks the host's license state and gates the control
// surface on it.
//
// The host owns activation; Machine only caches the latest state, forwards
// activate and deactivate requests and derives a Phase from what the host
// reports. At most one request is in flight at a time.
//
//	Unconfigured                      (gating not compiled in)
//	Locked --Activate--> Activating --success--> Unlocked
//	   ^                     |                      |
//	   +------failure--------+                 Deactivate
//	   |                                            v
//	   +-----------success------------------ Deactivating --failure--> Unlocked
package activation
