// Package wizard holds the state of one configuration session: the current
// step, the data configuration, the typed strategy configuration and the
// submission status.
package wizard
