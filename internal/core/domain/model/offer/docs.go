// Package offer contains the Offer entity of the dispatch domain.
//
// An Offer is a time-boxed proposal of one order to one courier. It is the
// unit the offer protocol operates on: extended with a deadline, resolved
// exactly once by the first of accept, decline, or expiry. Late responses
// and late timers both observe ErrStaleOffer and back off, which is what
// keeps the accept/expiry race benign.
package offer
