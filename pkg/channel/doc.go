// Package channel implements the storage side of a device channel.
//
// A Channel owns a List1, a bounded peer table and, when its Spec declares
// them, one List3 and one List4 per peer slot. All of them live in the
// device's list.Storage at addresses fixed by Setup:
//
//	List1 | peer table (4 bytes x PeerCount) | List3 x PeerCount | List4 x PeerCount
//
// Peer-keyed lists are addressed through the peer table: the slot a peer
// occupies selects its List3/List4.
package channel
