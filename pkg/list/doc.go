// Package list implements the configuration lists of a homewire node.
//
// A list is a small block of registers stored at a fixed address in the
// node's byte storage. Its Layout names every register, the byte offset it
// lives at and its factory default. Registers missing from a layout are not
// addressable, so an indexed write of an unknown register is skipped.
//
// # Lists
//
//   - List0: the device-wide master list (master id and device flags).
//   - List1: one per channel, channel settings not tied to a peer.
//   - List3/List4: one per channel and peer; for a switch, List3 holds the
//     reaction to short and long presses of that peer.
//
// A GenericList is a cheap value handle of (storage, address, layout). The
// zero value and Invalid() are invalid lists; they are what list resolution
// returns for combinations that do not exist.
package list
