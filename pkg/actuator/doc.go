// Package actuator implements the switch actuator channel.
//
// A SwitchChannel combines channel storage (package channel) with a
// two-state StateMachine and a pin Output. Direct SET commands and peer
// remote events drive the state machine; every transition drives the pin
// and marks the channel changed so the device reports it on the next poll.
//
// Delays carried by SET commands and the peer lists are recorded but not
// executed: on-delay and ref-on targets settle on On immediately, off-delay
// and ref-off targets on Off.
package actuator
