// Package device implements the message dispatcher of a multi-channel
// homewire node.
//
// A MultiChannelDevice owns the master list (List0), a fixed array of
// channels and at most one configuration session. Process interprets one
// inbound message and answers through the Radio; Poll reports channels
// whose state changed since the last poll.
//
// Process and Poll are run-to-completion and must not be called
// concurrently. The device holds no locks; callers serialise access, for
// example by running both from a single loop goroutine.
//
// # Configuration sessions
//
// CONFIG_START opens a session on a (channel, list) pair and replaces any
// open session. WRITE_INDEX applies only while that session is open and
// only for the same channel. CONFIG_END closes it; closing a session on the
// master list re-reads the master id.
//
// Sessions never expire unless Config.SessionTimeout is set.
package device
