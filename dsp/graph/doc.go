// Package graph is a small pull-model audio graph.
//
// A [Context] owns the render clock and a destination mixer. Nodes
// (oscillators, gains, panners, filters, an echo return) are created from the
// context and wired by connecting them into multi-input nodes. Each render
// quantum the destination pulls its inputs; nodes cache their block per
// quantum so one output can feed several consumers, which is how a shared
// filter feeds both the dry master and the echo send.
//
// Topology changes are explicit: Connect and Disconnect report whether the
// node was attached, so teardown code can release a node only if it is still
// attached instead of suppressing errors. One-shot nodes implement [Finisher]
// and are detached and released by their mixer after their last block.
package graph
