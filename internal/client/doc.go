package client

// Package client decides whether a target connection attempt may proceed,
// given a proxy requirement, and hands established connections to the
// downstream protocol layer.
//
// Connection failures are reported and recovered here; they never propagate
// past this layer.
