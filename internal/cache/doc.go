// Package cache stores planned moves keyed by their exact poses.
//
// [Memory] serves a single process; [Redis] shares results between
// planner instances. Both implement [Store].
package cache
